package rowbuilder

import "testing"

func TestAddAccumulates(t *testing.T) {

	r := NewRow(4)
	r.FromChain([]int{5, 3, 1})
	r.Add(3, 2.0)
	r.Add(3, 1.5)
	r.Add(1, 4.0)

	want := map[int]float64{5: 0, 3: 3.5, 1: 4.0}
	for i, d := range r.Dofs {
		if r.Vals[i] != want[d] {
			t.Errorf("Vals[%d] (dof %d) = %v, want %v", i, d, r.Vals[i], want[d])
		}
	}
}

func TestDotSharedColumnsOnly(t *testing.T) {

	a := NewRow(4)
	a.FromChain([]int{2, 1, 0})
	a.Add(2, 1)
	a.Add(1, 2)
	a.Add(0, 3)

	b := NewRow(4)
	b.FromChain([]int{1, 0})
	b.Add(1, 5)
	b.Add(0, 7)

	got := a.Dot(b)
	want := 2.0*5 + 3.0*7
	if got != want {
		t.Fatalf("Dot() = %v, want %v", got, want)
	}
}

func TestDotVector(t *testing.T) {

	r := NewRow(4)
	r.FromChain([]int{3, 1})
	r.Add(3, 2)
	r.Add(1, 5)

	v := []float64{10, 20, 30, 40}
	got := r.DotVector(v)
	want := 2.0*40 + 5.0*20
	if got != want {
		t.Fatalf("DotVector() = %v, want %v", got, want)
	}
}

func TestScatterDense(t *testing.T) {

	r := NewRow(4)
	r.FromChain([]int{2, 0})
	r.Add(2, 9)
	r.Add(0, 4)

	dst := make([]float64, 4)
	r.ScatterDense(dst)

	want := []float64{4, 0, 9, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestAddInvMassScaled(t *testing.T) {

	r := NewRow(4)
	r.FromChain([]int{1, 0})
	r.Add(1, 2)
	r.Add(0, 3)

	acc := make([]float64, 2)
	invMass := []float64{0.5, 0.25}
	r.AddInvMassScaled(acc, invMass)

	want := []float64{3 * 0.5, 2 * 0.25}
	for i := range want {
		if acc[i] != want[i] {
			t.Errorf("acc[%d] = %v, want %v", i, acc[i], want[i])
		}
	}
}
