package sparse

import "testing"

func buildTestMatrix() *Matrix {
	m := NewMatrix(3, 4, 8)
	m.AppendRow(0, []int{0, 1}, []float64{1, 2})
	m.AppendRow(1, []int{1, 2}, []float64{3, 4})
	m.AppendRow(2, []int{2, 3}, []float64{5, 6})
	return m
}

func TestJv(t *testing.T) {

	m := buildTestMatrix()
	v := []float64{1, 2, 3, 4}
	dst := make([]float64, 3)
	m.Jv(v, dst)

	want := []float64{1*1 + 2*2, 3*2 + 4*3, 5*3 + 6*4}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("Jv()[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestJTv(t *testing.T) {

	m := buildTestMatrix()
	v := []float64{1, 1, 1}
	dst := make([]float64, 4)
	m.JTv(v, dst)

	want := []float64{1, 2 + 3, 4 + 5, 6}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("JTv()[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFindSupernodesDetectsSharedRun(t *testing.T) {

	m := NewMatrix(2, 4, 8)
	m.AppendRow(0, []int{0, 1, 2}, []float64{1, 1, 1})
	m.AppendRow(1, []int{0, 1, 2}, []float64{2, 2, 2})

	nodes := FindSupernodes(m)
	if len(nodes) != 1 {
		t.Fatalf("FindSupernodes() returned %d nodes, want 1", len(nodes))
	}
	n := nodes[0]
	if n.ColLo != 0 || n.ColHi != 3 || n.RowLo != 0 || n.RowHi != 2 {
		t.Fatalf("got %+v, want ColLo=0 ColHi=3 RowLo=0 RowHi=2", n)
	}
}

func TestFindSupernodesNoneWhenRowsDiffer(t *testing.T) {

	m := buildTestMatrix()
	nodes := FindSupernodes(m)
	if nodes != nil {
		t.Fatalf("FindSupernodes() = %v, want nil", nodes)
	}
}
