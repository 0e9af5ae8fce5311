package arena

import "testing"

func TestFloatAppendAndReset(t *testing.T) {

	a := NewFloat(4)
	s1 := a.Append(2)
	s1[0], s1[1] = 1, 2
	s2 := a.Append(2)
	s2[0], s2[1] = 3, 4

	if a.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", a.Len())
	}
	got := a.Slice()
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("after Reset, Len() = %d, want 0", a.Len())
	}
	if a.Cap() != 4 {
		t.Fatalf("after Reset, Cap() = %d, want unchanged 4", a.Cap())
	}
}

func TestFloatGrowsBeyondInitialCap(t *testing.T) {

	a := NewFloat(2)
	a.Append(2)
	s := a.Append(3)
	s[0], s[1], s[2] = 5, 6, 7

	if a.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", a.Len())
	}
	if a.Cap() < 5 {
		t.Fatalf("Cap() = %d, want >= 5", a.Cap())
	}
}

func TestIntPushInt(t *testing.T) {

	a := NewInt(4)
	i0 := a.PushInt(10)
	i1 := a.PushInt(20)

	if i0 != 0 || i1 != 1 {
		t.Fatalf("PushInt indices = %d,%d, want 0,1", i0, i1)
	}
	got := a.Slice()
	if got[0] != 10 || got[1] != 20 {
		t.Fatalf("Slice() = %v, want [10 20]", got)
	}
}
