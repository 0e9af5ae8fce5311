package build

import (
	"testing"

	"github.com/gorigid/constraint/model"
)

func freeBody(adr int, pos [3]float64) model.Body {
	return model.Body{DofNum: 6, DofAdr: adr, Pos: pos, Quat: [4]float64{0, 0, 0, 1}}
}

// freeDofs returns the 6-dof chain entries for a free body rooted at adr: a
// strictly decreasing ParentID walk from its outermost dof down to -1, so
// chain.Chain can merge it with another body's chain in tests without
// needing a real kinematic tree.
func freeDofs(adr int) []model.Dof {
	dofs := make([]model.Dof, 6)
	for i := range dofs {
		if i == 0 {
			dofs[i] = model.Dof{ParentID: -1}
		} else {
			dofs[i] = model.Dof{ParentID: adr + i - 1}
		}
	}
	return dofs
}

func TestConnectProducesThreeRowsWithExpectedResidual(t *testing.T) {

	m := &model.Model{
		Bodies: []model.Body{freeBody(0, [3]float64{0, 0, 0}), freeBody(6, [3]float64{1, 0, 0})},
		Dofs:   append(freeDofs(0), freeDofs(6)...),
		Equalities: []model.Equality{{
			Type: model.EqConnect, Active: true, Obj1ID: 0, Obj2ID: 1,
			Data:   [model.NEqData]float64{0, 0, 0, 0, 0, 0},
			SolRef: model.DefaultSolRef, SolImp: model.DefaultSolImp,
		}},
	}

	s := NewSet(8, 16)
	s.Equalities(m, nil, nil)

	if len(s.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(s.Rows))
	}
	if s.Rows[0].Pos != -1 {
		t.Fatalf("Rows[0].Pos (x residual) = %v, want -1", s.Rows[0].Pos)
	}
	for _, r := range s.Rows[1:] {
		if r.Pos != 0 {
			t.Errorf("expected zero residual on y/z axes, got %v", r.Pos)
		}
	}
}

func TestLimitsActivatesOnlyWithinMargin(t *testing.T) {

	m := &model.Model{
		Joints: []model.Joint{
			{Type: model.JointHinge, DofAdr: 0, QposAdr: 0, Limited: true, Range: [2]float64{-1, 1}, Margin: 0.05,
				SolRefLim: model.DefaultSolRef, SolImpLim: model.DefaultSolImp},
		},
	}

	s := NewSet(8, 16)
	s.Limits(m, []float64{0}, nil)
	if len(s.Rows) != 0 {
		t.Fatalf("mid-range joint should not activate a limit row, got %d rows", len(s.Rows))
	}

	s.Reset()
	s.Limits(m, []float64{0.98}, nil)
	if len(s.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(s.Rows))
	}
	if s.Rows[0].Dofs[0] != 0 || s.Rows[0].Jac[0] != -1 {
		t.Fatalf("expected row pushing back from upper bound, got dofs=%v jac=%v", s.Rows[0].Dofs, s.Rows[0].Jac)
	}
}

func TestFrictionsSkipsZeroLoss(t *testing.T) {

	m := &model.Model{
		Dofs: []model.Dof{{FrictionLoss: 0}, {FrictionLoss: 0.3, SolRefFriction: model.DefaultSolRef}},
	}
	s := NewSet(8, 16)
	s.Frictions(m)

	if len(s.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(s.Rows))
	}
	if s.Rows[0].Obj1ID != 1 {
		t.Fatalf("Rows[0].Obj1ID = %d, want 1", s.Rows[0].Obj1ID)
	}
}

func TestContactsSkipsExcluded(t *testing.T) {

	m := &model.Model{
		Bodies: []model.Body{freeBody(0, [3]float64{}), freeBody(6, [3]float64{0, 0, -0.01})},
		Dofs:   append(freeDofs(0), freeDofs(6)...),
		Opt:    model.Option{Cone: model.ConePyramidal},
	}
	cs := []model.Contact{
		{Body1: 0, Body2: 1, Dim: 3, Dist: -0.01, Friction: [5]float64{0.5}, Frame: model.NewFrame([9]float64{0, 0, 1, 1, 0, 0, 0, 1, 0}), SolRef: model.DefaultSolRef, SolImp: model.DefaultSolImp},
		{Body1: 0, Body2: 1, Dim: 3, Exclude: 1},
	}

	s := NewSet(16, 32)
	s.Contacts(m, cs)

	want := 2 * (cs[0].Dim - 1) // pyramidal: two rows per tangential direction
	if len(s.Rows) != want {
		t.Fatalf("len(Rows) = %d, want %d (second contact excluded)", len(s.Rows), want)
	}
	for _, r := range s.Rows {
		if r.Obj1ID != 0 {
			t.Errorf("row from excluded contact leaked into Rows: %+v", r)
		}
	}
}

func TestPrecountMatchesActiveLimitCount(t *testing.T) {

	m := &model.Model{
		Joints: []model.Joint{
			{Type: model.JointHinge, DofAdr: 0, QposAdr: 0, Limited: true, Range: [2]float64{-1, 1}, Margin: 0.05},
		},
	}
	qpos := []float64{0.98}
	count := Precount(m, qpos, nil, nil)
	if count.Limit != 1 {
		t.Fatalf("Precount().Limit = %d, want 1", count.Limit)
	}

	s := NewSet(8, 16)
	s.Limits(m, qpos, nil)
	if len(s.Rows) != count.Limit {
		t.Fatalf("instantiated %d limit rows, Precount predicted %d", len(s.Rows), count.Limit)
	}
}
