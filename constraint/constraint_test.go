package constraint

import (
	"testing"

	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/update"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A single hinge dof with a mass of 2 (M = diag(2)), currently sitting
// 0.02 past its upper limit of 1.0 with a 0.05 margin.
func singleHingeModel() *model.Model {
	return &model.Model{
		NV: 1,
		Dofs: []model.Dof{{ParentID: -1, InvWeight: 0.5}},
		Joints: []model.Joint{
			{Type: model.JointHinge, DofAdr: 0, QposAdr: 0, Limited: true,
				Range: [2]float64{-1, 1}, Margin: 0.05,
				SolRefLim: model.DefaultSolRef, SolImpLim: model.DefaultSolImp},
		},
		QLD:           []float64{0},
		QLDiagSqrtInv: []float64{1.0 / 1.4142135623730951}, // 1/sqrt(2)
		Opt: model.Option{
			Timestep: 0.002,
			Jacobian: model.JacobianAuto,
		},
	}
}

func TestFullPipelineActivatesLimitAndComputesForce(t *testing.T) {

	m := singleHingeModel()
	d := New(m, 8)

	qpos := []float64{1.02} // already past the upper bound by 0.02
	err := d.MakeConstraint(qpos, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, d.NumRows())

	vel := []float64{0}
	d.ReferenceConstraint(vel)

	d.ProjectConstraint()
	require.NotNil(t, d.ADense)
	assert.InDelta(t, 0.5+d.R[0], d.ADense[0], 1e-9)

	jar := []float64{0} // candidate: zero acceleration along the Jacobian
	d.ConstraintUpdate(jar)

	require.Len(t, d.Rows, 1)
	if d.Aref[0] <= 0 {
		t.Fatalf("expected positive reference acceleration pushing back from the violated upper bound, got %v", d.Aref[0])
	}
	assert.Equal(t, update.Active, d.Rows[0].State)
	assert.Greater(t, d.Rows[0].Force, 0.0)
}

func TestMakeConstraintResetsBetweenSteps(t *testing.T) {

	m := singleHingeModel()
	d := New(m, 8)

	require.NoError(t, d.MakeConstraint([]float64{0.98}, nil, nil))
	require.Equal(t, 1, d.NumRows())

	require.NoError(t, d.MakeConstraint([]float64{0}, nil, nil))
	require.Equal(t, 0, d.NumRows())
}
