package update

import (
	"testing"

	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/params"
	"github.com/stretchr/testify/assert"
)

func TestReferenceZeroAtRest(t *testing.T) {

	kb := params.KBIP{K: 100, B: 10, I: 0.9}
	assert.Equal(t, 0.0, Reference(kb, 0, 0))
}

func TestEvaluateUnilateralInactiveWhenSeparating(t *testing.T) {

	row := Evaluate(model.LIMIT_JOINT, 1.0, 0.5, 0.01, 0)
	assert.Equal(t, Inactive, row.State)
	assert.Equal(t, 0.0, row.Force)
}

func TestEvaluateUnilateralActiveWhenViolating(t *testing.T) {

	row := Evaluate(model.LIMIT_JOINT, -0.5, 0.0, 0.01, 0)
	assert.Equal(t, Active, row.State)
	assert.True(t, row.Force > 0)
	assert.InDelta(t, 0.5*0.01*row.Force*row.Force, row.Cost, 1e-12)
}

func TestEvaluateBilateralAlwaysActive(t *testing.T) {

	row := Evaluate(model.EQUALITY, 5, 5, 0.01, 0)
	assert.Equal(t, Active, row.State)
}

func TestEvaluateFrictionSaturatesBeyondBound(t *testing.T) {

	// residual = jar - aref = -3 - 0 = -3 <= -R*f = -0.01*100 = -1: saturated negative.
	row := Evaluate(model.FRICTION_DOF, -3, 0, 0.01, 100)
	assert.Equal(t, LinearNeg, row.State)
	assert.Equal(t, 100.0, row.Force)

	row = Evaluate(model.FRICTION_DOF, 3, 0, 0.01, 100)
	assert.Equal(t, LinearPos, row.State)
	assert.Equal(t, -100.0, row.Force)
}

func TestEvaluateFrictionQuadraticWithinBound(t *testing.T) {

	// residual = -0.5, bound R*f = 0.01*100 = 1: within [-1, 1], quadratic.
	row := Evaluate(model.FRICTION_DOF, -0.5, 0, 0.01, 100)
	assert.Equal(t, Active, row.State)
	assert.InDelta(t, 50.0, row.Force, 1e-12)
}

func TestEvaluateConeTopZoneSatisfiedIsInactive(t *testing.T) {

	g := ConeGroup{
		Jar:  []float64{1, 0, 0},
		Aref: []float64{0, 0, 0},
		R:    []float64{0.01, 0.01, 0.01},
		Mu:   []float64{0, 0.5, 0.5},
	}
	rows, h := EvaluateCone(g)
	for i, r := range rows {
		assert.Equal(t, Inactive, r.State, "row %d", i)
		assert.Equal(t, 0.0, r.Force, "row %d", i)
	}
	for _, v := range h {
		assert.Equal(t, 0.0, v)
	}
}

func TestEvaluateConeBottomZoneIsPerRowQuadratic(t *testing.T) {

	g := ConeGroup{
		Jar:  []float64{-1, 0, 0},
		Aref: []float64{0, 0, 0},
		R:    []float64{0.01, 0.01, 0.01},
		Mu:   []float64{0, 0.5, 0.5},
	}
	rows, h := EvaluateCone(g)
	assert.Equal(t, Active, rows[0].State)
	assert.InDelta(t, 100.0, rows[0].Force, 1e-9) // -(-1)/0.01
	assert.InDelta(t, 100.0, h[0], 1e-9)
}

func TestEvaluateConeMiddleZoneCouplesRows(t *testing.T) {

	g := ConeGroup{
		Jar:  []float64{-1, 1, 0},
		Aref: []float64{0, 0, 0},
		R:    []float64{0.01, 0.01, 0.01},
		Mu:   []float64{0, 0.5, 0.5},
	}
	rows, h := EvaluateCone(g)

	assert.Equal(t, Cone, rows[0].State)
	assert.InDelta(t, 120.0, rows[0].Force, 1e-6)
	assert.InDelta(t, 90.0, rows[0].Cost, 1e-6)
	assert.InDelta(t, -60.0, rows[1].Force, 1e-6) // -120/0.5 * 0.5 * 0.5
	assert.InDelta(t, 0.0, rows[2].Force, 1e-6)
	assert.InDelta(t, 80.0, h[0], 1e-6) // D_m * mu^2 = 320 * 0.25
}
