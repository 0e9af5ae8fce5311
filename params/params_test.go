package params

import (
	"testing"

	"github.com/gorigid/constraint/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStandardClampsShortTimeconst(t *testing.T) {

	ref := model.SolRef{0.001, 1.0}
	out, warn := Sanitize(ref, 0.01, true)

	require.NotNil(t, warn)
	assert.InDelta(t, 0.02, out[0], 1e-12)
	assert.Equal(t, 1.0, out[1])
}

func TestSanitizeStandardPassesThrough(t *testing.T) {

	ref := model.SolRef{0.05, 1.5}
	out, warn := Sanitize(ref, 0.01, true)

	assert.Nil(t, warn)
	assert.Equal(t, ref, out)
}

func TestSanitizeDirectModeRequiresBothNegative(t *testing.T) {

	ref := model.SolRef{-100, 5}
	out, warn := Sanitize(ref, 0.01, true)

	require.NotNil(t, warn)
	assert.Equal(t, model.DefaultSolRef, out)
}

func TestSanitizeDirectModeValid(t *testing.T) {

	ref := model.SolRef{-100, -10}
	out, warn := Sanitize(ref, 0.01, true)

	assert.Nil(t, warn)
	assert.Equal(t, ref, out)
}

func TestSanitizeImpRejectsOutOfRange(t *testing.T) {

	imp := model.SolImp{0.95, 0.9, 0.001, 0.5, 2} // dmin > dmax
	out, warn := SanitizeImp(imp)

	require.NotNil(t, warn)
	assert.Equal(t, model.DefaultSolImp, out)
}

func TestImpedanceBoundary(t *testing.T) {

	imp := model.SolImp{0.9, 0.95, 0.01, 0.5, 2}

	assert.Equal(t, imp[0], Impedance(imp, -1))
	assert.Equal(t, imp[1], Impedance(imp, 1))

	mid := Impedance(imp, imp[2]*imp[3])
	assert.True(t, mid > imp[0] && mid < imp[1])
}

func TestBuildStandardMode(t *testing.T) {

	ref := model.SolRef{0.02, 1.0}
	imp := model.SolImp{0.9, 0.95, 0.001, 0.5, 2}
	dmax := imp[1]

	kb := Build(ref, imp, 0, 0.002, false)
	assert.InDelta(t, 1/(dmax*dmax*0.02*0.02), kb.K, 1e-6)
	assert.InDelta(t, 2/(dmax*0.02), kb.B, 1e-9)
	assert.InDelta(t, 0.9, kb.I, 1e-9)
}

func TestBuildStandardModeZeroKForFriction(t *testing.T) {

	ref := model.SolRef{0.02, 1.0}
	imp := model.SolImp{0.9, 0.95, 0.001, 0.5, 2}

	kb := Build(ref, imp, 0, 0.002, true)
	assert.Equal(t, 0.0, kb.K)
	assert.True(t, kb.B > 0)
}

func TestBuildDirectMode(t *testing.T) {

	ref := model.SolRef{-1000, -50}
	imp := model.SolImp{0.9, 0.95, 0.001, 0.5, 2}
	dmax := imp[1]

	kb := Build(ref, imp, 0, 0.002, false)
	assert.InDelta(t, 1000.0/(dmax*dmax), kb.K, 1e-6)
	assert.InDelta(t, 50.0/dmax, kb.B, 1e-9)
}

func TestBuildDirectModeZeroKForFriction(t *testing.T) {

	ref := model.SolRef{-1000, -50}
	imp := model.SolImp{0.9, 0.95, 0.001, 0.5, 2}
	dmax := imp[1]

	kb := Build(ref, imp, 0, 0.002, true)
	assert.Equal(t, 0.0, kb.K)
	assert.InDelta(t, 50.0/dmax, kb.B, 1e-9)
}

func TestRIncreasesAsImpedanceDrops(t *testing.T) {

	kbHigh := KBIP{I: 0.95}
	kbLow := KBIP{I: 0.5}

	rHigh := R(kbHigh, 1.0)
	rLow := R(kbLow, 1.0)
	assert.True(t, rLow > rHigh, "R should grow as impedance falls")
}

func TestFrictionConeCouplingDividesByImpratio(t *testing.T) {

	r := FrictionConeCoupling(2.0, 0.5)
	assert.InDelta(t, 4.0, r, 1e-12)
}

func TestFrictionConeCouplingDefaultsImpratioToOne(t *testing.T) {

	r := FrictionConeCoupling(2.0, 0)
	assert.InDelta(t, 2.0, r, 1e-12)
}

func TestRegularizedMuScalesWithSqrtRatio(t *testing.T) {

	mu := RegularizedMu(1.0, 4.0, 1.0)
	assert.InDelta(t, 2.0, mu, 1e-12)
}

func TestRegularizedMuFallsBackWhenNormalRIsZero(t *testing.T) {

	mu := RegularizedMu(1.0, 4.0, 0)
	assert.InDelta(t, 1.0, mu, 1e-12)
}

func TestFrictionConeAxisChainsFromFirstPair(t *testing.T) {

	r := FrictionConeAxis(4.0, 1.0, 0.5)
	assert.InDelta(t, 16.0, r, 1e-12) // 4 * (1/0.5)^2
}

func TestFrictionConeAxisFallsBackWhenMuIsZero(t *testing.T) {

	r := FrictionConeAxis(4.0, 1.0, 0)
	assert.InDelta(t, 4.0, r, 1e-12)
}

func TestPyramidalConeR(t *testing.T) {

	r := PyramidalConeR(0.5, 2.0)
	assert.InDelta(t, 1.0, r, 1e-12) // 2 * 0.25 * 2
}

func TestDiagApproxContactElliptic(t *testing.T) {

	assert.Equal(t, 1.5, DiagApproxContactElliptic(0, 1.5, 3.0))
	assert.Equal(t, 1.5, DiagApproxContactElliptic(2, 1.5, 3.0))
	assert.Equal(t, 3.0, DiagApproxContactElliptic(3, 1.5, 3.0))
}

func TestDiagApproxContactPyramidal(t *testing.T) {

	tran, rot := 1.5, 3.0
	mu := 0.5
	assert.InDelta(t, tran+mu*mu*tran, DiagApproxContactPyramidal(0, mu, tran, rot), 1e-12)
	assert.InDelta(t, tran+mu*mu*rot, DiagApproxContactPyramidal(2, mu, tran, rot), 1e-12)
}

func TestDiagApproxFromR(t *testing.T) {

	kb := KBIP{I: 0.8}
	assert.InDelta(t, 2.0*0.8/0.2, DiagApproxFromR(2.0, kb), 1e-9)

	kbFull := KBIP{I: 1}
	assert.Equal(t, 2.0, DiagApproxFromR(2.0, kbFull))
}
