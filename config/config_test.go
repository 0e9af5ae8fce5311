package config

import (
	"strings"
	"testing"

	"github.com/gorigid/constraint/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsDefaults(t *testing.T) {

	opt, err := LoadOptions(strings.NewReader(`timestep: 0.002`))
	require.NoError(t, err)

	assert.Equal(t, model.ConePyramidal, opt.Cone)
	assert.Equal(t, model.JacobianAuto, opt.Jacobian)
	assert.Equal(t, model.SolverPGS, opt.Solver)
	assert.Equal(t, 0.002, opt.Timestep)
	assert.Equal(t, model.DefaultSolRef, opt.OSolRef)
}

func TestLoadOptionsFullDocument(t *testing.T) {

	doc := `
cone: elliptic
jacobian: sparse
solver: newton
timestep: 0.001
impratio: 2.0
disable_limit: true
enable_override: true
o_solref: [0.01, 0.9]
o_solimp: [0.8, 0.95, 0.002, 0.4, 3]
o_margin: 0.001
`
	opt, err := LoadOptions(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, model.ConeElliptic, opt.Cone)
	assert.Equal(t, model.JacobianSparse, opt.Jacobian)
	assert.Equal(t, model.SolverPrimalNewton, opt.Solver)
	assert.True(t, opt.Disable.Has(model.DisableLimit))
	assert.True(t, opt.Disable.Has(model.EnableOverride))
	assert.Equal(t, model.SolRef{0.01, 0.9}, opt.OSolRef)
	assert.Equal(t, model.SolImp{0.8, 0.95, 0.002, 0.4, 3}, opt.OSolImp)
}

func TestLoadOptionsRejectsUnknownCone(t *testing.T) {

	_, err := LoadOptions(strings.NewReader(`cone: squircle`))
	require.Error(t, err)
}
