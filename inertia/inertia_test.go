package inertia

import (
	"testing"

	"github.com/gorigid/constraint/model"
	"github.com/stretchr/testify/assert"
)

// A 2-dof diagonal mass matrix M = diag(4, 9); its LDL^T factor with L =
// identity and D = (4, 9) trivially reproduces M^-1 = diag(0.25, 1/9).
func diagModel() *model.Model {
	return &model.Model{
		NV:            2,
		QLD:           []float64{0, 0, 0, 0},
		QLDiagSqrtInv: []float64{0.5, 1.0 / 3},
	}
}

func TestSolveMDiagonal(t *testing.T) {

	m := diagModel()
	y := make([]float64, 2)
	SolveM(m, []float64{4, 18}, y)

	assert.InDelta(t, 1.0, y[0], 1e-12)
	assert.InDelta(t, 2.0, y[1], 1e-12)
}

func TestDenseAddsRegularizationOnDiagonal(t *testing.T) {

	m := diagModel()
	rows := []RowRef{
		{Dofs: []int{0}, Vals: []float64{1}, R: 0.1},
		{Dofs: []int{1}, Vals: []float64{1}, R: 0.2},
	}
	scratch := make([]float64, 2)
	a := Dense(m, rows, scratch)

	assert.InDelta(t, 0.25+0.1, a[0], 1e-12)
	assert.InDelta(t, 1.0/9+0.2, a[3], 1e-12)
	assert.InDelta(t, 0, a[1], 1e-12) // decoupled dofs -> zero off-diagonal
}

func TestSparseMatchesDenseOnSmallProblem(t *testing.T) {

	m := diagModel()
	rows := []RowRef{
		{Dofs: []int{0}, Vals: []float64{1}, R: 0.1},
		{Dofs: []int{1}, Vals: []float64{1}, R: 0.2},
	}
	scratch := make([]float64, 2)
	dense := Dense(m, rows, scratch)
	sp := Sparse(m, rows, scratch, 1e-15)

	for i := 0; i < 2; i++ {
		cols, vals := sp.Row(i)
		for k, c := range cols {
			assert.InDelta(t, dense[i*2+c], vals[k], 1e-12)
		}
	}
}
