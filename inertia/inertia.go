// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inertia builds the projected constraint inertia A_R = J*M^-1*J^T
// + diag(R), the matrix the solver's convex program is posed against (spec
// §4.8). It never factors M itself — it consumes the model's cached
// LDL^T factor (model.QLD, model.QLDiagSqrtInv) and solves M*x = b by
// forward/back substitution for each Jacobian row, the same two-pass
// pattern the reference engine's Equation.ComputeGiMGt generalizes from a
// single free body's constant 6x6 inverse-mass block to an arbitrary dof
// count.
package inertia

import (
	"math"

	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/sparse"
)

// SolveM computes y = M^-1 * x via forward/back substitution against the
// model's cached factor M = L*D*L^T.
func SolveM(m *model.Model, x []float64, y []float64) {

	nv := m.NV
	copy(y, x[:nv])

	// Forward: solve L*z = x.
	for d := 0; d < nv; d++ {
		for a := 0; a < d; a++ {
			lda := m.QLD[d*nv+a]
			if lda != 0 {
				y[d] -= lda * y[a]
			}
		}
	}

	// Scale: solve D*w = z.
	for d := 0; d < nv; d++ {
		s := m.QLDiagSqrtInv[d]
		y[d] *= s * s
	}

	// Back: solve L^T*y = w.
	for d := nv - 1; d >= 0; d-- {
		val := y[d]
		for a := 0; a < d; a++ {
			lda := m.QLD[d*nv+a]
			if lda != 0 {
				y[a] -= lda * val
			}
		}
	}
}

// RowRef is the minimal view of a constraint row this package needs: its
// dof-space Jacobian (Dofs ascending, parallel Vals), and the R
// regularization already computed for it by package params.
type RowRef struct {
	Dofs []int
	Vals []float64
	R    float64
}

// Dense builds A_R as a dense, row-major n*n matrix (n = len(rows)),
// suitable when model.JacobianDense or the auto threshold picks dense
// (spec §4.7). scratch must have length m.NV and is reused across calls.
func Dense(m *model.Model, rows []RowRef, scratch []float64) []float64 {

	n := len(rows)
	a := make([]float64, n*n)

	miJt := make([][]float64, n)
	for i, r := range rows {
		for k := range scratch {
			scratch[k] = 0
		}
		for k, d := range r.Dofs {
			scratch[d] = r.Vals[k]
		}
		col := make([]float64, m.NV)
		SolveM(m, scratch, col)
		miJt[i] = col
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sum := dotRowWithDense(rows[i], miJt[j])
			a[i*n+j] = sum
			a[j*n+i] = sum
		}
		a[i*n+i] += rows[i].R
	}
	return a
}

func dotRowWithDense(r RowRef, v []float64) float64 {
	var sum float64
	for k, d := range r.Dofs {
		sum += r.Vals[k] * v[d]
	}
	return sum
}

// Sparse builds A_R in compressed row form, dropping entries below zeroTol
// (M^-1*J^T is generally dense even when J is sparse, but most of its
// entries are negligible once a row's dof chain doesn't reach another
// row's — keeping only the significant ones is what makes the sparse path
// worthwhile once nv crosses model.SparseAutoThreshold, spec §4.7).
func Sparse(m *model.Model, rows []RowRef, scratch []float64, zeroTol float64) *sparse.Matrix {

	n := len(rows)
	miJt := make([][]float64, n)
	for i, r := range rows {
		for k := range scratch {
			scratch[k] = 0
		}
		for k, d := range r.Dofs {
			scratch[d] = r.Vals[k]
		}
		col := make([]float64, m.NV)
		SolveM(m, scratch, col)
		miJt[i] = col
	}

	out := sparse.NewMatrix(n, n, n*4)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := dotRowWithDense(rows[i], miJt[j])
			if i == j {
				sum += rows[i].R
			}
			if math.Abs(sum) <= zeroTol && i != j {
				continue
			}
			out.AppendEntry(j, sum)
		}
		out.FinishRow(i)
	}
	return out
}
