// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rowbuilder accumulates one constraint row's Jacobian entries
// over the dof chain a constraint instantiator already merged (package
// chain), and provides the row-row and row-vector products the later
// reference/impedance and projected-inertia stages need — generalizing the
// reference engine's two-vector JacobianElement (a 3-spatial + 3-rotational
// dot product) to an arbitrary-length dof-space row (spec §4.3).
package rowbuilder

// Row holds one constraint row's nonzero Jacobian entries, in the same
// order as the chain.Chain it was built from: Vals[k] is the entry at dof
// column Dofs[k].
type Row struct {
	Dofs []int
	Vals []float64
}

// NewRow creates an empty Row with capacity hint.
func NewRow(capHint int) *Row {
	return &Row{Dofs: make([]int, 0, capHint), Vals: make([]float64, 0, capHint)}
}

// Reset empties the row, keeping its backing arrays.
func (r *Row) Reset() {
	r.Dofs = r.Dofs[:0]
	r.Vals = r.Vals[:0]
}

// FromChain initializes the row over dofs (typically chain.Chain.Dofs()),
// zeroing every entry.
func (r *Row) FromChain(dofs []int) {
	r.Reset()
	r.Dofs = append(r.Dofs, dofs...)
	for range dofs {
		r.Vals = append(r.Vals, 0)
	}
}

// Add accumulates val into the entry at dof column col, which must already
// be present in the row (i.e. col is a member of the chain this row was
// built from). Constraint instantiators call this once per dof each body's
// kinematic contribution touches (spec §4.3).
func (r *Row) Add(col int, val float64) {
	for i, d := range r.Dofs {
		if d == col {
			r.Vals[i] += val
			return
		}
	}
}

// Dot returns this row's inner product with other, restricted to the dof
// columns the two rows share — the generalization of JacobianElement's
// MultiplyElement used to compute off-diagonal A_R entries between two
// constraint rows (spec §4.8).
func (r *Row) Dot(other *Row) float64 {
	var sum float64
	for i, d := range r.Dofs {
		for j, e := range other.Dofs {
			if d == e {
				sum += r.Vals[i] * other.Vals[j]
				break
			}
		}
	}
	return sum
}

// DotVector returns this row's inner product with a dense nv-length vector.
func (r *Row) DotVector(v []float64) float64 {
	var sum float64
	for i, d := range r.Dofs {
		sum += r.Vals[i] * v[d]
	}
	return sum
}

// ScatterDense writes the row's entries into dst, a dense nv-length row
// (all other entries of dst are left untouched — the caller zeroes dst
// once per row).
func (r *Row) ScatterDense(dst []float64) {
	for i, d := range r.Dofs {
		dst[d] = r.Vals[i]
	}
}

// AddInvMassScaled accumulates into acc the row scaled by a per-dof inverse
// mass (or inverse-mass-chain factor), i.e. acc[d] += invMass[d]*val[d] for
// each entry — used while forming M^-1 J^T one row at a time (spec §4.8).
func (r *Row) AddInvMassScaled(acc []float64, invMass []float64) {
	for i, d := range r.Dofs {
		acc[d] += invMass[d] * r.Vals[i]
	}
}
