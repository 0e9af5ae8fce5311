// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse holds the constraint Jacobian in compressed row form once
// the element count crosses model.SparseAutoThreshold (spec §4.3, §4.7):
// one row per active constraint row. FindSupernodes reports "supernodes" —
// runs of adjacent rows sharing one contiguous column range — but Jv and
// JTv do not use them; they walk the matrix one row at a time.
package sparse

// Matrix is a constraint Jacobian in row-compressed form. RowStart has
// NumRows+1 entries; Cols and Vals are parallel slices indexed by the same
// range [RowStart[r], RowStart[r+1]) for row r.
type Matrix struct {
	NumRows int
	NumCols int
	RowStart []int
	Cols     []int
	Vals     []float64
}

// NewMatrix creates an empty Matrix sized for numRows rows over numCols
// columns, with capacity reserved for nnzHint nonzero entries.
func NewMatrix(numRows, numCols, nnzHint int) *Matrix {
	return &Matrix{
		NumRows:  numRows,
		NumCols:  numCols,
		RowStart: make([]int, numRows+1),
		Cols:     make([]int, 0, nnzHint),
		Vals:     make([]float64, 0, nnzHint),
	}
}

// Reset empties the matrix for numRows rows over numCols columns, keeping
// backing arrays where possible.
func (m *Matrix) Reset(numRows, numCols int) {
	m.NumRows = numRows
	m.NumCols = numCols
	if cap(m.RowStart) < numRows+1 {
		m.RowStart = make([]int, numRows+1)
	} else {
		m.RowStart = m.RowStart[:numRows+1]
		for i := range m.RowStart {
			m.RowStart[i] = 0
		}
	}
	m.Cols = m.Cols[:0]
	m.Vals = m.Vals[:0]
}

// AppendRow appends one row's (cols, vals) pair — cols must already be in
// strictly increasing order, which every chain.Chain this package receives
// rows from already guarantees after reversal (spec §4.2 produces
// decreasing order; callers reverse before calling AppendRow). row must be
// the next row index in sequence (NumRows known ahead of time from the
// precount stage, spec §4.5).
func (m *Matrix) AppendRow(row int, cols []int, vals []float64) {
	m.Cols = append(m.Cols, cols...)
	m.Vals = append(m.Vals, vals...)
	m.RowStart[row+1] = len(m.Cols)
}

// FinishRow is an alternative to AppendRow for callers building a row's
// entries with Col/Val appends interleaved with other work.
func (m *Matrix) FinishRow(row int) {
	m.RowStart[row+1] = len(m.Cols)
}

// AppendEntry appends a single (col, val) pair to the row currently being
// built (the row whose FinishRow has not yet been called).
func (m *Matrix) AppendEntry(col int, val float64) {
	m.Cols = append(m.Cols, col)
	m.Vals = append(m.Vals, val)
}

// Row returns the column and value slices for row r.
func (m *Matrix) Row(r int) (cols []int, vals []float64) {
	lo, hi := m.RowStart[r], m.RowStart[r+1]
	return m.Cols[lo:hi], m.Vals[lo:hi]
}

// Supernode is a run of consecutive columns shared by every row in
// [RowLo, RowHi) — the common case of a serial dof chain segment shared by
// several rows instantiated from the same body pair (spec §4.7).
type Supernode struct {
	ColLo, ColHi int // half-open column range
	RowLo, RowHi int // half-open row range sharing this column run
}

// FindSupernodes scans m's rows for maximal runs of identical, contiguous
// column sets between adjacent rows (Jv and JTv do not consult the
// result). Returns nil if no row shares a column range
// with its neighbor (i.e. supernode detection found nothing to merge).
func FindSupernodes(m *Matrix) []Supernode {

	var nodes []Supernode
	r := 0
	for r < m.NumRows {
		cols, _ := m.Row(r)
		if len(cols) == 0 {
			r++
			continue
		}
		lo, hi := cols[0], cols[len(cols)-1]+1
		rowHi := r + 1
		for rowHi < m.NumRows {
			c2, _ := m.Row(rowHi)
			if !sameRange(c2, lo, hi) {
				break
			}
			rowHi++
		}
		if rowHi > r+1 {
			nodes = append(nodes, Supernode{ColLo: lo, ColHi: hi, RowLo: r, RowHi: rowHi})
		}
		r = rowHi
	}
	return nodes
}

func sameRange(cols []int, lo, hi int) bool {
	if len(cols) == 0 || cols[0] != lo || cols[len(cols)-1]+1 != hi {
		return false
	}
	for i := 1; i < len(cols); i++ {
		if cols[i] != cols[i-1]+1 {
			return false
		}
	}
	return true
}

// Jv computes dst = J*v, dst sized m.NumRows, v sized m.NumCols.
func (m *Matrix) Jv(v []float64, dst []float64) {
	for r := 0; r < m.NumRows; r++ {
		cols, vals := m.Row(r)
		var sum float64
		for i, c := range cols {
			sum += vals[i] * v[c]
		}
		dst[r] = sum
	}
}

// JTv computes dst = J^T*v, dst sized m.NumCols (zeroed by the caller), v
// sized m.NumRows.
func (m *Matrix) JTv(v []float64, dst []float64) {
	for r := 0; r < m.NumRows; r++ {
		cols, vals := m.Row(r)
		coef := v[r]
		if coef == 0 {
			continue
		}
		for i, c := range cols {
			dst[c] += vals[i] * coef
		}
	}
}
