// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package build enumerates the active constraint rows for one step —
// equalities, dof and tendon friction, joint and tendon limits, and
// contacts — and instantiates each row's Jacobian over the dof chain its
// bodies or dofs touch (spec §4.4). It never iterates a solver and never
// computes collision geometry; it only turns a Model plus a set of already
// detected Contacts into the row list the rest of the core operates on.
package build

import (
	"github.com/gorigid/constraint/arena"
	"github.com/gorigid/constraint/chain"
	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/rowbuilder"
	"github.com/gorigid/constraint/xerr"
)

// Row is one active scalar constraint row, with its Jacobian already
// expressed over a strictly increasing dof column list.
type Row struct {
	Type   model.ConstraintType
	Obj1ID int // equality, joint, tendon, or contact id this row was instantiated from
	Obj2ID int // equality's second object or contact's second body, or -1

	Pos    float64 // constraint violation at this row (0 for a perfectly satisfied equality)
	Margin float64
	SolRef model.SolRef
	SolImp model.SolImp
	Mu     float64 // friction coefficient, contact/friction rows only

	Dofs []int
	Jac  []float64
}

// Set is the growing collection of rows built over one step, plus the
// warnings accumulated while building them (spec §7). dofArena/jacArena
// hold the Dofs/Jac slices newRow hands out (rows re-sorted by
// sortRowByDof end up in freshly allocated slices instead); chainBuf/rowBuf are the scratch chain.Chain and
// rowbuilder.Row a two-body row (equality Connect, contact) merges its
// bodies' dof columns through (spec §4.2, §4.3).
type Set struct {
	Rows     []Row
	Warnings []*xerr.Warning

	dofArena *arena.Int
	jacArena *arena.Float
	chainBuf *chain.Chain
	rowBuf   *rowbuilder.Row
}

// NewSet creates an empty Set with capacity hints. rowCapHint sizes the row
// slice and the per-row dof/Jacobian arenas (at up to 12 entries per row,
// matching precount's NNZ upper bound); dofCapHint sizes the scratch chain
// and row builder used to merge two bodies' dof columns.
func NewSet(rowCapHint, dofCapHint int) *Set {
	return &Set{
		Rows:     make([]Row, 0, rowCapHint),
		dofArena: arena.NewInt(rowCapHint * 12),
		jacArena: arena.NewFloat(rowCapHint * 12),
		chainBuf: chain.New(dofCapHint),
		rowBuf:   rowbuilder.NewRow(dofCapHint),
	}
}

// Reset empties the set, keeping backing arrays.
func (s *Set) Reset() {
	s.Rows = s.Rows[:0]
	s.Warnings = s.Warnings[:0]
	s.dofArena.Reset()
	s.jacArena.Reset()
}

// newRow copies dofs/vals into arena-backed storage so the row's Dofs/Jac
// slices outlive the caller's scratch buffers without a per-row heap
// allocation.
func (s *Set) newRow(dofs []int, vals []float64) ([]int, []float64) {
	n := len(dofs)
	d := s.dofArena.Append(n)
	v := s.jacArena.Append(n)
	copy(d, dofs)
	copy(v, vals)
	return d, v
}

// directionJacobian builds a two-body (or one-body, if haveB is false)
// point-Jacobian row: for each nonzero axis k of dir, bodyA contributes
// scaleA*dir[k] (plus its lever-arm rotational entries about rA) and, if
// haveB, bodyB contributes scaleB*dir[k] about rB. The column list is the
// two bodies' merged ancestor dof chain (spec §4.2), so a row touching a
// shared ancestor gets exactly one entry for it; the values themselves
// remain restricted to each body's own dofs (see DESIGN.md).
func (s *Set) directionJacobian(m *model.Model, bodyA model.Body, haveB bool, bodyB model.Body, rA, rB, dir [3]float64, scaleA, scaleB float64) (dofs []int, vals []float64) {

	if haveB {
		s.chainBuf.BuildPair(m.Dofs, bodyA, bodyB)
	} else {
		s.chainBuf.Build(m.Dofs, bodyA)
	}
	s.rowBuf.FromChain(s.chainBuf.Dofs())

	for k := 0; k < 3; k++ {
		if dir[k] == 0 {
			continue
		}
		addPointAxis(s.rowBuf, bodyA, rA, k, scaleA*dir[k])
		if haveB {
			addPointAxis(s.rowBuf, bodyB, rB, k, scaleB*dir[k])
		}
	}

	d, v := sortedCopy(s.rowBuf.Dofs, s.rowBuf.Vals)
	return s.newRow(d, v)
}

// addPointAxis adds a world-frame point's Cartesian axis-k velocity
// Jacobian contribution for body b (lever arm r) into row, scaled by sign
// (spec §4.3: v_point = v_body + w x r).
func addPointAxis(row *rowbuilder.Row, b model.Body, r [3]float64, k int, sign float64) {
	if b.DofNum == 0 {
		return
	}
	row.Add(b.DofAdr+k, sign)
	if b.DofNum >= 6 {
		ang := axisCross(r, k)
		for i := 0; i < 3; i++ {
			if ang[i] != 0 {
				row.Add(b.DofAdr+3+i, sign*ang[i])
			}
		}
	}
}

func (s *Set) warn(w *xerr.Warning) {
	if w != nil {
		s.Warnings = append(s.Warnings, w)
	}
}

// sortedCopy returns a strictly increasing copy of a chain's (decreasing)
// dof list, paired with the row values in the matching order.
func sortedCopy(dofs []int, vals []float64) ([]int, []float64) {
	n := len(dofs)
	outDofs := make([]int, n)
	outVals := make([]float64, n)
	for i := 0; i < n; i++ {
		outDofs[i] = dofs[n-1-i]
		outVals[i] = vals[n-1-i]
	}
	return outDofs, outVals
}

// addSingleDofRow returns a one-entry row at dof d. A joint or tendon
// limit and friction-loss row constrains its own dof directly — ancestor
// dofs never carry a nonzero entry for it (spec §4.2 Open Question
// resolution, see DESIGN.md).
func (s *Set) addSingleDofRow(d int, coef float64) (rowDofs []int, rowVals []float64) {
	return s.newRow([]int{d}, []float64{coef})
}

// addMomentRow appends a row whose Jacobian is a tendon-style moment-arm
// vector over an explicit (dof, coefficient) list, scaled by sign.
func (s *Set) addMomentRow(dofList []int, moment []float64, sign float64) (rowDofs []int, rowVals []float64) {
	vals := make([]float64, len(moment))
	for i, c := range moment {
		vals[i] = sign * c
	}
	return s.newRow(dofList, vals)
}
