// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chain merges the ancestor-dof chains of the one or two bodies a
// constraint row touches into the sorted list of dof columns that row's
// Jacobian actually needs (spec §4.2). A body's chain is the path from its
// own outermost dof up through its parent dofs to the root; merging two
// bodies' chains for a two-body row (an equality, or a contact between two
// moving bodies) walks both chains from the leaf inward, taking the larger
// index at each step, exactly like a merge step of two sorted lists.
package chain

import "github.com/gorigid/constraint/model"

// Chain is a dof index list in strictly decreasing order (leaf to root),
// reused across calls via Reset to avoid per-row allocation.
type Chain struct {
	dofs []int
}

// New creates an empty Chain with the given capacity hint.
func New(capHint int) *Chain {
	return &Chain{dofs: make([]int, 0, capHint)}
}

// Reset empties the chain, keeping its backing array.
func (c *Chain) Reset() {
	c.dofs = c.dofs[:0]
}

// Dofs returns the merged, strictly decreasing dof index list.
func (c *Chain) Dofs() []int { return c.dofs }

// Len returns the number of dofs in the chain.
func (c *Chain) Len() int { return len(c.dofs) }

// single walks one body's dof chain from its outermost dof to the root,
// appending into dst (already-present entries are left in place; used only
// when dst is empty, i.e. one-body rows).
func single(dofs []model.Dof, lastDof int, dst []int) []int {
	for d := lastDof; d >= 0; d = dofs[d].ParentID {
		dst = append(dst, d)
	}
	return dst
}

// Build fills the chain with the ancestor dofs of a one-body row (spec
// §4.2, simple merge case: a single body's own chain needs no merging).
func (c *Chain) Build(dofs []model.Dof, body model.Body) {
	c.Reset()
	if body.DofNum == 0 {
		return
	}
	c.dofs = single(dofs, body.LastDof(), c.dofs)
}

// BuildPair merges the ancestor dof chains of two bodies into strictly
// decreasing order with duplicates removed — the shared-ancestor dofs
// contribute only once, since both bodies' motion passes through them
// (spec §4.2, two-body merge case).
func (c *Chain) BuildPair(dofs []model.Dof, a, b model.Body) {
	c.Reset()

	i := a.LastDof()
	j := b.LastDof()
	for i >= 0 || j >= 0 {
		switch {
		case j < 0 || (i >= 0 && i > j):
			c.dofs = append(c.dofs, i)
			i = dofs[i].ParentID
		case i < 0 || j > i:
			c.dofs = append(c.dofs, j)
			j = dofs[j].ParentID
		default: // i == j: shared ancestor, emit once and advance both
			c.dofs = append(c.dofs, i)
			i = dofs[i].ParentID
			j = dofs[j].ParentID
		}
	}
}

// Empty reports whether the chain has no dofs, the case in which a row
// touching only a world-fixed body contributes nothing to the Jacobian
// (spec §4.2 edge case; the row is still counted but carries no entries).
func (c *Chain) Empty() bool { return len(c.dofs) == 0 }
