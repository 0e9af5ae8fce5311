// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arena provides fixed-capacity bump allocators for the per-step
// scratch buffers the constraint core fills while it is not yet known how
// many rows will end up active: row state, Jacobian rows, and per-row
// scalar parameters are all reserved up front at an upper bound and handed
// out in order as rows are appended, so a step never allocates once its
// precount is known (spec §4.1).
package arena

// Float is a bump allocator over a single pre-sized []float64 backing
// array. Reset rewinds it to empty without releasing the backing array, so
// repeated steps against the same Data reuse one allocation.
type Float struct {
	buf  []float64
	used int
}

// NewFloat creates a Float arena with capacity cap.
func NewFloat(cap int) *Float {
	return &Float{buf: make([]float64, cap)}
}

// Reserve grows the arena's capacity if cap exceeds the current backing
// size, preserving already-used entries. Used when a precount grows across
// steps (e.g. more contacts than last step).
func (a *Float) Reserve(cap int) {
	if cap <= len(a.buf) {
		return
	}
	next := make([]float64, cap)
	copy(next, a.buf[:a.used])
	a.buf = next
}

// Reset rewinds the arena to empty.
func (a *Float) Reset() {
	a.used = 0
}

// Len returns the number of float64 values appended since the last Reset.
func (a *Float) Len() int { return a.used }

// Cap returns the backing array's capacity.
func (a *Float) Cap() int { return len(a.buf) }

// Append appends n zeroed float64 values and returns the slice view over
// them, backed by the arena (valid until the next Reset or Reserve).
func (a *Float) Append(n int) []float64 {
	if a.used+n > len(a.buf) {
		a.Reserve(a.used + n)
	}
	s := a.buf[a.used : a.used+n]
	for i := range s {
		s[i] = 0
	}
	a.used += n
	return s
}

// Slice returns the full used prefix of the backing array.
func (a *Float) Slice() []float64 { return a.buf[:a.used] }

// Int is the integer-valued counterpart of Float, used for row metadata
// such as efc_type, efc_id and efc_address.
type Int struct {
	buf  []int
	used int
}

// NewInt creates an Int arena with capacity cap.
func NewInt(cap int) *Int {
	return &Int{buf: make([]int, cap)}
}

// Reserve grows the arena's capacity if cap exceeds the current backing
// size, preserving already-used entries.
func (a *Int) Reserve(cap int) {
	if cap <= len(a.buf) {
		return
	}
	next := make([]int, cap)
	copy(next, a.buf[:a.used])
	a.buf = next
}

// Reset rewinds the arena to empty.
func (a *Int) Reset() {
	a.used = 0
}

// Len returns the number of int values appended since the last Reset.
func (a *Int) Len() int { return a.used }

// Cap returns the backing array's capacity.
func (a *Int) Cap() int { return len(a.buf) }

// Append appends n zeroed int values and returns the slice view over them.
func (a *Int) Append(n int) []int {
	if a.used+n > len(a.buf) {
		a.Reserve(a.used + n)
	}
	s := a.buf[a.used : a.used+n]
	for i := range s {
		s[i] = 0
	}
	a.used += n
	return s
}

// Slice returns the full used prefix of the backing array.
func (a *Int) Slice() []int { return a.buf[:a.used] }

// PushInt appends a single value and returns its index.
func (a *Int) PushInt(v int) int {
	idx := a.used
	s := a.Append(1)
	s[0] = v
	return idx
}
