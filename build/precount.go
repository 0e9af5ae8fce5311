// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/spatial"
)

// Count summarizes how many rows Precount expects each instantiator to
// produce, and the upper bound on total nonzero Jacobian entries across
// all of them (spec §4.5). Actual instantiation may add fewer rows than
// Equality/Friction/Limit/Contact predict — Precount ignores the per-category
// disable bits, counts a Dim 4 or 6 contact at 2*(Dim-1) or Dim rows, and
// counts a contact whose bodies have no dofs — but it never adds more
// rows. The core asserts the two runs agree on NNZ, not on a
// row-by-row count, since an instantiator may merge or split rows
// differently than a purely structural count would predict (see
// DESIGN.md, "precount open question").
type Count struct {
	Equality int
	Friction int
	Limit    int
	Contact  int
	NNZ      int
}

// Total returns the sum of all row counts.
func (c Count) Total() int { return c.Equality + c.Friction + c.Limit + c.Contact }

// Precount computes Count without building any row's Jacobian, so the
// caller can size its arenas before calling Equalities/Frictions/Limits/
// Contacts (spec §4.1, §4.5).
func Precount(m *model.Model, qpos []float64, tendonLength []float64, cs []model.Contact) Count {

	var c Count

	for i := range m.Equalities {
		eq := &m.Equalities[i]
		if !eq.Active {
			continue
		}
		switch eq.Type {
		case model.EqConnect:
			c.Equality += 3
			c.NNZ += 3 * 12 // up to 2 bodies x 6 dofs per row
		case model.EqWeld:
			c.Equality += 6
			c.NNZ += 6 * 12
		case model.EqJoint:
			c.Equality++
			c.NNZ += 2
		case model.EqTendon:
			t1 := m.Tendons[eq.Obj1ID]
			n := len(t1.Dofs)
			if eq.Obj2ID >= 0 {
				n += len(m.Tendons[eq.Obj2ID].Dofs)
			}
			c.Equality++
			c.NNZ += n
		}
	}

	for d := range m.Dofs {
		if m.Dofs[d].FrictionLoss > 0 {
			c.Friction++
			c.NNZ++
		}
	}
	for t := range m.Tendons {
		tendon := &m.Tendons[t]
		if tendon.FrictionLoss > 0 {
			c.Friction++
			c.NNZ += len(tendon.Dofs)
		}
	}

	for i := range m.Joints {
		j := &m.Joints[i]
		if !j.Limited || j.Type == model.JointFree {
			continue
		}
		margin := m.Opt.EffectiveMargin(j.Margin)
		if j.Type == model.JointBall {
			q := spatial.NewQuaternion(qpos[j.QposAdr], qpos[j.QposAdr+1], qpos[j.QposAdr+2], qpos[j.QposAdr+3])
			_, angle := q.AxisAngle()
			maxRange := j.Range[1]
			if j.Range[0] > maxRange {
				maxRange = j.Range[0]
			}
			if maxRange-angle <= margin {
				c.Limit++
				c.NNZ += 3
			}
			continue
		}
		pos := qpos[j.QposAdr]
		if pos-j.Range[0] <= margin || j.Range[1]-pos <= margin {
			c.Limit++
			c.NNZ++
		}
	}
	for i := range m.Tendons {
		t := &m.Tendons[i]
		if !t.Limited {
			continue
		}
		length := tendonLength[i]
		margin := m.Opt.EffectiveMargin(t.Margin)
		if length-t.Range[0] <= margin || t.Range[1]-length <= margin {
			c.Limit++
			c.NNZ += len(t.Dofs)
		}
	}

	for i := range cs {
		contact := &cs[i]
		if contact.Exclude != 0 {
			continue
		}
		switch {
		case contact.Dim <= 1:
			c.Contact++
			c.NNZ += 12
		case m.Opt.Cone == model.ConePyramidal:
			rows := 2 * (contact.Dim - 1)
			if rows < 2 {
				rows = 2
			}
			c.Contact += rows
			c.NNZ += rows * 12
		default:
			c.Contact += contact.Dim
			c.NNZ += contact.Dim * 12
		}
	}

	return c
}
