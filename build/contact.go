// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import "github.com/gorigid/constraint/model"

// Contacts appends rows for every non-excluded contact in cs, skipping a
// contact once it is marked Exclude != 0 by the collision subsystem (spec
// §3, §4.4). A contact whose two bodies have no dofs between them is marked
// Exclude = 3 and skipped; every contact's EfcAddress is set to the index of
// its first row, or -1 when it gets none. A frictionless contact (Dim == 1)
// gets a single normal row; a pyramidal contact gets two unilateral rows,
// one per pyramid face, for each of the frame's two tangent directions it
// has a friction coefficient for; an elliptic contact gets one normal row
// plus one row per such tangent direction, whose cone curvature is resolved
// later by the update stage's per-row cost/Hessian evaluation, not here.
// Only the two tangent directions are instantiated: for Dim 4 or 6 the
// torsional and rolling directions get no rows, so a pyramidal contact has
// at most 4 rows and an elliptic one at most 3.
func (s *Set) Contacts(m *model.Model, cs []model.Contact) {

	for id := range cs {
		c := &cs[id]
		c.EfcAddress = -1
		if c.Exclude != 0 {
			continue
		}

		bodyA := m.Bodies[c.Body1]
		var bodyB model.Body
		if c.Body2 >= 0 {
			bodyB = m.Bodies[c.Body2]
		}
		s.chainBuf.BuildPair(m.Dofs, bodyA, bodyB)
		if s.chainBuf.Empty() {
			c.Exclude = 3
			continue
		}
		c.EfcAddress = len(s.Rows)
		frame := c.Frame.Array()
		normal := [3]float64{frame[0], frame[1], frame[2]}
		dirs := [2][3]float64{{frame[3], frame[4], frame[5]}, {frame[6], frame[7], frame[8]}}

		switch {
		case c.Dim <= 1:
			s.addContactRow(m, id, bodyA, bodyB, c, normal, 1, 0, model.CONTACT_FRICTIONLESS, false)

		case m.Opt.Cone == model.ConePyramidal:
			for i := 0; i+1 < c.Dim && i < len(dirs); i++ {
				mu := c.Friction[i]
				for _, sign := range [2]float64{1, -1} {
					dir := combine(normal, dirs[i], mu, sign)
					s.addContactRow(m, id, bodyA, bodyB, c, dir, 1, mu, model.CONTACT_PYRAMIDAL, false)
				}
			}

		default: // elliptic
			s.addContactRow(m, id, bodyA, bodyB, c, normal, 1, 0, model.CONTACT_ELLIPTIC, false)
			for i := 0; i+1 < c.Dim && i < len(dirs); i++ {
				s.addContactRow(m, id, bodyA, bodyB, c, dirs[i], 1, c.Friction[i], model.CONTACT_ELLIPTIC, true)
			}
		}
	}
}

// combine returns normal + sign*mu*tangent, the pyramid-face direction for
// one of a pyramidal contact's unilateral rows.
func combine(normal, tangent [3]float64, mu, sign float64) [3]float64 {
	return [3]float64{
		normal[0] + sign*mu*tangent[0],
		normal[1] + sign*mu*tangent[1],
		normal[2] + sign*mu*tangent[2],
	}
}

// addContactRow instantiates one contact row along direction dir, using the
// contact point minus each body's origin as that body's lever arm (spec
// §4.4, contact Jacobian). tangential marks an elliptic cone's non-normal
// rows: their Pos and Margin are zeroed since only the block's normal row
// carries the penetration distance and include-margin (spec §4.4 elliptic
// contact row construction), and — when the contact declares a distinct
// friction solref — they use SolRefFriction instead of the contact's
// primary SolRef (spec §4.6; baked in here rather than carried as a
// separate field so ReferenceConstraint's row.SolRef dispatch stays
// uniform across every row type).
func (s *Set) addContactRow(m *model.Model, contactID int, bodyA, bodyB model.Body, c *model.Contact, dir [3]float64, scale, mu float64, typ model.ConstraintType, tangential bool) {

	haveB := c.Body2 >= 0
	rA := [3]float64{c.Pos[0] - bodyA.Pos[0], c.Pos[1] - bodyA.Pos[1], c.Pos[2] - bodyA.Pos[2]}
	var rB [3]float64
	if haveB {
		rB = [3]float64{c.Pos[0] - bodyB.Pos[0], c.Pos[1] - bodyB.Pos[1], c.Pos[2] - bodyB.Pos[2]}
	}
	dofs, vals := s.directionJacobian(m, bodyA, haveB, bodyB, rA, rB, dir, scale, -scale)

	pos, margin := c.Dist, c.IncludeMargin
	ref := c.SolRef
	if tangential {
		pos, margin = 0, 0
		if c.SolRefFriction[0] != 0 || c.SolRefFriction[1] != 0 {
			ref = c.SolRefFriction
		}
	}

	s.Rows = append(s.Rows, Row{
		Type: typ, Obj1ID: contactID, Obj2ID: c.Body2,
		Pos: pos, Margin: margin,
		SolRef: ref, SolImp: c.SolImp, Mu: mu,
		Dofs: dofs, Jac: vals,
	})
}
