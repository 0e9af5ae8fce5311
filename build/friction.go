// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import "github.com/gorigid/constraint/model"

// Frictions appends one row per dof with nonzero friction loss and one row
// per tendon with nonzero friction loss (spec §4.4). Both are dry-friction
// rows whose force is bounded by ±FrictionLoss: Pos is always 0 since friction loss constrains
// velocity, not position, and the force bound comes from the dof or
// tendon's own FrictionLoss coefficient rather than from a contact's mu.
func (s *Set) Frictions(m *model.Model) {

	for d := range m.Dofs {
		dof := &m.Dofs[d]
		if dof.FrictionLoss <= 0 {
			continue
		}
		dofs, vals := s.addSingleDofRow(d, 1)
		s.Rows = append(s.Rows, Row{
			Type: model.FRICTION_DOF, Obj1ID: d, Obj2ID: -1,
			Pos: 0, SolRef: dof.SolRefFriction, SolImp: model.DefaultSolImp,
			Mu: dof.FrictionLoss, Dofs: dofs, Jac: vals,
		})
	}

	for t := range m.Tendons {
		tendon := &m.Tendons[t]
		if tendon.FrictionLoss <= 0 {
			continue
		}
		dofs, vals := s.addMomentRow(tendon.Dofs, tendon.Moment, 1)
		dofs, vals = sortRowByDof(dofs, vals)

		s.Rows = append(s.Rows, Row{
			Type: model.FRICTION_TENDON, Obj1ID: t, Obj2ID: -1,
			Pos: 0, SolRef: tendon.SolRefFriction, SolImp: model.DefaultSolImp,
			Mu: tendon.FrictionLoss, Dofs: dofs, Jac: vals,
		})
	}
}
