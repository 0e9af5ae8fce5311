// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/spatial"
)

// Limits appends one row per joint and tendon whose position currently
// sits within margin of, or past, its declared range (spec §4.4). qpos
// gives the current generalized position for every coordinate the model
// declares (indexed by Joint.QposAdr), and tendonLength gives the current
// scalar length of every tendon (indexed by tendon id).
func (s *Set) Limits(m *model.Model, qpos []float64, tendonLength []float64) {

	for id := range m.Joints {
		j := &m.Joints[id]
		if !j.Limited || j.Type == model.JointFree {
			continue
		}
		margin := m.Opt.EffectiveMargin(j.Margin)
		if j.Type == model.JointBall {
			s.addBallRangeRow(id, j, qpos, margin)
			continue
		}
		pos := qpos[j.QposAdr]
		s.addRangeRow(model.LIMIT_JOINT, id, j.DofAdr, pos, j.Range, margin, j.SolRefLim, j.SolImpLim)
	}

	for id := range m.Tendons {
		t := &m.Tendons[id]
		if !t.Limited {
			continue
		}
		s.addTendonRangeRow(id, t, tendonLength[id], m.Opt.EffectiveMargin(t.Margin))
	}
}

// addRangeRow appends a row only if pos is within margin of range (a limit
// row becomes active before the bound is actually crossed, spec §4.4); the
// row's Jacobian points away from the violated bound so a positive force
// always pushes the dof back into range.
func (s *Set) addRangeRow(typ model.ConstraintType, id, dof int, pos float64, rng [2]float64, margin float64, ref model.SolRef, imp model.SolImp) {

	distLo := pos - rng[0]
	distHi := rng[1] - pos

	if distLo <= margin {
		dofs, vals := s.addSingleDofRow(dof, 1)
		s.Rows = append(s.Rows, Row{
			Type: typ, Obj1ID: id, Obj2ID: -1,
			Pos: distLo, Margin: margin, SolRef: ref, SolImp: imp,
			Dofs: dofs, Jac: vals,
		})
		return
	}
	if distHi <= margin {
		dofs, vals := s.addSingleDofRow(dof, -1)
		s.Rows = append(s.Rows, Row{
			Type: typ, Obj1ID: id, Obj2ID: -1,
			Pos: distHi, Margin: margin, SolRef: ref, SolImp: imp,
			Dofs: dofs, Jac: vals,
		})
	}
}

// addBallRangeRow appends a limit row for a ball joint once its swing angle
// comes within margin of the larger of its two declared range endpoints
// (spec §4.4 ball-joint limit): the quaternion at qpos[j.QposAdr:+4] is
// reduced to an axis and angle, and a violated limit pushes back along the
// negative axis on all three of the joint's dofs at once.
func (s *Set) addBallRangeRow(id int, j *model.Joint, qpos []float64, margin float64) {

	q := spatial.NewQuaternion(qpos[j.QposAdr], qpos[j.QposAdr+1], qpos[j.QposAdr+2], qpos[j.QposAdr+3])
	axis, angle := q.AxisAngle()

	maxRange := j.Range[1]
	if j.Range[0] > maxRange {
		maxRange = j.Range[0]
	}
	d := maxRange - angle
	if d > margin {
		return
	}

	dofs := []int{j.DofAdr, j.DofAdr + 1, j.DofAdr + 2}
	vals := []float64{-axis.X, -axis.Y, -axis.Z}
	dofs, vals = s.newRow(dofs, vals)

	s.Rows = append(s.Rows, Row{
		Type: model.LIMIT_JOINT, Obj1ID: id, Obj2ID: -1,
		Pos: d, Margin: margin, SolRef: j.SolRefLim, SolImp: j.SolImpLim,
		Dofs: dofs, Jac: vals,
	})
}

func (s *Set) addTendonRangeRow(id int, t *model.Tendon, length, margin float64) {

	distLo := length - t.Range[0]
	distHi := t.Range[1] - length

	build := func(sign float64, pos float64) {
		dofs, vals := s.addMomentRow(t.Dofs, t.Moment, sign)
		dofs, vals = sortRowByDof(dofs, vals)
		s.Rows = append(s.Rows, Row{
			Type: model.LIMIT_TENDON, Obj1ID: id, Obj2ID: -1,
			Pos: pos, Margin: margin, SolRef: t.SolRefLim, SolImp: t.SolImpLim,
			Dofs: dofs, Jac: vals,
		})
	}

	if distLo <= margin {
		build(1, distLo)
		return
	}
	if distHi <= margin {
		build(-1, distHi)
	}
}
