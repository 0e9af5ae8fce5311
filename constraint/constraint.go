// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint wires the rest of this module's packages into the
// four operations a caller drives once per step (spec §4): MakeConstraint
// enumerates and instantiates rows, ProjectConstraint builds the projected
// inertia, ReferenceConstraint derives each row's KBIP parameters and
// reference acceleration, and ConstraintUpdate evaluates force/cost for a
// candidate acceleration. Data is the scratch state carried between them;
// Model is never mutated by any of the four (spec §5).
package constraint

import (
	"github.com/gorigid/constraint/build"
	"github.com/gorigid/constraint/inertia"
	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/params"
	"github.com/gorigid/constraint/sparse"
	"github.com/gorigid/constraint/update"
	"github.com/gorigid/constraint/xerr"
	"github.com/gorigid/constraint/xlog"
)

// Data holds one step's constraint state: the active row set, each row's
// derived parameters, and its force/cost outcome. Reused across steps via
// Reset so a long-running simulation does not allocate once its row count
// stabilizes (spec §5).
type Data struct {
	Model *model.Model

	set *build.Set

	// contacts is the slice MakeConstraint was given; kept so
	// ReferenceConstraint can read each contact's Friction/SolRefFriction
	// and write its regularized Mu back for the solver (spec §4.6,
	// Contact's documented contract: the core only mutates Exclude,
	// EfcAddress, Mu and H).
	contacts []model.Contact

	KBIP       []params.KBIP
	R          []float64
	Aref       []float64
	DiagApprox []float64

	ADense  []float64
	ASparse *sparse.Matrix

	Rows []update.Row

	Warnings []*xerr.Warning

	scratch []float64
}

// New creates a Data bound to m, with capacity hints for the expected row
// and dof counts.
func New(m *model.Model, rowCapHint int) *Data {
	return &Data{
		Model:   m,
		set:     build.NewSet(rowCapHint, m.NV),
		scratch: make([]float64, m.NV),
	}
}

// Reset clears all per-step state, keeping backing arrays.
func (d *Data) Reset() {
	d.set.Reset()
	d.KBIP = d.KBIP[:0]
	d.R = d.R[:0]
	d.Aref = d.Aref[:0]
	d.DiagApprox = d.DiagApprox[:0]
	d.Rows = d.Rows[:0]
	d.Warnings = d.Warnings[:0]
	d.ADense = nil
	d.ASparse = nil
	d.contacts = nil
}

// NumRows returns the number of active constraint rows built by the last
// MakeConstraint call.
func (d *Data) NumRows() int { return len(d.set.Rows) }

// Row returns the build.Row for active row i (its type, id, Jacobian and
// raw solref/solimp), for callers that need to inspect what was built.
func (d *Data) Row(i int) build.Row { return d.set.Rows[i] }

// MakeConstraint enumerates and instantiates every active equality,
// friction, limit and contact row (spec §4.1-§4.5). It precounts first so
// the row slice never needs to grow mid-build, then asserts the
// instantiated NNZ matches the precount's upper bound — not a per-type row
// count, since an instantiator may legitimately produce fewer rows than a
// purely structural scan predicts (see DESIGN.md).
func (d *Data) MakeConstraint(qpos, tendonLength []float64, contacts []model.Contact) error {

	d.Reset()
	count := build.Precount(d.Model, qpos, tendonLength, contacts)
	d.contacts = contacts

	disable := d.Model.Opt.Disable
	if !disable.Has(model.DisableConstraint) {
		if !disable.Has(model.DisableEquality) {
			d.set.Equalities(d.Model, qpos, tendonLength)
		}
		if !disable.Has(model.DisableFrictionLoss) {
			d.set.Frictions(d.Model)
		}
		if !disable.Has(model.DisableLimit) {
			d.set.Limits(d.Model, qpos, tendonLength)
		}
		if !disable.Has(model.DisableContact) {
			d.set.Contacts(d.Model, contacts)
		}
	}

	nnz := 0
	for _, r := range d.set.Rows {
		nnz += len(r.Jac)
	}
	if nnz > count.NNZ {
		return xerr.NewFatal(xerr.CountMismatch, "instantiated nnz %d exceeds precount bound %d", nnz, count.NNZ)
	}

	for _, w := range d.set.Warnings {
		xlog.WarnErr(w)
	}
	return nil
}

// ProjectConstraint builds the projected constraint inertia A_R over the
// rows MakeConstraint produced, choosing dense or sparse storage per
// model.Option.Jacobian (spec §4.7, §4.8). R must already be populated —
// callers run ReferenceConstraint first, or supply a flat R of zeros to
// get the unregularized J*M^-1*J^T.
func (d *Data) ProjectConstraint() {

	rows := make([]inertia.RowRef, len(d.set.Rows))
	for i, r := range d.set.Rows {
		ref := inertia.RowRef{Dofs: r.Dofs, Vals: r.Jac}
		if i < len(d.R) {
			ref.R = d.R[i]
		}
		rows[i] = ref
	}

	dense := d.useDense()
	if dense {
		d.ADense = inertia.Dense(d.Model, rows, d.scratch)
		d.ASparse = nil
	} else {
		d.ASparse = inertia.Sparse(d.Model, rows, d.scratch, 1e-12)
		d.ADense = nil
	}
}

func (d *Data) useDense() bool {
	switch d.Model.Opt.Jacobian {
	case model.JacobianDense:
		return true
	case model.JacobianSparse:
		return false
	default:
		return d.Model.NV < model.SparseAutoThreshold
	}
}

// ReferenceConstraint sanitizes each row's solref/solimp, derives its KBIP
// parameters at the row's current position, and computes its reference
// acceleration and regularization R (spec §4.6, §4.9). Each row's
// diagApprox (the diagonal inverse-inertia upper bound R is seeded from) is
// computed internally from the Model elements the row was instantiated
// from, rather than supplied by the caller. vel gives each row's current
// Jacobian-projected velocity J*qvel, used by Reference's damping term.
func (d *Data) ReferenceConstraint(vel []float64) {

	n := len(d.set.Rows)
	if cap(d.KBIP) >= n {
		d.KBIP = d.KBIP[:n]
	} else {
		d.KBIP = make([]params.KBIP, n)
	}
	d.R = resize(d.R, n)
	d.Aref = resize(d.Aref, n)
	d.DiagApprox = resize(d.DiagApprox, n)
	copy(d.DiagApprox, d.diagApprox())

	refSafe := !d.Model.Opt.Disable.Has(model.DisableRefSafe)

	for i := range d.set.Rows {
		row := &d.set.Rows[i]

		friction := row.Type == model.FRICTION_DOF || row.Type == model.FRICTION_TENDON
		zeroK := friction || (row.Type == model.CONTACT_ELLIPTIC && tangentialRow(d.set.Rows, i))

		var ref model.SolRef
		var warn *xerr.Warning
		if friction {
			ref, warn = params.SanitizeFriction(d.Model.Opt.EffectiveSolRef(row.SolRef))
		} else {
			ref, warn = params.Sanitize(d.Model.Opt.EffectiveSolRef(row.SolRef), d.Model.Opt.Timestep, refSafe)
		}
		if warn != nil {
			d.Warnings = append(d.Warnings, warn)
			xlog.WarnErr(warn)
		}

		imp, warn := params.SanitizeImp(d.Model.Opt.EffectiveSolImp(row.SolImp))
		if warn != nil {
			d.Warnings = append(d.Warnings, warn)
			xlog.WarnErr(warn)
		}

		kb := params.Build(ref, imp, row.Pos, d.Model.Opt.Timestep, zeroK)
		d.KBIP[i] = kb
		d.R[i] = params.R(kb, d.DiagApprox[i])

		v := 0.0
		if i < len(vel) {
			v = vel[i]
		}
		d.Aref[i] = update.Reference(kb, row.Pos, v)
	}

	d.coupleConeFriction()
}

// tangentialRow reports whether rows[i] is a non-normal row of the elliptic
// contact block it belongs to (i.e. not the first row of its contiguous
// Obj1ID run).
func tangentialRow(rows []build.Row, i int) bool {
	return i > 0 && rows[i-1].Type == model.CONTACT_ELLIPTIC && rows[i-1].Obj1ID == rows[i].Obj1ID
}

// coupleConeFriction regularizes every contact block's friction rows
// against the block's own baseline R, following the model's impratio
// (spec §4.6, friction-cone coupling): R[i+1] softens by impratio, the
// regularized mu this produces is written back onto the originating
// model.Contact for the solver, and each further row's R is derived from
// R[i+1] according to the contact's cone type.
func (d *Data) coupleConeFriction() {
	n := len(d.set.Rows)
	impratio := d.Model.Opt.Impratio

	i := 0
	for i < n {
		row := &d.set.Rows[i]
		if row.Type != model.CONTACT_ELLIPTIC && row.Type != model.CONTACT_PYRAMIDAL {
			i++
			continue
		}
		j := i
		for j < n && d.set.Rows[j].Type == row.Type && d.set.Rows[j].Obj1ID == row.Obj1ID {
			j++
		}
		if j-i < 2 {
			i = j
			continue
		}

		normalR := d.R[i]
		mu0 := d.set.Rows[i+1].Mu
		r1 := params.FrictionConeCoupling(normalR, impratio)
		mu := params.RegularizedMu(mu0, r1, normalR)

		if row.Type == model.CONTACT_PYRAMIDAL {
			rpy := params.PyramidalConeR(mu, normalR)
			for k := i; k < j; k++ {
				d.R[k] = rpy
			}
		} else {
			d.R[i+1] = r1
			for k := i + 2; k < j; k++ {
				d.R[k] = params.FrictionConeAxis(r1, mu0, d.set.Rows[k].Mu)
			}
		}

		if ci := row.Obj1ID; ci >= 0 && ci < len(d.contacts) {
			d.contacts[ci].Mu = mu
		}

		for k := i; k < j; k++ {
			d.DiagApprox[k] = params.DiagApproxFromR(d.R[k], d.KBIP[k])
		}

		i = j
	}
}

// diagApprox computes each active row's diagonal inverse-inertia upper
// bound from the Model element it was instantiated from (spec §4.6
// diagApprox): an equality's two objects' inverse weights, a limit or
// friction row's own dof/tendon inverse weight, and a contact's
// translational/rotational inverse-weight sums split across its block
// according to the contact's cone type.
func (d *Data) diagApprox() []float64 {
	m := d.Model
	n := len(d.set.Rows)
	out := make([]float64, n)

	i := 0
	for i < n {
		row := &d.set.Rows[i]
		switch row.Type {
		case model.EQUALITY:
			j := i
			for j < n && d.set.Rows[j].Type == model.EQUALITY && d.set.Rows[j].Obj1ID == row.Obj1ID {
				j++
			}
			eq := &m.Equalities[row.Obj1ID]
			for k := i; k < j; k++ {
				out[k] = equalityDiagApprox(m, eq, k-i)
			}
			i = j

		case model.FRICTION_DOF, model.LIMIT_JOINT:
			out[i] = m.Dofs[firstDof(d.set.Rows[i])].InvWeight
			i++

		case model.FRICTION_TENDON, model.LIMIT_TENDON:
			out[i] = m.Tendons[row.Obj1ID].InvWeight
			i++

		case model.CONTACT_FRICTIONLESS:
			c := &d.contacts[row.Obj1ID]
			out[i] = bodyInvWeight(m, m.Bodies[c.Body1], false) + contactBody2InvWeight(m, c, false)
			i++

		case model.CONTACT_ELLIPTIC:
			j := i
			for j < n && d.set.Rows[j].Type == model.CONTACT_ELLIPTIC && d.set.Rows[j].Obj1ID == row.Obj1ID {
				j++
			}
			c := &d.contacts[row.Obj1ID]
			tran := bodyInvWeight(m, m.Bodies[c.Body1], false) + contactBody2InvWeight(m, c, false)
			rot := bodyInvWeight(m, m.Bodies[c.Body1], true) + contactBody2InvWeight(m, c, true)
			for k := i; k < j; k++ {
				out[k] = params.DiagApproxContactElliptic(k-i, tran, rot)
			}
			i = j

		case model.CONTACT_PYRAMIDAL:
			j := i
			for j < n && d.set.Rows[j].Type == model.CONTACT_PYRAMIDAL && d.set.Rows[j].Obj1ID == row.Obj1ID {
				j++
			}
			c := &d.contacts[row.Obj1ID]
			tran := bodyInvWeight(m, m.Bodies[c.Body1], false) + contactBody2InvWeight(m, c, false)
			rot := bodyInvWeight(m, m.Bodies[c.Body1], true) + contactBody2InvWeight(m, c, true)
			for k := i; k < j; k++ {
				pair := (k - i) / 2
				out[k] = params.DiagApproxContactPyramidal(pair, d.set.Rows[k].Mu, tran, rot)
			}
			i = j

		default:
			i++
		}
	}
	return out
}

// firstDof returns a friction/limit row's own dof: the first (and only)
// column of its Jacobian.
func firstDof(row build.Row) int {
	if len(row.Dofs) == 0 {
		return 0
	}
	return row.Dofs[0]
}

// bodyInvWeight sums m.Dofs[..].InvWeight over body b's first three
// (translational) or last three (rotational) dofs, whichever b actually
// has.
func bodyInvWeight(m *model.Model, b model.Body, rotational bool) float64 {
	lo, hi := 0, 3
	if rotational {
		lo, hi = 3, 6
	}
	var sum float64
	for k := lo; k < hi && k < b.DofNum; k++ {
		sum += m.Dofs[b.DofAdr+k].InvWeight
	}
	return sum
}

// contactBody2InvWeight is bodyInvWeight for a contact's second body,
// guarding the world-fixed case (Body2 < 0).
func contactBody2InvWeight(m *model.Model, c *model.Contact, rotational bool) float64 {
	if c.Body2 < 0 {
		return 0
	}
	return bodyInvWeight(m, m.Bodies[c.Body2], rotational)
}

// equalityDiagApprox returns one row's diagApprox within an equality block:
// Connect and the first three Weld rows use the two objects' translational
// inverse weight, Weld's last three rows the rotational (spec §4.6
// diagApprox, "Equality" case); Joint/Tendon couplings sum the one or two
// joints'/tendons' own inverse weights.
func equalityDiagApprox(m *model.Model, eq *model.Equality, rowInBlock int) float64 {
	switch eq.Type {
	case model.EqConnect:
		return bodyInvWeight(m, m.Bodies[eq.Obj1ID], false) + obj2BodyInvWeight(m, eq, false)
	case model.EqWeld:
		rotational := rowInBlock >= 3
		return bodyInvWeight(m, m.Bodies[eq.Obj1ID], rotational) + obj2BodyInvWeight(m, eq, rotational)
	case model.EqJoint:
		sum := m.Dofs[m.Joints[eq.Obj1ID].DofAdr].InvWeight
		if eq.Obj2ID >= 0 {
			sum += m.Dofs[m.Joints[eq.Obj2ID].DofAdr].InvWeight
		}
		return sum
	case model.EqTendon:
		sum := m.Tendons[eq.Obj1ID].InvWeight
		if eq.Obj2ID >= 0 {
			sum += m.Tendons[eq.Obj2ID].InvWeight
		}
		return sum
	default:
		return 0
	}
}

// obj2BodyInvWeight is bodyInvWeight for a Connect/Weld equality's second
// body, guarding the single-body case (Obj2ID < 0).
func obj2BodyInvWeight(m *model.Model, eq *model.Equality, rotational bool) float64 {
	if eq.Obj2ID < 0 {
		return 0
	}
	return bodyInvWeight(m, m.Bodies[eq.Obj2ID], rotational)
}

// ConstraintUpdate evaluates every row's force and cost for the candidate
// acceleration's Jacobian projection jar = J*qacc (spec §4.9). Elliptic
// contact rows are expected to be contiguous and are evaluated jointly via
// update.EvaluateCone; every other row is evaluated independently.
func (d *Data) ConstraintUpdate(jar []float64) {

	n := len(d.set.Rows)
	d.Rows = resizeRows(d.Rows, n)

	i := 0
	for i < n {
		row := &d.set.Rows[i]
		if row.Type == model.CONTACT_ELLIPTIC {
			j := i
			for j < n && d.set.Rows[j].Type == model.CONTACT_ELLIPTIC && d.set.Rows[j].Obj1ID == row.Obj1ID {
				j++
			}
			mu := make([]float64, j-i)
			for k := i; k < j; k++ {
				mu[k-i] = d.set.Rows[k].Mu
			}
			g := update.ConeGroup{
				Jar:  jar[i:j],
				Aref: d.Aref[i:j],
				R:    d.R[i:j],
				Mu:   mu,
			}
			rows, h := update.EvaluateCone(g)
			copy(d.Rows[i:j], rows)
			if ci := row.Obj1ID; rows[0].State == update.Cone && ci >= 0 && ci < len(d.contacts) {
				dim := j - i
				for k := 0; k < dim; k++ {
					copy(d.contacts[ci].H[k*6:k*6+dim], h[k*dim:(k+1)*dim])
				}
			}
			i = j
			continue
		}
		d.Rows[i] = update.Evaluate(row.Type, jar[i], d.Aref[i], d.R[i], row.Mu)
		i++
	}
}

func resize(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}

func resizeRows(s []update.Row, n int) []update.Row {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]update.Row, n)
}
