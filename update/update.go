// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package update evaluates, for a candidate acceleration, each row's
// reference acceleration, activation state, force and quadratic cost
// contribution, plus the cone Hessian an elliptic-friction contact group
// needs (spec §4.9). It generalizes the reference engine's
// Equation.ComputeB (the SPOOK equation's right-hand side, built from
// Gq/GW/GiMf) from a fixed free-body pair to an arbitrary row's (K, B, I)
// triple produced by package params.
package update

import (
	"math"

	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/params"
)

// State classifies a row's activation for the current candidate
// acceleration.
type State int

const (
	Inactive  State = iota // unilateral row currently satisfied with margin, or cone top zone: contributes no force
	Active                // row contributes force; quadratic cost regime (bilateral, violated unilateral, or cone bottom zone)
	Cone                  // elliptic-cone row in the middle (genuinely conic) zone: force/cost computed jointly with its siblings
	LinearNeg             // dof/tendon friction row saturated at -frictionloss
	LinearPos             // dof/tendon friction row saturated at +frictionloss
)

// Reference computes a row's reference acceleration aref = -B*vel -
// K*I*pos, the acceleration the row's force should drive the constrained
// quantity toward (spec §4.6, §4.9; generalizes ComputeB's -Gq*a - GW*b
// term to a position/velocity pair already reduced to a scalar row value).
func Reference(kb params.KBIP, pos, vel float64) float64 {
	return -kb.B*vel - kb.K*kb.I*pos
}

// Row is the per-row outcome of one update pass.
type Row struct {
	State State
	Force float64
	Cost  float64
}

// Evaluate computes one row's force and cost given the row's current
// Jacobian-projected acceleration jar = J*qacc, its reference acceleration
// aref, its regularization R, and — for a dof or tendon friction row — the
// element's frictionloss bound (spec §4.9; ignored for every other type).
//
// Equality rows are bilateral and always quadratic:
//
//	force = -(jar - aref) / R
//	cost  = 0.5 * R * force^2
//
// Limit and frictionless/pyramidal contact rows are unilateral: Inactive
// (force held at 0) whenever jar >= aref, i.e. the constrained quantity is
// already separating fast enough on its own.
//
// Dof and tendon friction rows are bounded by f = frictionloss rather than
// unilateral: letting residual = jar - aref, the row saturates to a
// constant force of magnitude f once residual passes R*f in either
// direction, and is quadratic in between (spec §4.9 friction classification).
func Evaluate(typ model.ConstraintType, jar, aref, r, frictionloss float64) Row {

	residual := jar - aref

	if typ == model.FRICTION_DOF || typ == model.FRICTION_TENDON {
		f := frictionloss
		switch {
		case residual <= -r*f:
			return Row{State: LinearNeg, Force: f, Cost: -0.5*r*f*f - f*residual}
		case residual >= r*f:
			return Row{State: LinearPos, Force: -f, Cost: -0.5*r*f*f + f*residual}
		default:
			force := -residual / r
			return Row{State: Active, Force: force, Cost: 0.5 * r * force * force}
		}
	}

	if unilateral(typ) && residual >= 0 {
		return Row{State: Inactive}
	}
	force := -residual / r
	cost := 0.5 * r * force * force
	return Row{State: Active, Force: force, Cost: cost}
}

func unilateral(typ model.ConstraintType) bool {
	switch typ {
	case model.LIMIT_JOINT, model.LIMIT_TENDON, model.CONTACT_FRICTIONLESS, model.CONTACT_PYRAMIDAL:
		return true
	default:
		return false
	}
}

// ConeGroup is one elliptic-friction contact's rows: index 0 is the
// normal, 1..n-1 the tangential/torsional directions sharing that normal's
// cone. Mu holds each row's own friction coefficient, the contact Friction
// entry the row was built from; Mu[0] is unused — the normal row has no
// friction coefficient of its own.
type ConeGroup struct {
	Jar  []float64 // Jacobian-projected acceleration, one per row
	Aref []float64
	R    []float64
	Mu   []float64
}

// EvaluateCone jointly evaluates an elliptic-friction contact's rows,
// implementing the exact second-order-cone classification (spec §4.9,
// elliptic contact): scale each row's residual by its friction coefficient
// into U, split N = U[0] (scaled normal) from T = |U[1:]| (scaled
// tangential magnitude), and classify the whole block into one of three
// zones relative to the cone boundary N = mu*T, mu being the representative
// coefficient carried by the first tangential row (g.Mu[1]):
//
//   - Top (N >= mu*T, or T == 0 with N >= 0): the contact is inside the
//     friction cone already — every row is Inactive.
//   - Bottom (mu*N + T <= 0, or T == 0 with N < 0): the contact has left the
//     cone entirely on the far side — every row reduces to its own
//     independent quadratic cost, same as a bilateral row.
//   - Middle: genuinely conic — a single scalar cost term couples every row
//     through D_m = D_0/(mu^2*(1+mu^2)) and the projection distance
//     deltaNT = N - mu*T, with a correspondingly coupled Hessian.
func EvaluateCone(g ConeGroup) (rows []Row, hessian []float64) {

	n := len(g.Jar)
	rows = make([]Row, n)
	hessian = make([]float64, n*n)

	residual := make([]float64, n)
	for i := range g.Jar {
		residual[i] = g.Jar[i] - g.Aref[i]
	}

	mu := 0.0
	if n > 1 {
		mu = g.Mu[1]
	}

	if mu <= 0 {
		// No friction on this block: every row stands on its own, same as
		// the bottom zone's per-row quadratic.
		quadratic(rows, hessian, residual, g.R)
		return rows, hessian
	}

	u := make([]float64, n)
	u[0] = residual[0] * mu
	var tSq float64
	for k := 1; k < n; k++ {
		u[k] = residual[k] * g.Mu[k]
		tSq += u[k] * u[k]
	}
	normal := u[0]
	tang := math.Sqrt(tSq)

	switch {
	case tang == 0 && normal >= 0, tang > 0 && normal >= mu*tang:
		for i := range rows {
			rows[i] = Row{State: Inactive}
		}
		return rows, hessian

	case tang == 0 && normal < 0, tang > 0 && mu*normal+tang <= 0:
		quadratic(rows, hessian, residual, g.R)
		return rows, hessian
	}

	dm := (1 / g.R[0]) / (mu * mu * (1 + mu*mu))
	deltaNT := normal - mu*tang
	cost := 0.5 * dm * deltaNT * deltaNT

	f0 := -dm * deltaNT * mu
	rows[0] = Row{State: Cone, Force: f0, Cost: cost}
	for k := 1; k < n; k++ {
		fk := -f0 / tang * u[k] * g.Mu[k]
		rows[k] = Row{State: Cone, Force: fk, Cost: cost}
	}

	// Raw (unscaled) Hessian: row 0 is [1, -mu/T*U[1:]]; the (k,j>=1) block
	// is (mu*N/T^3)*U[j]*U[k] plus a (mu^2 - mu*N/T) diagonal (spec §4.9).
	raw := make([]float64, n*n)
	raw[0] = 1
	for k := 1; k < n; k++ {
		v := -mu / tang * u[k]
		raw[k] = v   // row 0, column k
		raw[k*n] = v // row k, column 0 (symmetric by construction)
	}
	for k := 1; k < n; k++ {
		for j := 1; j < n; j++ {
			v := (mu * normal / (tang * tang * tang)) * u[j] * u[k]
			if k == j {
				v += mu*mu - mu*normal/tang
			}
			raw[k*n+j] = v
		}
	}

	// Rescale by diag(mu, Mu[1:]), multiply by D_m, symmetrize.
	scale := make([]float64, n)
	scale[0] = mu
	for k := 1; k < n; k++ {
		scale[k] = g.Mu[k]
	}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			hessian[k*n+j] = dm * scale[k] * scale[j] * raw[k*n+j]
		}
	}
	for k := 0; k < n; k++ {
		for j := k + 1; j < n; j++ {
			avg := 0.5 * (hessian[k*n+j] + hessian[j*n+k])
			hessian[k*n+j] = avg
			hessian[j*n+k] = avg
		}
	}
	return rows, hessian
}

// quadratic fills rows and hessian with each row's independent quadratic
// force/cost (spec §4.9 cone bottom zone and the frictionless degenerate
// case), the same formula a bilateral row uses.
func quadratic(rows []Row, hessian []float64, residual, r []float64) {
	n := len(rows)
	for i := 0; i < n; i++ {
		d := 1 / r[i]
		force := -d * residual[i]
		rows[i] = Row{State: Active, Force: force, Cost: 0.5 * d * residual[i] * residual[i]}
		hessian[i*n+i] = d
	}
}
