// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package params turns a constraint element's (solref, solimp) pair into
// the per-row regularization and reference-acceleration numbers the update
// stage consumes each step: K and B (the reference-acceleration gains) and
// R and D (the regularization and impedance-scaled diagonal softness).
// The derivation generalizes the reference engine's SPOOK parameterization
// (Equation.SetSpookParams: a = 4/(h*(1+4*relaxation)), b = 4*relaxation/
// (1+4*relaxation), eps = 4/(h^2*stiffness*(1+4*relaxation))) from a single
// fixed (stiffness, relaxation) pair to a per-row (solref, solimp) pair that
// can additionally vary smoothly with constraint violation through the
// solimp impedance profile (spec §4.6).
package params

import (
	"math"

	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/xerr"
)

// Sanitize validates ref against the model's safety rules and returns a
// corrected copy plus a non-nil *xerr.Warning when a substitution was made
// (spec §4.6, §7). In "standard" mode (ref[0] > 0) ref[0] is a time
// constant and must be at least 2*timestep when refSafe is set; ref[1] is a
// damping ratio and must be positive. In "direct" mode (ref[0] <= 0) ref[0]
// and ref[1] are raw negative stiffness/damping and must both be negative.
func Sanitize(ref model.SolRef, timestep float64, refSafe bool) (model.SolRef, *xerr.Warning) {

	if ref[0] <= 0 {
		if ref[0] < 0 && ref[1] < 0 {
			return ref, nil
		}
		return model.DefaultSolRef, xerr.NewWarning(xerr.BadSolRef, "direct-mode solref needs both entries negative, got %v", ref)
	}

	out := ref
	var warned bool
	if refSafe && out[0] < 2*timestep {
		out[0] = 2 * timestep
		warned = true
	}
	if out[1] <= 0 {
		out[1] = model.DefaultSolRef[1]
		warned = true
	}
	if warned {
		return out, xerr.NewWarning(xerr.BadSolRef, "solref %v clamped to %v", ref, out)
	}
	return out, nil
}

// SanitizeFriction validates a friction-loss solref the same way as
// Sanitize but never applies the refSafe minimum-timeconst rule (friction
// rows are not subject to REFSAFE, spec §4.6).
func SanitizeFriction(ref model.SolRef) (model.SolRef, *xerr.Warning) {
	if ref[0] <= 0 {
		if ref[0] < 0 && ref[1] < 0 {
			return ref, nil
		}
		return model.DefaultSolRef, xerr.NewWarning(xerr.BadSolRefFriction, "direct-mode friction solref needs both entries negative, got %v", ref)
	}
	if ref[1] <= 0 {
		out := ref
		out[1] = model.DefaultSolRef[1]
		return out, xerr.NewWarning(xerr.BadSolRefFriction, "friction solref %v clamped to %v", ref, out)
	}
	return ref, nil
}

// SanitizeImp validates imp's five entries: dmin, dmax in [MinImp, MaxImp]
// with dmin <= dmax, width >= 0, midpoint in [0,1], power >= 1 (spec §4.6).
func SanitizeImp(imp model.SolImp) (model.SolImp, *xerr.Warning) {

	dmin, dmax, width, mid, power := imp[0], imp[1], imp[2], imp[3], imp[4]
	bad := dmin < model.MinImp || dmax > model.MaxImp || dmin > dmax ||
		width < 0 || mid < 0 || mid > 1 || power < 1

	if !bad {
		return imp, nil
	}
	return model.DefaultSolImp, xerr.NewWarning(xerr.BadSolImp, "solimp %v out of range, default substituted", imp)
}

// Impedance evaluates the solimp profile at constraint violation pos,
// producing the dimensionless value in [dmin, dmax] that scales a row's
// regularization (spec §4.6). The profile is flat at dmin for pos <= 0,
// rises through a power-law sigmoid centered at midpoint*width, and
// saturates at dmax for pos >= width.
func Impedance(imp model.SolImp, pos float64) float64 {

	dmin, dmax, width, mid, power := imp[0], imp[1], imp[2], imp[3], imp[4]
	if width <= 0 {
		return dmax
	}

	x := pos / width
	switch {
	case x <= 0:
		return dmin
	case x >= 1:
		return dmax
	}

	var y float64
	if x < mid {
		y = math.Pow(x, power) / math.Pow(mid, power-1)
	} else {
		y = 1 - math.Pow(1-x, power)/math.Pow(1-mid, power-1)
	}
	return dmin + y*(dmax-dmin)
}

// KBIP holds the derived reference-acceleration gains K, B and the
// impedance I evaluated at the row's current position, together with the
// solimp power P (imp[4], copied through unchanged; nothing in this module
// reads it).
type KBIP struct {
	K float64
	B float64
	I float64
	P float64
}

// Build derives K, B and I from a sanitized (ref, imp) pair and the row's
// current constraint violation pos (timestep is accepted but not used) — the
// generalization of SetSpookParams's (a, b, eps) to a per-row,
// position-dependent triple (spec §4.6). Both K and B are scaled by dmax =
// imp[1], the impedance profile's upper endpoint, so a row's reference pull
// stays consistent as its saturated impedance changes. zeroK forces K to 0:
// friction rows and an elliptic cone's tangential rows have no positional
// reference to pull toward, only a velocity-damping term.
//
// In standard mode ref = (timeconst, dampratio):
//
//	K = 1 / (dmax^2 * timeconst^2 * dampratio^2)
//	B = 2 / (dmax * timeconst)
//
// In direct mode ref = (-stiffness, -damping):
//
//	K = -ref[0] / dmax^2
//	B = -ref[1] / dmax
func Build(ref model.SolRef, imp model.SolImp, pos, timestep float64, zeroK bool) KBIP {

	dmax := imp[1]

	var k, b float64
	if ref[0] <= 0 {
		k = -ref[0] / (dmax * dmax)
		b = -ref[1] / dmax
	} else {
		timeconst, dampratio := ref[0], ref[1]
		k = 1 / (dmax * dmax * timeconst * timeconst * dampratio * dampratio)
		b = 2 / (dmax * timeconst)
	}
	if zeroK {
		k = 0
	}

	return KBIP{K: k, B: b, I: Impedance(imp, pos), P: imp[4]}
}

// R returns the row's regularization coefficient (the diagonal entry added
// to A_R, the SPOOK eps analog) given the row's diagApprox upper bound on
// 1/A_R's unregularized diagonal and this row's impedance (spec §4.6, §4.8):
//
//	R = max(MinVal, (1-I)/I * diagApprox)
func R(kb KBIP, diagApprox float64) float64 {
	if kb.I <= model.MinVal {
		return math.Max(model.MinVal, diagApprox/model.MinVal)
	}
	r := (1 - kb.I) / kb.I * diagApprox
	return math.Max(model.MinVal, r)
}

// D returns the row's impedance-scaled damping gain I*B. The update stage's
// reference acceleration (aref = -B*v - K*I*pos, spec §4.9) uses the
// unscaled B and does not call D.
func D(kb KBIP) float64 {
	return kb.I * kb.B
}

// FrictionConeCoupling returns R[i+1], the regularization every tangential
// row of a contact block starts from before its own axis scaling: the
// normal row's R divided by the model's impratio (spec §4.6, "R[i+1] :=
// R[i]/impratio"). impratio <= 0 is treated as 1 (no relative softening).
func FrictionConeCoupling(normalR, impratio float64) float64 {
	if impratio <= 0 {
		impratio = 1
	}
	return normalR / impratio
}

// RegularizedMu returns the friction coefficient the solver should use for
// the whole cone, after folding in the impratio softening applied to
// FrictionConeCoupling's R[i+1] (spec §4.6, "mu := mu_0 * sqrt(R[i+1]/R[i])").
// r1 is R[i+1] (FrictionConeCoupling's result), normalR is R[i].
func RegularizedMu(mu0, r1, normalR float64) float64 {
	if normalR <= 0 {
		return mu0
	}
	return mu0 * math.Sqrt(r1/normalR)
}

// FrictionConeAxis returns an elliptic cone's j-th tangential/torsional row
// regularization (j >= 2 in the spec's 1-based row numbering, i.e. every row
// past the first tangential row), scaling r1 by the squared ratio between
// mu0 (the first tangential row's coefficient) and that row's own
// coefficient muJ (spec §4.6, "R[i+j] :=
// R[i+1] * mu_0^2/mu_j^2").
func FrictionConeAxis(r1, mu0, muJ float64) float64 {
	if muJ <= 0 {
		return r1
	}
	return r1 * (mu0 * mu0) / (muJ * muJ)
}

// PyramidalConeR returns the shared regularization every row of a pyramidal
// contact's 2*(dim-1) friction-pyramid rows uses (spec §4.6, "R_py :=
// 2*mu^2*R[i]"), where normalR is the block's baseline R[i] and mu is the
// block's regularized friction coefficient (RegularizedMu's result).
func PyramidalConeR(mu, normalR float64) float64 {
	return 2 * mu * mu * normalR
}

// DiagApproxContactElliptic returns an elliptic contact block's diagApprox
// for row index rowIndex within the block (0 = normal): the first three
// rows use the translational inverse-weight sum, the rest the rotational
// sum (spec §4.6 diagApprox, "Elliptic: first 3 rows tran, remaining rot").
func DiagApproxContactElliptic(rowIndex int, tran, rot float64) float64 {
	if rowIndex < 3 {
		return tran
	}
	return rot
}

// DiagApproxContactPyramidal returns a pyramidal contact's friction-pair k's
// diagApprox: tran + mu_k^2*(tran if k<2 else rot) (spec §4.6 diagApprox,
// "Pyramidal" case). pairIndex is the friction-direction index (0 or 1 for
// the two tangent directions, matching k<2 in the spec text).
func DiagApproxContactPyramidal(pairIndex int, mu, tran, rot float64) float64 {
	extra := rot
	if pairIndex < 2 {
		extra = tran
	}
	return tran + mu*mu*extra
}

// DiagApproxFromR inverts R (spec §4.6, closing re-write: "efc_diagApprox[i]
// := R[i]*I/(1-I)" so the relation R = (1-I)/I*diagApprox holds exactly
// after the friction-cone coupling pass has overwritten R).
func DiagApproxFromR(r float64, kb KBIP) float64 {
	if kb.I >= 1 {
		return r
	}
	return r * kb.I / (1 - kb.I)
}
