// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model holds the read-only, per-step-invariant description of a
// multibody system that the constraint core consumes: bodies, joints,
// tendons, equality definitions, per-element solver-reference parameters,
// and the cached factor of the mass matrix. Nothing in this package is
// mutated once a step begins — the core only ever reads it.
package model

// Numerical constants, bit-exact with the host engine (spec §6).
const (
	MinVal = 1e-15 // mjMINVAL
	MinImp = 1e-4  // mjMINIMP
	MaxImp = 1 - 1e-4 // mjMAXIMP
	NRef   = 2     // mjNREF: length of a solref tuple
	NImp   = 5     // mjNIMP: length of a solimp tuple
	NEqData = 11   // mjNEQDATA: length of an equality's data payload

	// SparseAutoThreshold is the default nv at or above which JacobianAuto
	// picks the sparse layout.
	SparseAutoThreshold = 60
)

// ConeType selects the friction cone approximation used for contacts.
type ConeType int

const (
	ConePyramidal ConeType = iota
	ConeElliptic
)

// JacobianMode selects the constraint Jacobian storage layout.
type JacobianMode int

const (
	JacobianDense JacobianMode = iota
	JacobianSparse
	JacobianAuto
)

// SolverType selects the outer convex solver (consumed only as a hint by
// the core; solver iteration itself is out of scope, spec §1).
type SolverType int

const (
	SolverPrimalCG SolverType = iota
	SolverPrimalNewton
	SolverPGS
)

// EqualityType enumerates the equality-constraint subtypes (spec §4.4).
type EqualityType int

const (
	EqConnect EqualityType = iota
	EqWeld
	EqJoint
	EqTendon
)

// JointType enumerates the joint kinds the limit instantiator handles
// (spec §4.4).
type JointType int

const (
	JointSlide JointType = iota
	JointHinge
	JointBall
	JointFree
)

// ConstraintType is efc_type (spec §3).
type ConstraintType int

const (
	EQUALITY ConstraintType = iota
	FRICTION_DOF
	FRICTION_TENDON
	LIMIT_JOINT
	LIMIT_TENDON
	CONTACT_FRICTIONLESS
	CONTACT_PYRAMIDAL
	CONTACT_ELLIPTIC
)

// DisableBit is the disable/override bitmask (spec §6).
type DisableBit uint32

const (
	DisableConstraint DisableBit = 1 << iota
	DisableEquality
	DisableFrictionLoss
	DisableLimit
	DisableContact
	DisableRefSafe // REFSAFE: when clear (default), enforce solref[0] >= 2*timestep; when set, skip that clamp
	EnableOverride // OVERRIDE: when set, every row adopts opt.OSolRef/OSolImp/OMargin
)

// Has reports whether bit is set in the mask.
func (m DisableBit) Has(bit DisableBit) bool { return m&bit != 0 }

// SolRef is the (timeconst, dampratio) pair from spec §4.6, or in "direct"
// mode (ref[0] <= 0) a pair of raw (stiffness, damping) coefficients.
type SolRef [NRef]float64

// SolImp is the (dmin, dmax, width, midpoint, power) tuple from spec §4.6.
type SolImp [NImp]float64

// DefaultSolRef and DefaultSolImp are substituted whenever sanitization in
// params.Sanitize rejects a malformed per-element value (spec §4.6, §7).
var (
	DefaultSolRef = SolRef{0.02, 1.0}
	DefaultSolImp = SolImp{0.9, 0.95, 0.001, 0.5, 2.0}
)

// Option mirrors the model's `opt` struct (spec §3, §6).
type Option struct {
	Cone             ConeType
	Jacobian         JacobianMode
	Solver           SolverType
	Impratio         float64
	Timestep         float64
	Disable          DisableBit
	NoslipIterations int

	// Used only when EnableOverride is set in Disable.
	OSolRef SolRef
	OSolImp SolImp
	OMargin float64
}

// Body describes one body's place in the kinematic dof-parent tree (spec
// §4.2). DofAdr is the index of the body's first dof, or -1 if the body is
// fixed to its parent (DofNum == 0).
type Body struct {
	DofNum int
	DofAdr int
	Simple bool // true if the body's dofs directly parameterize its pose with no shared ancestor bookkeeping needed (spec §4.2 fast path)

	// World-frame pose, supplied by the kinematics stage that runs ahead of
	// this package each step (spec §1 Non-goals excludes computing these,
	// not consuming them). Needed only by equality and contact rows, which
	// relate two bodies' motion in Cartesian space; joint and tendon limit
	// rows never read these fields.
	Pos  [3]float64
	Quat [4]float64 // x, y, z, w
}

// LastDof returns the index of the body's outermost (leaf-most) dof, or -1
// if the body contributes no dofs.
func (b Body) LastDof() int {
	if b.DofNum == 0 {
		return -1
	}
	return b.DofAdr + b.DofNum - 1
}

// Dof describes one generalized velocity coordinate.
type Dof struct {
	ParentID       int     // index of the parent dof in the kinematic tree, or -1 at the root
	InvWeight      float64 // diagonal inverse-inertia upper bound (spec §4.6 diagApprox)
	FrictionLoss   float64 // dof-level dry friction coefficient, 0 if none
	SolRefFriction SolRef
}

// Joint describes one scalar or multi-dof joint (spec §4.4 limit instantiator).
type Joint struct {
	Type       JointType
	DofAdr     int // first dof of this joint (3 dofs for Ball, 1 otherwise)
	QposAdr    int // first generalized position coordinate
	Limited    bool
	Range      [2]float64
	Margin     float64
	SolRefLim  SolRef
	SolImpLim  SolImp
}

// Tendon describes one scalar tendon (length function of qpos).
type Tendon struct {
	Limited         bool
	Range           [2]float64
	Margin          float64
	SolRefLim       SolRef
	SolImpLim       SolImp
	FrictionLoss     float64
	SolRefFriction   SolRef
	InvWeight       float64 // diagApprox contribution

	// Moment arm of the tendon's length w.r.t. each dof it spans: Length(q)
	// row in the generalized Jacobian. Dofs need not be contiguous or
	// sorted; the limit and friction-loss instantiators sort them onto a
	// chain themselves.
	Dofs   []int
	Moment []float64
}

// Equality describes one equality-constraint definition (spec §4.4).
type Equality struct {
	Type    EqualityType
	Active  bool
	Obj1ID  int // body id (Connect/Weld) or joint/tendon id (Joint/Tendon)
	Obj2ID  int // second body/joint/tendon id, or -1 if absent
	Data    [NEqData]float64
	SolRef  SolRef
	SolImp  SolImp
}

// Contact is produced by the collision subsystem (spec §3). The core only
// mutates Exclude, EfcAddress, Mu and H.
type Contact struct {
	Geom1, Geom2   int
	Body1, Body2   int
	Pos            [3]float64   // contact point, world coordinates
	Frame          spatialFrame // 3x3 world rotation, rows are normal/tangent1/tangent2
	Dist           float64
	IncludeMargin  float64
	Dim            int // 1, 3, 4 or 6
	Friction       [5]float64 // length dim-1, mu coefficients
	SolRef         SolRef
	SolImp         SolImp
	SolRefFriction SolRef

	// Mutated by the core.
	Exclude    int // 0 = active, 1/2 = excluded upstream, 3 = excluded (empty dof chain)
	EfcAddress int // first row of this contact's block, or -1
	Mu         float64
	H          [36]float64 // 6x6 cone Hessian, row-major, only populated for CONE state rows
}

// spatialFrame is a 3x3 row-major rotation matrix; kept as a plain array
// here (rather than *spatial.Matrix3) so Contact stays a value type that the
// collision subsystem can populate without importing spatial's mutation API.
type spatialFrame [9]float64

// Array returns the contact frame's nine entries in row-major order.
func (f spatialFrame) Array() [9]float64 { return f }

// NewFrame builds a spatialFrame from row-major entries.
func NewFrame(a [9]float64) spatialFrame { return spatialFrame(a) }

// Model is the read-only multibody description (spec §3).
type Model struct {
	NV int // number of generalized velocity dofs
	NQ int // number of generalized position coordinates

	Bodies []Body
	Dofs   []Dof
	Joints []Joint
	Tendons []Tendon
	Equalities []Equality

	// Mass matrix collaborator data (spec §3): the cached LDL^T factor of M,
	// supplied by the outside world since mass-matrix factorization is a
	// spec Non-goal. QLD is the unit-lower-triangular factor L, dense,
	// row-major, NV*NV (L[d*NV+a] is L's entry at row d, column a, valid
	// for a < d); QLDiagSqrtInv[d] is 1/sqrt(D[d]), D being the diagonal
	// factor such that M = L*D*L^T.
	QLD           []float64
	QLDiagSqrtInv []float64

	Opt Option
}

// EffectiveSolRef returns elementRef, replaced by opt.OSolRef when
// EnableOverride is set (spec §4.6, design note "override semantics").
func (o Option) EffectiveSolRef(elementRef SolRef) SolRef {
	if o.Disable.Has(EnableOverride) {
		return o.OSolRef
	}
	return elementRef
}

// EffectiveSolImp returns elementImp, replaced by opt.OSolImp when
// EnableOverride is set.
func (o Option) EffectiveSolImp(elementImp SolImp) SolImp {
	if o.Disable.Has(EnableOverride) {
		return o.OSolImp
	}
	return elementImp
}

// EffectiveMargin returns margin, replaced by opt.OMargin when
// EnableOverride is set.
func (o Option) EffectiveMargin(margin float64) float64 {
	if o.Disable.Has(EnableOverride) {
		return o.OMargin
	}
	return margin
}
