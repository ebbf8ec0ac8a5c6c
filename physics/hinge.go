package physics

import (
	"github.com/gazed/vu/arena"
	"github.com/gazed/vu/math/lin"
)

// HingeRow constrains two bodies to share a common angular axis while
// leaving rotation about that axis free, with an optional angular limit
// measured as sin(angle/2) against the limit axis. It is the first of the
// two constraint-row variants a Row payload can carry.
//
// Grounded on the 3x3 angular Jacobian construction in
// pbd_base_constraints.go's angular_Constraint_Preprocessed_Data/apply
// pair, generalised from that file's compliance-based XPBD formulation to
// the warm-started, clamp-coded Gauss-Seidel row this package's step
// pipeline drives.
type HingeRow struct {
	Axis *lin.V3 // hinge axis, body-2 local frame, set at construction.
	P0   *lin.V3 // triad vector completing Axis, body-2 local frame.
	P1   *lin.V3 // triad vector completing Axis, body-2 local frame.
	Q0   *lin.Q  // relative reference orientation.

	AccumulatedImpulse *lin.V3
	Bias               *lin.V3
	EffectiveMass      *lin.M3
	Jacobian           *lin.M3

	MinAngle, MaxAngle float64 // stored as sin(angle/2).
	Softness           float64
	LimitSoftness      float64
	BiasFactor         float64
	LimitBias          float64
	Clamp              int // 0 = free, 1 = at max, 2 = at min.

	// scratch, reused across Prepare/Iterate to avoid allocation.
	jacobianT          *lin.M3
	qa, dq             *lin.Q
	m0                 *lin.M3
	isum, tmpM         *lin.M3
	errV, jv, softTerm *lin.V3
	oldImpulse, actual *lin.V3
	jtImpulse, d1, d2  *lin.V3
	rowVec             *lin.V3
}

func initHingeRow(r *Row, w *World, body1, body2 arena.Handle, axis *lin.V3, q0 *lin.Q, minAngle, maxAngle float64) {
	r.kind = kindHinge
	r.world = w
	r.Body1 = body1
	r.Body2 = body2
	r.prepare = prepareHinge
	r.iterate = iterateHinge

	h := &r.Hinge
	h.Axis = lin.NewV3().Set(axis).Unit()
	h.P0, h.P1 = lin.NewV3(), lin.NewV3()
	h.Axis.Plane(h.P0, h.P1)
	h.Q0 = lin.NewQ().Set(q0)
	h.AccumulatedImpulse = lin.NewV3()
	h.Bias = lin.NewV3()
	h.EffectiveMass = lin.NewM3()
	h.Jacobian = lin.NewM3()
	h.MinAngle, h.MaxAngle = minAngle, maxAngle
	h.BiasFactor, h.LimitBias = 0.2, 0.2

	h.jacobianT = lin.NewM3()
	h.qa, h.dq = lin.NewQ(), lin.NewQ()
	h.m0 = lin.NewM3()
	h.isum, h.tmpM = lin.NewM3(), lin.NewM3()
	h.errV, h.jv, h.softTerm = lin.NewV3(), lin.NewV3(), lin.NewV3()
	h.oldImpulse, h.actual = lin.NewV3(), lin.NewV3()
	h.jtImpulse, h.d1, h.d2 = lin.NewV3(), lin.NewV3(), lin.NewV3()
	h.rowVec = lin.NewV3()
}

// prepareHinge builds the row's Jacobian, effective mass and bias for
// this substep, then applies the warm-start impulse. Computed once per
// step and reused across the solver's iterate passes.
func prepareHinge(r *Row, invDt float64) {
	h := &r.Hinge
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	// Δq = Q0 · q1* · q2. q1* is q1's conjugate (== inverse for a unit
	// quaternion), computed via Q.Inv.
	q1c := h.qa.Inv(b1.Orientation) // h.qa now holds q1*.
	qa := h.qa.Mult(h.Q0, q1c)      // h.qa = Q0 · q1*, safe to alias q1c.
	dq := h.dq.Mult(qa, b2.Orientation)

	sign := 1.0
	if dq.W < 0 {
		sign = -1.0
	}

	h.errV.SetS(dq.X*sign, dq.Y*sign, dq.Z*sign)
	error0 := h.P0.Dot(h.errV)
	error1 := h.P1.Dot(h.errV)
	error2 := h.Axis.Dot(h.errV)

	// m0 = -1/2 * ProjectMultiplyLeftRight(qa, q2), sign-fixed with Δq.
	h.m0.SetProjectMultiplyLeftRight(qa, b2.Orientation)
	h.m0.Scale(-0.5 * sign)

	// Jacobian rows are (m0^T.p0, m0^T.p1, m0^T.axis).
	m0t := h.jacobianT.Transpose(h.m0) // jacobianT borrowed as scratch here.
	row := h.rowVec
	row.MultMv(m0t, h.P0)
	h.Jacobian.Xx, h.Jacobian.Xy, h.Jacobian.Xz = row.X, row.Y, row.Z
	row.MultMv(m0t, h.P1)
	h.Jacobian.Yx, h.Jacobian.Yy, h.Jacobian.Yz = row.X, row.Y, row.Z
	row.MultMv(m0t, h.Axis)
	h.Jacobian.Zx, h.Jacobian.Zy, h.Jacobian.Zz = row.X, row.Y, row.Z

	switch {
	case error2 > h.MaxAngle:
		h.Clamp = 1
		error2 -= h.MaxAngle
	case error2 < h.MinAngle:
		h.Clamp = 2
		error2 -= h.MinAngle
	default:
		h.Clamp = 0
		h.AccumulatedImpulse.Z = 0
		h.Jacobian.Xz, h.Jacobian.Yz, h.Jacobian.Zz = 0, 0, 0
	}

	// effective_mass = (J (I1^-1+I2^-1) J^T) + diag(softness, softness,
	// limit_softness)/dt, inverted. jacobianT now holds the true
	// Jacobian transpose, cached for the impulse-application step below.
	h.isum.Add(b1.InverseInertiaWorld, b2.InverseInertiaWorld)
	h.jacobianT.Transpose(h.Jacobian)
	h.tmpM.Mult(h.Jacobian, h.isum)
	h.EffectiveMass.Mult(h.tmpM, h.jacobianT)
	h.EffectiveMass.Xx += h.Softness / invDt
	h.EffectiveMass.Yy += h.Softness / invDt
	h.EffectiveMass.Zz += h.LimitSoftness / invDt
	if h.Clamp == 0 {
		h.EffectiveMass.Zx, h.EffectiveMass.Zy, h.EffectiveMass.Zz = 0, 0, 1
		h.EffectiveMass.Xz, h.EffectiveMass.Yz = 0, 0
	}
	h.EffectiveMass.Inv(h.EffectiveMass)

	h.Bias.X = error0 * invDt * h.BiasFactor
	h.Bias.Y = error1 * invDt * h.BiasFactor
	h.Bias.Z = error2 * invDt * h.LimitBias

	applyHingeImpulse(h, b1, b2, h.AccumulatedImpulse)
}

func applyHingeImpulse(h *HingeRow, b1, b2 *Body, impulse *lin.V3) {
	h.jtImpulse.MultMv(h.jacobianT, impulse)
	if !b1.IsStatic() {
		h.d1.MultMv(b1.InverseInertiaWorld, h.jtImpulse)
		b1.AngularVelocity.Add(b1.AngularVelocity, h.d1)
	}
	if !b2.IsStatic() {
		h.d2.MultMv(b2.InverseInertiaWorld, h.jtImpulse)
		b2.AngularVelocity.Sub(b2.AngularVelocity, h.d2)
	}
}

// iterateHinge runs one Gauss-Seidel correction pass: project the
// relative angular velocity through the Jacobian, solve for the impulse
// that drives it (plus bias and softness) to zero, clamp per the limit
// state, and apply the incremental impulse.
func iterateHinge(r *Row, invDt float64) {
	h := &r.Hinge
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	dw := h.rowVec
	dw.Sub(b1.AngularVelocity, b2.AngularVelocity)
	jv := h.jv
	jv.MultMv(h.Jacobian, dw)

	st := h.softTerm
	st.X = h.AccumulatedImpulse.X * invDt * h.Softness
	st.Y = h.AccumulatedImpulse.Y * invDt * h.Softness
	st.Z = h.AccumulatedImpulse.Z * invDt * h.LimitSoftness

	rhs := h.errV
	rhs.X = jv.X + h.Bias.X + st.X
	rhs.Y = jv.Y + h.Bias.Y + st.Y
	rhs.Z = jv.Z + h.Bias.Z + st.Z

	lambda := h.rowVec
	lambda.MultMv(h.EffectiveMass, rhs)
	lambda.Scale(lambda, -1)

	h.oldImpulse.Set(h.AccumulatedImpulse)
	h.AccumulatedImpulse.Add(h.AccumulatedImpulse, lambda)

	switch h.Clamp {
	case 1:
		if h.AccumulatedImpulse.Z > 0 {
			h.AccumulatedImpulse.Z = 0
		}
	case 2:
		if h.AccumulatedImpulse.Z < 0 {
			h.AccumulatedImpulse.Z = 0
		}
	default:
		h.AccumulatedImpulse.Z = 0
	}

	h.actual.Sub(h.AccumulatedImpulse, h.oldImpulse)
	applyHingeImpulse(h, b1, b2, h.actual)
}
