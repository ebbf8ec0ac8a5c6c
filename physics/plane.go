package physics

import (
	"github.com/gazed/vu/arena"
	"github.com/gazed/vu/math/lin"
)

// PlaneRow constrains an anchor point on body 2 to stay within a linear
// limit along an axis fixed in body 1's frame — a sliding joint, or (with
// min == max) a rigid point-on-plane weld. It is the scalar counterpart
// of HingeRow: one Jacobian row of four 3-vectors instead of a 3x3 block.
//
// Grounded the same way as HingeRow, on pbd_base_constraints.go's
// positional_Constraint_Preprocessed_Data/apply pair, generalised from
// XPBD compliance to a warm-started, clamp-coded scalar row.
type PlaneRow struct {
	Axis    *lin.V3 // axis, body-1 local frame, set at construction.
	Anchor1 *lin.V3 // anchor offset, body-1 local frame.
	Anchor2 *lin.V3 // anchor offset, body-2 local frame.

	JV1, JW1, JV2, JW2 *lin.V3 // 4-vector Jacobian (linear1, angular1, linear2, angular2).

	EffectiveMass      float64
	AccumulatedImpulse float64
	Bias               float64
	Min, Max           float64
	Clamp              int // 0 = free, 1 = at max, 2 = at min.
	Softness           float64
	BiasFactor         float64

	// scratch, reused across Prepare/Iterate to avoid allocation.
	worldAxis  *lin.V3
	p1, p2, u  *lin.V3
	r1u        *lin.V3
	tmp        *lin.V3
	impulseLin *lin.V3
}

func initPlaneRow(r *Row, w *World, body1, body2 arena.Handle, axis, anchor1, anchor2 *lin.V3, min, max float64) {
	r.kind = kindPlane
	r.world = w
	r.Body1 = body1
	r.Body2 = body2
	r.prepare = preparePlane
	r.iterate = iteratePlane

	p := &r.Plane
	p.Axis = lin.NewV3().Set(axis).Unit()
	p.Anchor1 = lin.NewV3().Set(anchor1)
	p.Anchor2 = lin.NewV3().Set(anchor2)
	p.JV1, p.JW1, p.JV2, p.JW2 = lin.NewV3(), lin.NewV3(), lin.NewV3(), lin.NewV3()
	p.Min, p.Max = min, max
	p.BiasFactor = 0.2

	p.worldAxis = lin.NewV3()
	p.p1, p.p2, p.u = lin.NewV3(), lin.NewV3(), lin.NewV3()
	p.r1u = lin.NewV3()
	p.tmp = lin.NewV3()
	p.impulseLin = lin.NewV3()
}

// preparePlane rotates the axis and anchors to world frame, builds the
// Jacobian and scalar effective mass, and applies the warm-start
// impulse. If the linear limit is not violated (clamp == 0) the row
// zeroes its accumulated impulse and contributes nothing this step.
func preparePlane(r *Row, invDt float64) {
	p := &r.Plane
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	p.worldAxis.MultQ(p.Axis, b1.Orientation)
	p.p1.MultQ(p.Anchor1, b1.Orientation)
	p.p1.Add(p.p1, b1.Position)
	p.p2.MultQ(p.Anchor2, b2.Orientation)
	p.p2.Add(p.p2, b2.Position)
	p.u.Sub(p.p2, p.p1)

	axis := p.worldAxis
	p.JV1.Scale(axis, -1)

	// r1 is the world-rotated anchor-1 offset from body 1's centre;
	// r1+u reaches from body 1's centre to the world anchor on body 2.
	r1 := p.r1u
	r1.Sub(p.p1, b1.Position)
	r1.Add(r1, p.u)
	p.JW1.Cross(r1, axis)
	p.JW1.Scale(p.JW1, -1)

	p.JV2.Set(axis)

	r2 := p.tmp
	r2.Sub(p.p2, b2.Position)
	p.JW2.Cross(r2, axis)

	errVal := p.u.Dot(axis)

	switch {
	case errVal > p.Max:
		p.Clamp = 1
		errVal -= p.Max
	case errVal < p.Min:
		p.Clamp = 2
		errVal -= p.Min
	default:
		p.Clamp = 0
		p.AccumulatedImpulse = 0
		return
	}

	i1w1 := p.tmp
	i1w1.MultMv(b1.InverseInertiaWorld, p.JW1)
	angular1 := p.JW1.Dot(i1w1)

	i2w2 := p.tmp
	i2w2.MultMv(b2.InverseInertiaWorld, p.JW2)
	angular2 := p.JW2.Dot(i2w2)

	denom := b1.InverseMass + b2.InverseMass + angular1 + angular2 + p.Softness*invDt
	if denom != 0 {
		p.EffectiveMass = 1 / denom
	} else {
		p.EffectiveMass = 0
	}

	p.Bias = errVal * p.BiasFactor * invDt

	applyPlaneImpulse(p, b1, b2, p.AccumulatedImpulse)
}

func applyPlaneImpulse(p *PlaneRow, b1, b2 *Body, impulse float64) {
	if !b1.IsStatic() {
		d1 := p.tmp
		d1.MultMv(b1.InverseInertiaWorld, p.JW1)
		d1.Scale(d1, impulse)
		b1.AngularVelocity.Add(b1.AngularVelocity, d1)

		lin1 := p.impulseLin
		lin1.Scale(p.JV1, impulse*b1.InverseMass)
		b1.Velocity.Add(b1.Velocity, lin1)
	}

	if !b2.IsStatic() {
		d2 := p.tmp
		d2.MultMv(b2.InverseInertiaWorld, p.JW2)
		d2.Scale(d2, impulse)
		b2.AngularVelocity.Add(b2.AngularVelocity, d2)

		lin2 := p.impulseLin
		lin2.Scale(p.JV2, impulse*b2.InverseMass)
		b2.Velocity.Add(b2.Velocity, lin2)
	}
}

// iteratePlane runs one Gauss-Seidel correction pass for the scalar row.
func iteratePlane(r *Row, invDt float64) {
	p := &r.Plane
	if p.Clamp == 0 {
		return
	}
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	v1w1 := p.JV1.Dot(b1.Velocity) + p.JW1.Dot(b1.AngularVelocity)
	v2w2 := p.JV2.Dot(b2.Velocity) + p.JW2.Dot(b2.AngularVelocity)
	jv := v1w1 + v2w2

	softTerm := p.AccumulatedImpulse * invDt * p.Softness
	lambda := -p.EffectiveMass * (jv + p.Bias + softTerm)

	old := p.AccumulatedImpulse
	p.AccumulatedImpulse += lambda

	switch p.Clamp {
	case 1:
		if p.AccumulatedImpulse > 0 {
			p.AccumulatedImpulse = 0
		}
	case 2:
		if p.AccumulatedImpulse < 0 {
			p.AccumulatedImpulse = 0
		}
	}

	actual := p.AccumulatedImpulse - old
	applyPlaneImpulse(p, b1, b2, actual)
}
