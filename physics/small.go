package physics

import (
	"github.com/gazed/vu/arena"
	"github.com/gazed/vu/math/lin"
)

// SmallRow is a bilateral distance constraint between an anchor point on
// each of two bodies, holding their separation at RestLength. It carries
// the same prepare/iterate contract as HingeRow and PlaneRow with a
// smaller payload (no limit, no clamp code), sized for soft-body-style
// constraint networks with many rows per body.
//
// Grounded on pbd_base_constraints.go's positional_Constraint_Preprocessed_Data
// and its get_delta_lambda/apply pair, which is exactly this constraint
// (anchor-to-anchor distance) in XPBD compliance form; this package keeps
// its Jacobian-and-effective-mass shape but drives it with the same
// warm-started Gauss-Seidel iterate every other row uses.
type SmallRow struct {
	Anchor1 *lin.V3 // anchor offset, body-1 local frame.
	Anchor2 *lin.V3 // anchor offset, body-2 local frame.

	RestLength float64

	JW1, JW2 *lin.V3 // angular part of the Jacobian; linear part is ±axis.

	EffectiveMass      float64
	AccumulatedImpulse float64
	Bias               float64
	Softness           float64
	BiasFactor         float64

	// scratch, reused across Prepare/Iterate to avoid allocation.
	p1, p2, axis *lin.V3
	tmp          *lin.V3
}

func initSmallRow(r *Row, w *World, body1, body2 arena.Handle, anchor1, anchor2 *lin.V3, restLength float64) {
	r.kind = kindSmall
	r.world = w
	r.Body1 = body1
	r.Body2 = body2
	r.prepare = prepareSmall
	r.iterate = iterateSmall

	s := &r.Small
	s.Anchor1 = lin.NewV3().Set(anchor1)
	s.Anchor2 = lin.NewV3().Set(anchor2)
	s.RestLength = restLength
	s.JW1, s.JW2 = lin.NewV3(), lin.NewV3()
	s.BiasFactor = 0.2

	s.p1, s.p2, s.axis = lin.NewV3(), lin.NewV3(), lin.NewV3()
	s.tmp = lin.NewV3()
}

// prepareSmall rotates the anchors to world frame, builds the Jacobian
// from the current anchor-to-anchor direction, and applies warm-start.
// Unlike PlaneRow there is no clamp state: the row is always bilateral.
func prepareSmall(r *Row, invDt float64) {
	s := &r.Small
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	s.p1.MultQ(s.Anchor1, b1.Orientation)
	s.p1.Add(s.p1, b1.Position)
	s.p2.MultQ(s.Anchor2, b2.Orientation)
	s.p2.Add(s.p2, b2.Position)

	u := s.tmp
	u.Sub(s.p2, s.p1)
	dist := u.Len()
	if dist < 1e-9 {
		s.axis.SetS(0, 0, 1)
	} else {
		s.axis.Scale(u, 1/dist)
	}

	r1 := s.p1
	r1.Sub(s.p1, b1.Position)
	s.JW1.Cross(r1, s.axis)
	s.JW1.Scale(s.JW1, -1)

	r2 := s.p2
	r2.Sub(s.p2, b2.Position)
	s.JW2.Cross(r2, s.axis)

	i1w1 := s.tmp
	i1w1.MultMv(b1.InverseInertiaWorld, s.JW1)
	angular1 := s.JW1.Dot(i1w1)

	i2w2 := s.tmp
	i2w2.MultMv(b2.InverseInertiaWorld, s.JW2)
	angular2 := s.JW2.Dot(i2w2)

	denom := b1.InverseMass + b2.InverseMass + angular1 + angular2 + s.Softness*invDt
	if denom != 0 {
		s.EffectiveMass = 1 / denom
	} else {
		s.EffectiveMass = 0
	}

	errVal := dist - s.RestLength
	s.Bias = errVal * s.BiasFactor * invDt

	applySmallImpulse(s, b1, b2, s.AccumulatedImpulse)
}

func applySmallImpulse(s *SmallRow, b1, b2 *Body, impulse float64) {
	if !b1.IsStatic() {
		d1 := s.tmp
		d1.MultMv(b1.InverseInertiaWorld, s.JW1)
		d1.Scale(d1, impulse)
		b1.AngularVelocity.Add(b1.AngularVelocity, d1)
		b1.Velocity.X -= s.axis.X * impulse * b1.InverseMass
		b1.Velocity.Y -= s.axis.Y * impulse * b1.InverseMass
		b1.Velocity.Z -= s.axis.Z * impulse * b1.InverseMass
	}
	if !b2.IsStatic() {
		d2 := s.tmp
		d2.MultMv(b2.InverseInertiaWorld, s.JW2)
		d2.Scale(d2, impulse)
		b2.AngularVelocity.Add(b2.AngularVelocity, d2)
		b2.Velocity.X += s.axis.X * impulse * b2.InverseMass
		b2.Velocity.Y += s.axis.Y * impulse * b2.InverseMass
		b2.Velocity.Z += s.axis.Z * impulse * b2.InverseMass
	}
}

// iterateSmall runs one Gauss-Seidel correction pass for the distance row.
func iterateSmall(r *Row, invDt float64) {
	s := &r.Small
	b1 := r.world.body(r.Body1)
	b2 := r.world.body(r.Body2)

	v1 := s.JW1.Dot(b1.AngularVelocity) - (s.axis.X*b1.Velocity.X + s.axis.Y*b1.Velocity.Y + s.axis.Z*b1.Velocity.Z)
	v2 := s.JW2.Dot(b2.AngularVelocity) + (s.axis.X*b2.Velocity.X + s.axis.Y*b2.Velocity.Y + s.axis.Z*b2.Velocity.Z)
	jv := v1 + v2

	softTerm := s.AccumulatedImpulse * invDt * s.Softness
	lambda := -s.EffectiveMass * (jv + s.Bias + softTerm)

	s.AccumulatedImpulse += lambda
	applySmallImpulse(s, b1, b2, lambda)
}
