package physics

import (
	"github.com/gazed/vu/math/lin"
)

// Body is the native rigid-body record: mass, inverse-inertia in both body
// and world frames, position, orientation, linear and angular velocity,
// accumulated force/torque, and sleep state. Logic that acts on a Body
// lives in the step pipeline (step.go); Body itself is data.
//
// Invariants: Orientation is renormalised after every IntegratePosition.
// InverseInertiaWorld = R * InverseInertiaLocal * Rt where R is the
// rotation matrix of Orientation. A body with InverseMass == 0 never
// receives a velocity change from IntegrateVelocities.
type Body struct {
	Position    *lin.V3
	Orientation *lin.Q

	Velocity        *lin.V3
	AngularVelocity *lin.V3

	InverseMass         float64
	InverseInertiaLocal *lin.M3
	InverseInertiaWorld *lin.M3

	Force  *lin.V3
	Torque *lin.V3

	SleepTime float64
	Active    bool
	Island    uint32

	// scratch, reused across calls to avoid allocation in the hot loop.
	m0, m1 *lin.M3
	v0     *lin.V3
	q0, q1 *lin.Q
}

// NewBody returns a Body at the origin with identity orientation, zero
// velocities, and zero mass (static, per the lifecycle rule that bodies
// are created inert).
func NewBody() *Body {
	return &Body{
		Position:            lin.NewV3(),
		Orientation:         lin.NewQI(),
		Velocity:            lin.NewV3(),
		AngularVelocity:     lin.NewV3(),
		InverseInertiaLocal: lin.NewM3(),
		InverseInertiaWorld: lin.NewM3(),
		Force:               lin.NewV3(),
		Torque:              lin.NewV3(),
		Active:              true,
		m0:                  lin.NewM3(),
		m1:                  lin.NewM3(),
		v0:                  lin.NewV3(),
		q0:                  lin.NewQ(),
		q1:                  lin.NewQ(),
	}
}

// IsStatic reports whether the body has zero inverse mass (kinematic/static).
func (b *Body) IsStatic() bool { return b.InverseMass == 0 }

// IntegrateVelocities applies accumulated force and torque, plus gravity,
// to the body's velocities over dt. Static bodies are left untouched.
//
// Grounded on the teacher's body.integrateVelocities, with the same
// angular-velocity clamp so a runaway torque cannot desynchronise the
// rest of the solver in a single substep.
func (b *Body) IntegrateVelocities(dt float64, gravity *lin.V3) {
	if b.IsStatic() {
		return
	}
	v := b.Velocity
	v.X += (b.Force.X*b.InverseMass + gravity.X) * dt
	v.Y += (b.Force.Y*b.InverseMass + gravity.Y) * dt
	v.Z += (b.Force.Z*b.InverseMass + gravity.Z) * dt

	torque := b.v0.MultMv(b.InverseInertiaWorld, b.Torque)
	tx, ty, tz := torque.X, torque.Y, torque.Z

	w := b.AngularVelocity
	w.X, w.Y, w.Z = w.X+tx*dt, w.Y+ty*dt, w.Z+tz*dt

	if wlen := w.Len(); wlen*dt > lin.HalfPi {
		w.Scale(w, lin.HalfPi/dt/wlen)
	}
}

// ClearForces zeroes the accumulated force and torque.
func (b *Body) ClearForces() {
	b.Force.SetS(0, 0, 0)
	b.Torque.SetS(0, 0, 0)
}

// NormalizeOrientation renormalises Orientation to unit length.
func (b *Body) NormalizeOrientation() { b.Orientation.Unit() }

// RecomputeWorldInertia updates InverseInertiaWorld from the current
// orientation: R * InverseInertiaLocal * Rt. Must run after every
// IntegratePosition, since constraint preparation next substep consumes
// InverseInertiaWorld.
//
// Grounded on the teacher's body.updateInertiaTensor.
func (b *Body) RecomputeWorldInertia() {
	r, rt := b.m0, b.m1
	r.SetQ(b.Orientation)
	rt.Transpose(r)
	b.InverseInertiaWorld.Mult(r, b.InverseInertiaLocal).Mult(b.InverseInertiaWorld, rt)
}

// IntegratePosition advances position by velocity and orientation by
// angular velocity over dt, then renormalises the orientation. Grounded
// on the teacher's pbd_base_constraints.go aux-quaternion-then-normalise
// pattern, applied per spec as a left multiplication by the pure angular
// velocity quaternion: orientation += dt * 0.5 * w * orientation.
func (b *Body) IntegratePosition(dt float64) {
	if b.IsStatic() {
		return
	}
	p := b.Position
	p.X, p.Y, p.Z = p.X+dt*b.Velocity.X, p.Y+dt*b.Velocity.Y, p.Z+dt*b.Velocity.Z

	w := b.AngularVelocity
	wq := b.q0.SetS(w.X*dt*0.5, w.Y*dt*0.5, w.Z*dt*0.5, 0)
	dq := b.q1.Mult(wq, b.Orientation)
	b.Orientation.Add(b.Orientation, dq)
	b.NormalizeOrientation()
}
