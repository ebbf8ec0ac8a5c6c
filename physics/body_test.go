package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gazed/vu/math/lin"
)

func TestNewBodyIsStaticAndIdentity(t *testing.T) {
	b := NewBody()
	require.True(t, b.IsStatic(), "new body should be static (zero inverse mass)")
	require.True(t, b.Orientation.Aeq(lin.NewQI()), "new body should have identity orientation, got %v", b.Orientation)
	require.True(t, b.InverseInertiaWorld.Aeq(lin.NewM3()), "new body's world inverse inertia should be zero, got %v", b.InverseInertiaWorld)
}

func TestIntegrateVelocitiesSkipsStaticBody(t *testing.T) {
	b := NewBody()
	gravity := lin.NewV3().SetS(0, -9.81, 0)
	b.IntegrateVelocities(1.0/60.0, gravity)
	require.True(t, b.Velocity.AeqZ(), "static body should never receive a velocity change, got %v", b.Velocity)
}

func TestIntegrateVelocitiesAppliesGravity(t *testing.T) {
	b := NewBody()
	b.InverseMass = 1.0
	gravity := lin.NewV3().SetS(0, -9.81, 0)
	dt := 1.0 / 60.0
	b.IntegrateVelocities(dt, gravity)
	require.InDelta(t, -9.81*dt, b.Velocity.Y, 1e-9)
}

func TestIntegratePositionRenormalisesOrientation(t *testing.T) {
	b := NewBody()
	b.InverseMass = 1.0
	b.AngularVelocity.SetS(5, 0, 0)
	for i := 0; i < 10; i++ {
		b.IntegratePosition(1.0 / 60.0)
	}
	lenSqr := b.Orientation.W*b.Orientation.W + b.Orientation.X*b.Orientation.X +
		b.Orientation.Y*b.Orientation.Y + b.Orientation.Z*b.Orientation.Z
	require.InDelta(t, 1.0, lenSqr, 1e-6, "orientation should stay unit length after repeated integration")
}

func TestIntegratePositionSkipsStaticBody(t *testing.T) {
	b := NewBody()
	b.AngularVelocity.SetS(5, 0, 0)
	before := lin.NewV3().Set(b.Position)
	b.IntegratePosition(1.0 / 60.0)
	require.True(t, b.Position.Aeq(before), "static body should never move, got %v", b.Position)
}

func TestRecomputeWorldInertiaIdentityOrientation(t *testing.T) {
	b := NewBody()
	b.InverseInertiaLocal.SetS(2, 0, 0, 0, 2, 0, 0, 0, 2)
	b.RecomputeWorldInertia()
	require.True(t, b.InverseInertiaWorld.Aeq(b.InverseInertiaLocal),
		"identity-orientation world inertia should equal local inertia, got %v", b.InverseInertiaWorld)
}
