package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gazed/vu/math/lin"
)

func TestStepRejectsNonPositiveDt(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 1})
	cfg := DefaultStepConfig()
	require.ErrorIs(t, w.Step(cfg, 0), ErrInvalidArgument)
	require.ErrorIs(t, w.Step(cfg, -1), ErrInvalidArgument)
}

func TestStepRejectsZeroSubsteps(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 1})
	cfg := DefaultStepConfig()
	cfg.SubstepCount = 0
	require.ErrorIs(t, w.Step(cfg, 1.0/60.0), ErrInvalidArgument)
}

// TestStepMultiThreadMatchesSerial checks that running the solver through
// the colored parallel dispatch path produces the same result (within
// tolerance) as the serial path, for a small scene with no shared bodies
// across rows.
func TestStepMultiThreadMatchesSerial(t *testing.T) {
	build := func(multiThread bool) *lin.V3 {
		w := NewWorld(WorldConfig{BodyCount: 4, ConstraintCount: 2})
		h1, _ := w.AddBody()
		h2, _ := w.AddBody()
		h3, _ := w.AddBody()
		h4, _ := w.AddBody()

		b1, _ := w.Body(h1)
		b1.InverseMass = 0
		b2, _ := w.Body(h2)
		b2.InverseMass = 1
		b2.InverseInertiaLocal.SetS(1, 0, 0, 0, 1, 0, 0, 0, 1)
		b2.Position.SetS(0, 2, 0)
		b2.AngularVelocity.SetS(1, 0, 0)
		b2.RecomputeWorldInertia()

		b3, _ := w.Body(h3)
		b3.InverseMass = 0
		b3.Position.SetS(5, 0, 0)
		b4, _ := w.Body(h4)
		b4.InverseMass = 1
		b4.InverseInertiaLocal.SetS(1, 0, 0, 0, 1, 0, 0, 0, 1)
		b4.Position.SetS(5, 2, 0)
		b4.AngularVelocity.SetS(0, 0, 1)
		b4.RecomputeWorldInertia()

		w.AddHinge(h1, h2, lin.NewV3().SetS(0, 1, 0), lin.NewQI(), -1, 1)
		w.AddHinge(h3, h4, lin.NewV3().SetS(0, 1, 0), lin.NewQI(), -1, 1)

		cfg := DefaultStepConfig()
		cfg.SleepDuration = 0
		cfg.MultiThread = multiThread
		dt := 1.0 / 60.0
		for i := 0; i < 30; i++ {
			w.Step(cfg, dt)
		}
		b2, _ = w.Body(h2)
		return b2.AngularVelocity
	}

	serial := build(false)
	parallel := build(true)
	require.LessOrEqual(t, serial.Dist(parallel), 1e-5,
		"multi-thread and serial runs diverged: serial=%v parallel=%v", serial, parallel)
}

func TestColorPartitionSeparatesSharedBodyRows(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 3, ConstraintCount: 2})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()
	h3, _ := w.AddBody()

	b1, _ := w.Body(h1)
	b1.InverseMass = 1
	b2, _ := w.Body(h2)
	b2.InverseMass = 1
	b3, _ := w.Body(h3)
	b3.InverseMass = 1

	w.AddHinge(h1, h2, lin.NewV3().SetS(0, 1, 0), lin.NewQI(), -1, 1)
	w.AddHinge(h2, h3, lin.NewV3().SetS(0, 1, 0), lin.NewQI(), -1, 1)

	colors := w.colorPartition(true)
	seen := map[*Body]int{}
	for ci, class := range colors {
		for _, row := range class {
			b1 := w.body(row.Body1)
			b2 := w.body(row.Body2)
			if prev, ok := seen[b1]; ok {
				require.NotEqual(t, ci, prev, "body %v appears twice in color class %d", b1, ci)
			}
			if prev, ok := seen[b2]; ok {
				require.NotEqual(t, ci, prev, "body %v appears twice in color class %d", b2, ci)
			}
			seen[b1] = ci
			seen[b2] = ci
		}
	}
}

func TestUpdateSleepStateKeepsIslandAwakeWhileOneBodyMoves(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, SmallConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()

	b1, _ := w.Body(h1)
	b1.InverseMass = 1
	b2, _ := w.Body(h2)
	b2.InverseMass = 1
	b2.AngularVelocity.SetS(5, 0, 0) // stays above the sleep threshold.

	w.AddSmall(h1, h2, lin.NewV3(), lin.NewV3(), 0)

	cfg := DefaultStepConfig()
	cfg.SleepDuration = 0.01
	cfg.SleepLinearThreshold = 0.01
	cfg.SleepAngularThreshold = 0.01
	for i := 0; i < 5; i++ {
		w.updateSleepState(1.0/60.0, cfg)
	}

	b1, _ = w.Body(h1)
	require.True(t, b1.Active, "body 1 should stay awake while body 2 (same island) keeps moving")
}
