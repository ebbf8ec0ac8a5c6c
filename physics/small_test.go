package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gazed/vu/math/lin"
)

// TestSmallRowHoldsRestLength checks that a distance constraint, run over
// many steps against gravity, converges the anchor separation back to
// RestLength.
func TestSmallRowHoldsRestLength(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, SmallConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()

	b1, _ := w.Body(h1)
	b1.InverseMass = 0
	b1.Position.SetS(0, 5, 0)

	b2, _ := w.Body(h2)
	b2.InverseMass = 1.0
	b2.InverseInertiaLocal.SetS(1, 0, 0, 0, 1, 0, 0, 0, 1)
	b2.Position.SetS(0, 3, 0) // 2 units below anchor, rest length 1.
	b2.RecomputeWorldInertia()

	anchor1 := lin.NewV3()
	anchor2 := lin.NewV3()
	_, err := w.AddSmall(h1, h2, anchor1, anchor2, 1.0)
	require.NoError(t, err)

	cfg := DefaultStepConfig()
	cfg.SleepDuration = 0
	dt := 1.0 / 60.0
	for i := 0; i < 180; i++ {
		require.NoError(t, w.Step(cfg, dt))
	}

	b1, _ = w.Body(h1)
	b2, _ = w.Body(h2)
	dist := b1.Position.Dist(b2.Position)
	require.InDelta(t, 1.0, dist, 0.1, "expected anchor separation near rest length 1.0 after 180 steps")
}

func TestSmallRowDegenerateAnchorsPicksFallbackAxis(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, SmallConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()

	b2, _ := w.Body(h2)
	b2.InverseMass = 1.0
	b2.InverseInertiaLocal.SetS(1, 0, 0, 0, 1, 0, 0, 0, 1)
	b2.RecomputeWorldInertia()

	anchor1 := lin.NewV3()
	anchor2 := lin.NewV3()
	rs, err := w.AddSmall(h1, h2, anchor1, anchor2, 0)
	require.NoError(t, err)

	row, err := w.Small(rs)
	require.NoError(t, err)
	row.Prepare(60.0)
	require.InDelta(t, 1.0, row.Small.axis.Len(), 0.01,
		"expected degenerate-separation fallback axis to stay unit length, got %v", row.Small.axis)
}
