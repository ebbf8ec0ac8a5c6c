package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gazed/vu/arena"
	"github.com/gazed/vu/math/lin"
)

func TestWorldAddBodyCapacityExceeded(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 1})
	_, err := w.AddBody()
	require.NoError(t, err, "first AddBody should succeed")
	_, err = w.AddBody()
	require.ErrorIs(t, err, arena.ErrCapacityExceeded)
}

func TestWorldRemoveBodyFreesSlotForReuse(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 1})
	h, _ := w.AddBody()
	require.NoError(t, w.RemoveBody(h))
	_, err := w.Body(h)
	require.ErrorIs(t, err, arena.ErrStaleHandle)
	_, err = w.AddBody()
	require.NoError(t, err, "freed slot should be reusable")
}

func TestWorldRowArenaHoldsBothVariants(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 4, ConstraintCount: 2})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()
	h3, _ := w.AddBody()
	h4, _ := w.AddBody()

	rh, err := w.AddHinge(h1, h2, lin.NewV3().SetS(0, 1, 0), lin.NewQI(), -1, 1)
	require.NoError(t, err)
	rp, err := w.AddPlane(h3, h4, lin.NewV3().SetS(0, 1, 0), lin.NewV3(), lin.NewV3(), -1, 1)
	require.NoError(t, err)

	rowH, err := w.Row(rh)
	require.NoError(t, err)
	require.Equal(t, kindHinge, rowH.kind)
	rowP, err := w.Row(rp)
	require.NoError(t, err)
	require.Equal(t, kindPlane, rowP.kind)
	require.Same(t, w, rowH.world, "rows should back-reference their owning world")
	require.Same(t, w, rowP.world, "rows should back-reference their owning world")
}

func TestAddHingeRejectsDegenerateAxis(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, ConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()
	_, err := w.AddHinge(h1, h2, lin.NewV3(), lin.NewQI(), -1, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddPlaneRejectsNonFiniteAnchor(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, ConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()
	badAnchor := lin.NewV3().SetS(math.NaN(), 0, 0)
	_, err := w.AddPlane(h1, h2, lin.NewV3().SetS(0, 1, 0), badAnchor, lin.NewV3(), -1, 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddSmallRejectsNegativeRestLength(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 2, SmallConstraintCount: 1})
	h1, _ := w.AddBody()
	h2, _ := w.AddBody()
	_, err := w.AddSmall(h1, h2, lin.NewV3(), lin.NewV3(), -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWorldDefaultGravity(t *testing.T) {
	w := NewWorld(WorldConfig{BodyCount: 1})
	want := lin.NewV3().SetS(0, -9.81, 0)
	require.True(t, w.Gravity.Aeq(want), "expected default gravity %v, got %v", want, w.Gravity)
}
