package physics

import (
	"github.com/gazed/vu/arena"
	"github.com/gazed/vu/math/lin"
	"github.com/gazed/vu/pool"
)

// WorldConfig fixes the capacity of every arena a World owns. Capacity is
// immutable once a World is constructed, per the arena contract that
// backing storage never grows.
type WorldConfig struct {
	BodyCount            int
	ContactCount         int
	ConstraintCount      int
	SmallConstraintCount int
}

// StepConfig selects the iteration counts, substep count and threading
// model a World's Step uses. It can be changed between calls to Step.
type StepConfig struct {
	SolverIterations        int // n_solver: Gauss-Seidel passes per substep.
	RelaxIterations         int // n_relax: relaxation passes per substep, no re-prepare.
	SubstepCount            int // k: step(dt) performs k substeps of size dt/k.
	EnableAuxiliaryContacts bool
	ThreadModel             pool.ThreadModel
	MultiThread             bool

	// WarmStartFactor scales the warm-start impulse applied in Prepare.
	// 1.0 reproduces the source behaviour; 0.0 disables warm-start
	// entirely, useful for isolating a single iteration's contribution
	// in a test.
	WarmStartFactor float64

	SleepLinearThreshold  float64
	SleepAngularThreshold float64
	SleepDuration         float64
}

// DefaultStepConfig returns the step configuration the source ships with:
// 8 solver passes, 2 relaxation passes, no substepping, single-threaded.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		SolverIterations:      8,
		RelaxIterations:       2,
		SubstepCount:          1,
		ThreadModel:           pool.Persistent,
		WarmStartFactor:       1.0,
		SleepLinearThreshold:  0.01,
		SleepAngularThreshold: 0.01,
		SleepDuration:         0.5,
	}
}

// World owns every body and constraint row arena and advances them with
// Step. Bodies and rows are addressed only through handles; a World never
// hands out raw pointers that outlive a single call.
//
// Grounded on the teacher's physics.go Physics struct, which likewise owns
// the body/contact/constraint backing arrays and a gravity vector, adapted
// from a single monolithic collision+solver object into the narrower
// integrate/prepare/iterate pipeline this package implements.
type World struct {
	bodies *arena.Arena[Body]
	rows   *arena.Arena[Row] // large constraint rows, hinge and plane variants mixed.
	smalls *arena.Arena[Row]

	pool *pool.Pool

	Gravity *lin.V3
}

const (
	bodyArenaID = iota + 1
	rowArenaID
	smallArenaID
)

// NewWorld returns a World with arenas sized per cfg and gravity set to
// (0, -9.81, 0).
func NewWorld(cfg WorldConfig) *World {
	return &World{
		bodies:  arena.New[Body](bodyArenaID, cfg.BodyCount),
		rows:    arena.New[Row](rowArenaID, cfg.ConstraintCount),
		smalls:  arena.New[Row](smallArenaID, cfg.SmallConstraintCount),
		pool:    pool.Default(),
		Gravity: lin.NewV3().SetS(0, -9.81, 0),
	}
}

// AddBody allocates a new inert body and returns its handle.
func (w *World) AddBody() (arena.Handle, error) {
	h, err := w.bodies.Alloc()
	if err != nil {
		return arena.Zero, err
	}
	nb := NewBody()
	b, _ := w.bodies.Get(h)
	*b = *nb
	return h, nil
}

// Body returns the record addressed by h.
func (w *World) Body(h arena.Handle) (*Body, error) { return w.bodies.Get(h) }

// RemoveBody frees h. Per the lifecycle rule, any row attached to h should
// be removed by the caller first; Removebody does not scan rows for
// dangling references.
func (w *World) RemoveBody(h arena.Handle) error { return w.bodies.Free(h) }

func (w *World) body(h arena.Handle) *Body {
	b, _ := w.bodies.Get(h)
	return b
}

// AddHinge allocates a hinge-angle row between body1 and body2 and returns
// its handle. axis is the hinge axis in body 2's reference frame at
// construction time; q0 is the relative reference orientation. minAngle
// and maxAngle are stored as sin(angle/2) per the payload contract.
func (w *World) AddHinge(body1, body2 arena.Handle, axis *lin.V3, q0 *lin.Q, minAngle, maxAngle float64) (arena.Handle, error) {
	if !nonDegenerateAxis(axis) || !finiteQ(q0) || !finite(minAngle) || !finite(maxAngle) {
		return arena.Zero, ErrInvalidArgument
	}
	h, err := w.rows.Alloc()
	if err != nil {
		return arena.Zero, err
	}
	r, _ := w.rows.Get(h)
	initHingeRow(r, w, body1, body2, axis, q0, minAngle, maxAngle)
	return h, nil
}

// AddPlane allocates a point-on-plane row between body1 and body2 and
// returns its handle. axis and the anchors are given in body 1's and body
// 2's local frames respectively, per the payload contract.
func (w *World) AddPlane(body1, body2 arena.Handle, axis *lin.V3, anchor1, anchor2 *lin.V3, min, max float64) (arena.Handle, error) {
	if !nonDegenerateAxis(axis) || !finiteV3(anchor1) || !finiteV3(anchor2) || !finite(min) || !finite(max) {
		return arena.Zero, ErrInvalidArgument
	}
	h, err := w.rows.Alloc()
	if err != nil {
		return arena.Zero, err
	}
	r, _ := w.rows.Get(h)
	initPlaneRow(r, w, body1, body2, axis, anchor1, anchor2, min, max)
	return h, nil
}

// Row returns the large constraint row addressed by h, hinge or plane
// variant, for read access to its payload (e.g. AccumulatedImpulse for
// inspection). The row must only be mutated by Step.
func (w *World) Row(h arena.Handle) (*Row, error) { return w.rows.Get(h) }

// RemoveRow frees h.
func (w *World) RemoveRow(h arena.Handle) error { return w.rows.Free(h) }

// AddSmall allocates a small distance-constraint row between body1 and
// body2, holding the anchors at restLength apart, and returns its handle.
// Small rows live in their own arena with its own capacity, per the
// small-constraint-row contract.
func (w *World) AddSmall(body1, body2 arena.Handle, anchor1, anchor2 *lin.V3, restLength float64) (arena.Handle, error) {
	if !finiteV3(anchor1) || !finiteV3(anchor2) || !finite(restLength) || restLength < 0 {
		return arena.Zero, ErrInvalidArgument
	}
	h, err := w.smalls.Alloc()
	if err != nil {
		return arena.Zero, err
	}
	r, _ := w.smalls.Get(h)
	initSmallRow(r, w, body1, body2, anchor1, anchor2, restLength)
	return h, nil
}

// Small returns the small row addressed by h.
func (w *World) Small(h arena.Handle) (*Row, error) { return w.smalls.Get(h) }

// RemoveSmall frees h.
func (w *World) RemoveSmall(h arena.Handle) error { return w.smalls.Free(h) }
