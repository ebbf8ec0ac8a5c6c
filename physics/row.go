package physics

import "github.com/gazed/vu/arena"

// rowKind tags which variant payload a Row carries, so the arena and the
// step pipeline can validate a cast without a type switch on an interface.
type rowKind uint32

const (
	kindHinge rowKind = iota + 1
	kindPlane
	kindSmall
)

// Row is the common header shared by every constraint row variant: two
// function pointers set once at construction (prepare, iterate) plus the
// two body handles the row acts on. This is open-coded polymorphism —
// dispatch through fixed function fields rather than an interface vtable
// — so the solver's inner loop only ever walks contiguous native memory.
//
// Grounded on the teacher's solverConstraint in solver.go, which carries
// every constraint variant's fields directly in one fixed-layout struct
// rather than behind an interface.
type Row struct {
	kind  rowKind
	world *World
	Body1 arena.Handle
	Body2 arena.Handle

	prepare func(r *Row, invDt float64)
	iterate func(r *Row, invDt float64)

	Hinge HingeRow
	Plane PlaneRow
	Small SmallRow
}

// Prepare runs the row's warm-start/jacobian-build step for this step's
// timestep. Safe to call even on a row whose variant has no work to do
// there.
func (r *Row) Prepare(invDt float64) {
	if r.prepare != nil {
		r.prepare(r, invDt)
	}
}

// Iterate runs one Gauss-Seidel velocity-correction pass for the row.
func (r *Row) Iterate(invDt float64) {
	if r.iterate != nil {
		r.iterate(r, invDt)
	}
}
