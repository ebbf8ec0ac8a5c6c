package physics

import (
	"errors"
	"math"

	"github.com/gazed/vu/math/lin"
)

// ErrInvalidArgument is returned for non-finite inputs to row construction,
// a non-unit axis where a unit axis is required, dt <= 0, or a substep
// count below 1. The arena's own CapacityExceeded and StaleHandle kinds
// surface unwrapped from arena.Arena methods; this package only adds the
// argument-validation kind the data model's error design calls for.
var ErrInvalidArgument = errors.New("physics: invalid argument")

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func finiteV3(v *lin.V3) bool { return finite(v.X) && finite(v.Y) && finite(v.Z) }

func finiteQ(q *lin.Q) bool { return finite(q.X) && finite(q.Y) && finite(q.Z) && finite(q.W) }

// nonDegenerateAxis reports whether v is finite and long enough to
// normalise into a unit axis without blowing up.
func nonDegenerateAxis(v *lin.V3) bool { return finiteV3(v) && v.Len() > 1e-9 }
