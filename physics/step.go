package physics

// Step advances the world by dt, honouring cfg's substep count, solver
// and relaxation iteration counts, and threading model.
//
// Grounded on the step loop shape of the teacher's pbd.go (integrate,
// prepare, solve, integrate positions, relax), generalised from that
// file's fixed single-threaded loop to the substep/thread-partition
// pipeline this package's data model calls for.
func (w *World) Step(cfg StepConfig, dt float64) error {
	if dt <= 0 {
		return ErrInvalidArgument
	}
	if cfg.SubstepCount < 1 {
		return ErrInvalidArgument
	}

	sdt := dt / float64(cfg.SubstepCount)
	invSdt := 1 / sdt

	for s := 0; s < cfg.SubstepCount; s++ {
		w.integrateVelocities(sdt)
		w.prepareRows(invSdt, cfg.WarmStartFactor)

		colors := w.colorPartition(cfg.MultiThread)

		for i := 0; i < cfg.SolverIterations; i++ {
			w.runPass(colors, invSdt)
		}

		w.integratePositions(sdt)

		for i := 0; i < cfg.RelaxIterations; i++ {
			w.runPass(colors, invSdt)
		}

		w.updateSleepState(sdt, cfg)
	}
	return nil
}

func (w *World) integrateVelocities(sdt float64) {
	bodies := w.bodies.Active()
	for i := range bodies {
		b := &bodies[i]
		if !b.Active {
			continue
		}
		b.IntegrateVelocities(sdt, w.Gravity)
	}
}

func (w *World) integratePositions(sdt float64) {
	bodies := w.bodies.Active()
	for i := range bodies {
		b := &bodies[i]
		if !b.Active {
			continue
		}
		b.IntegratePosition(sdt)
		b.RecomputeWorldInertia()
		b.ClearForces()
	}
}

// prepareRows runs every active row's prepare step. warmStart scales the
// accumulated impulse the prepare step warm-starts with; 1.0 reproduces
// full warm-start, 0.0 disables it (useful for isolating one solver pass
// in a test).
func (w *World) prepareRows(invDt, warmStart float64) {
	rows := w.rows.Active()
	smalls := w.smalls.Active()
	if warmStart != 1.0 {
		scaleWarmStart(rows, warmStart)
		scaleWarmStart(smalls, warmStart)
	}
	for i := range rows {
		rows[i].Prepare(invDt)
	}
	for i := range smalls {
		smalls[i].Prepare(invDt)
	}
}

func scaleWarmStart(rows []Row, factor float64) {
	for i := range rows {
		switch rows[i].kind {
		case kindHinge:
			rows[i].Hinge.AccumulatedImpulse.Scale(rows[i].Hinge.AccumulatedImpulse, factor)
		case kindPlane:
			rows[i].Plane.AccumulatedImpulse *= factor
		case kindSmall:
			rows[i].Small.AccumulatedImpulse *= factor
		}
	}
}

// runPass runs one iterate pass over every active row. With a non-nil
// color partition it dispatches each color class through the world's
// pool, processing classes one after another; color classes are built so
// no two rows in the same class share a body, so the rows within a class
// are safe to run concurrently.
func (w *World) runPass(colors [][]*Row, invDt float64) {
	if colors == nil {
		rows := w.rows.Active()
		smalls := w.smalls.Active()
		for i := range rows {
			rows[i].Iterate(invDt)
		}
		for i := range smalls {
			smalls[i].Iterate(invDt)
		}
		return
	}
	for _, class := range colors {
		for _, row := range class {
			row := row
			w.pool.AddTask(func() { row.Iterate(invDt) })
		}
		w.pool.Execute()
	}
}

const maxColors = 64

// colorPartition assigns every active row to a color class such that no
// two rows in the same class touch the same body, skipping static bodies
// since they never receive a velocity change and so never conflict. At
// most maxColors classes are made; rows that need more share the last one.
// Returns nil when multiThread is false, which tells runPass to take the
// serial path instead.
//
// Grounded on the worker-distribution idiom this package's pool package
// generalises; graph colouring itself is plain bookkeeping over body
// pointers, not attributable to any one teacher file.
func (w *World) colorPartition(multiThread bool) [][]*Row {
	if !multiThread {
		return nil
	}
	rows := w.rows.Active()
	smalls := w.smalls.Active()
	total := len(rows) + len(smalls)
	if total == 0 {
		return nil
	}

	used := make(map[*Body]uint64, total*2)
	classes := make([][]*Row, 0, 8)

	assign := func(r *Row) {
		b1 := w.body(r.Body1)
		b2 := w.body(r.Body2)
		var mask uint64
		if !b1.IsStatic() {
			mask |= used[b1]
		}
		if !b2.IsStatic() {
			mask |= used[b2]
		}
		c := 0
		for c < maxColors && mask&(1<<uint(c)) != 0 {
			c++
		}
		if c >= maxColors {
			c = maxColors - 1 // degrade to shared last color rather than panic.
		}
		if !b1.IsStatic() {
			used[b1] |= 1 << uint(c)
		}
		if !b2.IsStatic() {
			used[b2] |= 1 << uint(c)
		}
		for len(classes) <= c {
			classes = append(classes, nil)
		}
		classes[c] = append(classes[c], r)
	}

	for i := range rows {
		assign(&rows[i])
	}
	for i := range smalls {
		assign(&smalls[i])
	}
	return classes
}

// updateSleepState advances each body's sleep timer and deactivates
// bodies whose island has stayed below the velocity threshold for
// SleepDuration. Bodies are grouped into islands by shared constraint
// rows; an island sleeps only once every member has been quiet long
// enough, so one restless body keeps its whole island awake.
func (w *World) updateSleepState(sdt float64, cfg StepConfig) {
	if cfg.SleepDuration <= 0 {
		return
	}
	bodies := w.bodies.Active()
	quiet := make(map[*Body]bool, len(bodies))
	for i := range bodies {
		b := &bodies[i]
		if b.IsStatic() {
			continue
		}
		speed := b.Velocity.Len() + b.AngularVelocity.Len()
		if speed < cfg.SleepLinearThreshold+cfg.SleepAngularThreshold {
			b.SleepTime += sdt
		} else {
			b.SleepTime = 0
		}
		quiet[b] = b.SleepTime >= cfg.SleepDuration
	}

	island := newUnionFind()
	for i := range bodies {
		island.add(&bodies[i])
	}
	unite := func(r *Row) {
		b1, b2 := w.body(r.Body1), w.body(r.Body2)
		if !b1.IsStatic() && !b2.IsStatic() {
			island.union(b1, b2)
		}
	}
	rows := w.rows.Active()
	for i := range rows {
		unite(&rows[i])
	}
	smalls := w.smalls.Active()
	for i := range smalls {
		unite(&smalls[i])
	}

	islandQuiet := map[*Body]bool{}
	seen := map[*Body]bool{}
	for i := range bodies {
		b := &bodies[i]
		if b.IsStatic() {
			continue
		}
		root := island.find(b)
		if !seen[root] {
			islandQuiet[root] = true
			seen[root] = true
		}
		islandQuiet[root] = islandQuiet[root] && quiet[b]
	}
	for i := range bodies {
		b := &bodies[i]
		if b.IsStatic() {
			continue
		}
		if islandQuiet[island.find(b)] {
			b.Active = false
			b.Velocity.SetS(0, 0, 0)
			b.AngularVelocity.SetS(0, 0, 0)
		} else {
			b.Active = true
		}
	}
}

type unionFind struct {
	parent map[*Body]*Body
}

func newUnionFind() *unionFind { return &unionFind{parent: map[*Body]*Body{}} }

func (u *unionFind) add(b *Body) {
	if _, ok := u.parent[b]; !ok {
		u.parent[b] = b
	}
}

func (u *unionFind) find(b *Body) *Body {
	root := b
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[b] != root {
		u.parent[b], b = root, u.parent[b]
	}
	return root
}

func (u *unionFind) union(a, b *Body) {
	u.add(a)
	u.add(b)
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
