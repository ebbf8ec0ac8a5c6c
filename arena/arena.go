package arena

// Arena is a fixed-capacity typed slot pool. Active records are kept
// packed in a dense prefix for cache-dense iteration; each record is
// additionally addressed by a Handle whose slot id is stable across
// Free calls on other slots (the indirection table below remaps a slot
// id to its current dense index whenever a swap-on-free moves a record).
type Arena[T any] struct {
	id uint32

	dense     []T      // active records, packed [0:count).
	denseSlot []uint32 // dense index -> owning slot id.
	slotDense []uint32 // slot id -> dense index, valid only while the slot is active.
	slotGen   []uint32 // slot id -> current generation.
	free      []uint32 // slot ids available for Alloc.
}

// New creates an arena with the given id and fixed capacity. The id is
// stamped into every handle this arena issues so callers can catch
// handles crossing between arenas.
func New[T any](id uint32, capacity int) *Arena[T] {
	free := make([]uint32, capacity)
	for i := range free {
		free[i] = uint32(capacity - 1 - i) // slot 0 popped first.
	}
	return &Arena[T]{
		id:        id,
		dense:     make([]T, 0, capacity),
		denseSlot: make([]uint32, 0, capacity),
		slotDense: make([]uint32, capacity),
		slotGen:   make([]uint32, capacity),
		free:      free,
	}
}

// Len returns the number of active records.
func (a *Arena[T]) Len() int { return len(a.dense) }

// Cap returns the fixed capacity of the arena.
func (a *Arena[T]) Cap() int { return cap(a.dense) }

// Alloc reserves a zero-valued slot and returns a handle to it.
func (a *Arena[T]) Alloc() (Handle, error) {
	if len(a.free) == 0 {
		return Zero, ErrCapacityExceeded
	}
	n := len(a.free) - 1
	slot := a.free[n]
	a.free = a.free[:n]

	var zero T
	a.dense = append(a.dense, zero)
	idx := uint32(len(a.dense) - 1)
	a.denseSlot = append(a.denseSlot, slot)
	a.slotDense[slot] = idx

	return Handle{Arena: a.id, Slot: slot, Gen: a.slotGen[slot]}, nil
}

// valid reports whether h currently addresses a live record in this arena.
func (a *Arena[T]) valid(h Handle) bool {
	return h.Arena == a.id && int(h.Slot) < len(a.slotGen) && a.slotGen[h.Slot] == h.Gen
}

// Get returns a mutable pointer to the record addressed by h.
func (a *Arena[T]) Get(h Handle) (*T, error) {
	if !a.valid(h) {
		return nil, ErrStaleHandle
	}
	return &a.dense[a.slotDense[h.Slot]], nil
}

// Free releases the slot addressed by h. The last active record is moved
// into the vacated dense slot (swap-on-free); any handle still pointing
// at the moved record keeps working because its slot id, not its dense
// index, is what the handle carries.
func (a *Arena[T]) Free(h Handle) error {
	if !a.valid(h) {
		return ErrStaleHandle
	}
	idx := a.slotDense[h.Slot]
	last := uint32(len(a.dense) - 1)
	if idx != last {
		movedSlot := a.denseSlot[last]
		a.dense[idx] = a.dense[last]
		a.denseSlot[idx] = movedSlot
		a.slotDense[movedSlot] = idx
	}
	var zero T
	a.dense[last] = zero
	a.dense = a.dense[:last]
	a.denseSlot = a.denseSlot[:last]

	a.slotGen[h.Slot]++
	a.free = append(a.free, h.Slot)
	return nil
}

// Active returns the packed slice of active records, in an order that
// may change across Alloc/Free calls. The returned slice aliases the
// arena's backing storage; mutate elements in place rather than copying.
func (a *Arena[T]) Active() []T { return a.dense }
