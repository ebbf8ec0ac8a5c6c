package arena

// Handle addresses a single record in a specific Arena. A handle stays
// valid across Free calls on unrelated slots; once its own slot is freed,
// the generation stored in the handle no longer matches the slot's
// current generation and every operation on it returns ErrStaleHandle.
type Handle struct {
	Arena uint32 // arena identifier, distinguishes handles from different arenas.
	Slot  uint32 // stable slot identity, independent of dense packing order.
	Gen   uint32 // generation at allocation time.
}

// Zero is the zero handle value. An arena with a non-zero id never returns
// it from Alloc.
var Zero = Handle{}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Zero }
