// Package arena provides fixed-capacity typed slot pools addressed by
// stable handles, used for body records and constraint rows.
package arena

import "errors"

// ErrCapacityExceeded is returned by Alloc when an arena has no free slots.
var ErrCapacityExceeded = errors.New("arena: capacity exceeded")

// ErrStaleHandle is returned by Get/Free when a handle refers to a slot
// that has since been freed or reused.
var ErrStaleHandle = errors.New("arena: stale handle")
