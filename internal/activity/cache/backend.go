package cache

import (
	"context"
	"errors"
)

var ErrTooManyConflicts = errors.New("cache slot update conflicted too many times")

// Backend is a durable single-slot store. Implementations must make Update atomic:
// no concurrent reader may observe a half-written slot, and no concurrent Update
// may be lost.
type Backend interface {
	// Load returns the raw slot content, or nil when the slot is empty.
	Load(ctx context.Context) ([]byte, error)
	// Update replaces the slot content with the result of fn.
	// fn gets nil for an empty slot, and returning nil empties the slot.
	Update(ctx context.Context, fn func(cur []byte) ([]byte, error)) error
	Close() error
}
