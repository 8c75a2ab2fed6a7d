// Package remote holds the per-user, per-day activity aggregates that the
// agent flushes cached deltas into.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fitsync/internal/activity"
)

var ErrNotFound = errors.New("activity aggregate not found")

// Aggregate is the remote per-day activity document of a user.
type Aggregate struct {
	UserID string `json:"userId"`
	Day    string `json:"day"`
	activity.Totals
	LastUpdated time.Time `json:"lastUpdated"`
}

// Flush is a batch of cached deltas, identified by a unique ID so applying it
// more than once has no further effect.
type Flush struct {
	ID     string
	UserID string
	Day    string
	Totals activity.Totals
}

type Store interface {
	// Get returns ErrNotFound when the user has no aggregate for the day.
	Get(ctx context.Context, userID, day string) (*Aggregate, error)
	// ApplyFlush increments the day aggregate by the flushed deltas, creating it
	// when absent. It returns false if the flush was applied before.
	ApplyFlush(ctx context.Context, flush Flush) (bool, error)
	HasFlush(ctx context.Context, flushID string) (bool, error)
	// EnsureDay creates an all-zero aggregate for the day if there is none.
	EnsureDay(ctx context.Context, userID, day string) error
	// List returns the existing aggregates between the two days, both inclusive,
	// ordered by day.
	List(ctx context.Context, userID, fromDay, toDay string) ([]Aggregate, error)
}
