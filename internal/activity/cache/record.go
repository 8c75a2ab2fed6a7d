package cache

import (
	"time"

	"github.com/2beens/fitsync/internal/activity"
)

// Record is the single, user-tagged slot of not yet flushed activity deltas.
type Record struct {
	activity.Totals
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId"`
	IsNewUser bool      `json:"isNewUser"`
	// Version is bumped on every mutation of the slot.
	Version int64 `json:"version"`
	// Pending is set while a flush of (part of) the deltas is in progress.
	Pending *PendingFlush `json:"pending,omitempty"`
}

// PendingFlush marks deltas handed to the remote store but not yet settled locally.
// A retry reuses the same ID, so the remote store can apply it at most once.
type PendingFlush struct {
	ID     string          `json:"id"`
	UserID string          `json:"userId"`
	Day    string          `json:"day"`
	Totals activity.Totals `json:"totals"`
	// BaseVersion is the record version right after the flush began.
	BaseVersion int64     `json:"baseVersion"`
	StartedAt   time.Time `json:"startedAt"`
}

// Patch is a partial record update; nil fields are left as they are.
type Patch struct {
	Steps      *int64
	DistanceKm *float64
	Calories   *int64
	UserID     *string
}

// BelongsTo tells whether the record holds deltas of the given user.
func (r Record) BelongsTo(userID string) bool {
	return userID != "" && r.UserID == userID
}

func emptyRecord(now time.Time) Record {
	return Record{
		Timestamp: now,
		IsNewUser: true,
	}
}
