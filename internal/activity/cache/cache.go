// Package cache holds the on-device Local Activity Cache: a single slot with the
// activity deltas that were recorded locally but not yet flushed to the remote store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserMismatch   = errors.New("cached activity belongs to another user")
	ErrNothingToFlush = errors.New("no cached activity to flush")
	ErrInvalidDelta   = errors.New("steps delta must not be negative")
	errKeepSlotAsIs   = errors.New("keep slot")
	errEmptyUserID    = errors.New("user id is empty")
)

type Cache struct {
	backend Backend
	now     activity.Clock
}

func New(backend Backend, clock activity.Clock) *Cache {
	if clock == nil {
		clock = activity.SystemClock
	}
	return &Cache{
		backend: backend,
		now:     clock,
	}
}

// Read returns the persisted record, or the zero default (no user, IsNewUser) when
// there is none. A corrupt record is treated as absent. Only backend failures
// are returned as errors.
func (c *Cache) Read(ctx context.Context) (_ Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.read")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	data, err := c.backend.Load(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load cache slot: %w", err)
	}

	rec, ok := c.decode(data)
	if !ok {
		return emptyRecord(c.now()), nil
	}
	span.SetAttributes(attribute.String("user", rec.UserID))
	return rec, nil
}

// Write merges the patch into the stored record, stamps it with the current time
// and marks it as holding real data.
func (c *Cache) Write(ctx context.Context, patch Patch) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.write")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	err = c.update(ctx, func(cur *Record) (*Record, error) {
		next := emptyRecord(c.now())
		if cur != nil {
			next = *cur
		}
		if patch.Steps != nil {
			next.Steps = *patch.Steps
		}
		if patch.DistanceKm != nil {
			next.DistanceKm = *patch.DistanceKm
		}
		if patch.Calories != nil {
			next.Calories = *patch.Calories
		}
		if patch.UserID != nil {
			next.UserID = *patch.UserID
		}
		next.Timestamp = c.now()
		next.IsNewUser = false
		next.Version++
		return &next, nil
	})
	if err != nil {
		return fmt.Errorf("write cache slot: %w", err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := c.backend.Update(ctx, func([]byte) ([]byte, error) {
		return nil, nil
	}); err != nil {
		return fmt.Errorf("clear cache slot: %w", err)
	}
	return nil
}

// Initialize resets the slot to zeros tagged with the given user.
func (c *Cache) Initialize(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.initialize")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	if userID == "" {
		return errEmptyUserID
	}

	err = c.update(ctx, func(cur *Record) (*Record, error) {
		next := emptyRecord(c.now())
		next.UserID = userID
		if cur != nil {
			next.Version = cur.Version + 1
		}
		return &next, nil
	})
	if err != nil {
		return fmt.Errorf("initialize cache slot: %w", err)
	}
	return nil
}

// AddSteps adds a steps delta for the given user in one atomic read-modify-write.
// Distance and calories are derived from the accumulated steps. A record of
// another user is discarded and replaced, never merged.
func (c *Cache) AddSteps(ctx context.Context, userID string, delta int64) (_ Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.addSteps")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.Int64("delta", delta),
	)

	if userID == "" {
		return Record{}, errEmptyUserID
	}
	if delta < 0 {
		return Record{}, ErrInvalidDelta
	}

	var stored Record
	err = c.update(ctx, func(cur *Record) (*Record, error) {
		next := emptyRecord(c.now())
		next.UserID = userID
		switch {
		case cur == nil:
		case cur.BelongsTo(userID):
			next = *cur
		default:
			log.Warnf("cache: discarding activity of user %s, recording for %s", cur.UserID, userID)
			next.Version = cur.Version
		}

		next.Totals = activity.FromSteps(next.Steps + delta)
		next.Timestamp = c.now()
		next.IsNewUser = false
		next.Version++
		stored = next
		return &next, nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("add steps to cache slot: %w", err)
	}
	return stored, nil
}

// BeginFlush stamps the record of userID with a pending flush marker holding all
// of its current deltas. An existing marker is returned as is, so a retried flush
// keeps its ID.
func (c *Cache) BeginFlush(ctx context.Context, userID, day string, newID func() string) (_ PendingFlush, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.beginFlush")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	var pending PendingFlush
	err = c.update(ctx, func(cur *Record) (*Record, error) {
		if cur == nil || !cur.BelongsTo(userID) {
			return nil, ErrUserMismatch
		}
		if cur.Pending != nil {
			pending = *cur.Pending
			return nil, errKeepSlotAsIs
		}
		if cur.Totals.IsZero() {
			return nil, ErrNothingToFlush
		}

		next := *cur
		next.Version++
		pending = PendingFlush{
			ID:          newID(),
			UserID:      userID,
			Day:         day,
			Totals:      cur.Totals,
			BaseVersion: next.Version,
			StartedAt:   c.now(),
		}
		next.Pending = &pending
		return &next, nil
	})
	if err != nil {
		return PendingFlush{}, err
	}

	span.SetAttributes(attribute.String("flush.id", pending.ID))
	return pending, nil
}

// Settle finishes a flush that the remote store applied. When nothing was recorded
// since the flush began, the record is removed; otherwise exactly the flushed
// deltas are subtracted and later ones are kept.
func (c *Cache) Settle(ctx context.Context, pending PendingFlush) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.settle")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("flush.id", pending.ID))

	err = c.update(ctx, func(cur *Record) (*Record, error) {
		if cur == nil || cur.Pending == nil || cur.Pending.ID != pending.ID {
			// already settled, or the slot was reinitialized meanwhile
			return nil, errKeepSlotAsIs
		}
		if cur.Version == pending.BaseVersion {
			return nil, nil
		}

		next := *cur
		next.Totals = cur.Totals.Sub(pending.Totals)
		next.Pending = nil
		next.Version++
		return &next, nil
	})
	if err != nil {
		return fmt.Errorf("settle flush %s: %w", pending.ID, err)
	}
	return nil
}

// ClearIfEmpty removes the record of userID if it holds no deltas and no pending flush.
func (c *Cache) ClearIfEmpty(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.activity.clearIfEmpty")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	return c.update(ctx, func(cur *Record) (*Record, error) {
		if cur == nil {
			return nil, nil
		}
		if !cur.BelongsTo(userID) || cur.Pending != nil || !cur.Totals.IsZero() {
			return nil, errKeepSlotAsIs
		}
		return nil, nil
	})
}

// update runs fn over the decoded slot. fn returning errKeepSlotAsIs leaves the
// slot untouched and is not reported as an error.
func (c *Cache) update(ctx context.Context, fn func(cur *Record) (*Record, error)) error {
	err := c.backend.Update(ctx, func(data []byte) ([]byte, error) {
		var cur *Record
		if rec, ok := c.decode(data); ok {
			cur = &rec
		}

		next, err := fn(cur)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		return json.Marshal(next)
	})
	if errors.Is(err, errKeepSlotAsIs) {
		return nil
	}
	return err
}

func (c *Cache) decode(data []byte) (Record, bool) {
	if data == nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Errorf("cache: corrupt activity record, treating as absent: %s", err)
		return Record{}, false
	}
	return rec, true
}
