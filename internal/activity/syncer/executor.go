// Package syncer flushes the locally cached activity deltas into the remote
// per-day aggregate.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/activity/events"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/telemetry/metrics"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Result tells what a sync did; all of these are successful outcomes.
type Result string

const (
	ResultFlushed        Result = "flushed"
	ResultUserMismatch   Result = "user_mismatch"
	ResultNothingToFlush Result = "nothing_to_flush"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=syncer_test

type flushCache interface {
	BeginFlush(ctx context.Context, userID, day string, newID func() string) (cache.PendingFlush, error)
	Settle(ctx context.Context, pending cache.PendingFlush) error
	ClearIfEmpty(ctx context.Context, userID string) error
}

type flushStore interface {
	ApplyFlush(ctx context.Context, flush remote.Flush) (bool, error)
}

type Executor struct {
	cache     flushCache
	store     flushStore
	publisher events.Publisher
	metrics   *metrics.Manager
	newID     func() string
	now       activity.Clock
}

func NewExecutor(
	cache flushCache,
	store flushStore,
	publisher events.Publisher,
	metricsManager *metrics.Manager,
	clock activity.Clock,
) *Executor {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = activity.SystemClock
	}
	return &Executor{
		cache:     cache,
		store:     store,
		publisher: publisher,
		metrics:   metricsManager,
		newID:     uuid.NewString,
		now:       clock,
	}
}

// Sync pushes the cached deltas of userID into today's remote aggregate and then
// settles the cache. When the cache holds another user's data nothing is written.
// A failed sync leaves the cache untouched; the next call retries the same flush,
// which the remote store applies at most once.
func (e *Executor) Sync(ctx context.Context, userID string) (_ Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "syncer.activity.sync")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	start := time.Now()
	pending, err := e.cache.BeginFlush(ctx, userID, activity.Day(e.now()), e.newID)
	switch {
	case errors.Is(err, cache.ErrUserMismatch):
		log.Debugf("syncer: cache does not belong to %s, skipping", userID)
		return ResultUserMismatch, nil
	case errors.Is(err, cache.ErrNothingToFlush):
		if err := e.cache.ClearIfEmpty(ctx, userID); err != nil {
			return "", fmt.Errorf("clear empty cache: %w", err)
		}
		return ResultNothingToFlush, nil
	case err != nil:
		return "", fmt.Errorf("begin flush: %w", err)
	}
	span.SetAttributes(attribute.String("flush.id", pending.ID))

	applied, err := e.store.ApplyFlush(ctx, remote.Flush{
		ID:     pending.ID,
		UserID: userID,
		Day:    pending.Day,
		Totals: pending.Totals,
	})
	if err != nil {
		return "", fmt.Errorf("apply flush %s: %w", pending.ID, err)
	}

	if err := e.cache.Settle(ctx, pending); err != nil {
		return "", err
	}

	if e.metrics != nil {
		e.metrics.HistSyncDuration.Observe(time.Since(start).Seconds())
	}
	if !applied {
		log.Debugf("syncer: flush %s was already applied, cache settled", pending.ID)
		return ResultFlushed, nil
	}

	if e.metrics != nil {
		e.metrics.CounterFlushedSteps.Add(float64(pending.Totals.Steps))
	}
	log.Debugf("syncer: flushed %d steps of %s into %s", pending.Totals.Steps, userID, pending.Day)

	if err := e.publisher.PublishFlush(ctx, events.FlushEvent{
		FlushID:    pending.ID,
		UserID:     userID,
		Day:        pending.Day,
		Steps:      pending.Totals.Steps,
		DistanceKm: pending.Totals.DistanceKm,
		Calories:   pending.Totals.Calories,
		FlushedAt:  e.now(),
	}); err != nil {
		log.Errorf("syncer: publish flush event %s: %s", pending.ID, err)
	}

	return ResultFlushed, nil
}
