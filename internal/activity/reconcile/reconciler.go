// Package reconcile merges the remote per-day aggregate with the not yet
// flushed local deltas into the snapshot shown to the user.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=reconcile_test

type activityCache interface {
	Read(ctx context.Context) (cache.Record, error)
}

type aggregateStore interface {
	Get(ctx context.Context, userID, day string) (*remote.Aggregate, error)
	HasFlush(ctx context.Context, flushID string) (bool, error)
}

type Reconciler struct {
	cache activityCache
	store aggregateStore
	now   activity.Clock
}

func NewReconciler(cache activityCache, store aggregateStore, clock activity.Clock) *Reconciler {
	if clock == nil {
		clock = activity.SystemClock
	}
	return &Reconciler{
		cache: cache,
		store: store,
		now:   clock,
	}
}

// LoadActivityData returns today's snapshot for userID: the remote aggregate plus
// the cached deltas, when the cache holds real data of that same user. It never
// fails; on any read error the "no data available" snapshot is returned.
func (r *Reconciler) LoadActivityData(ctx context.Context, userID string) activity.Snapshot {
	var err error
	ctx, span := tracing.GlobalTracer.Start(ctx, "reconciler.activity.load")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	now := r.now()
	snapshot, err := r.load(ctx, userID, now)
	if err != nil {
		log.Errorf("reconciler: load activity data for %s: %s", userID, err)
		return activity.Snapshot{
			AsOf:      now,
			IsNewUser: true,
		}
	}
	return snapshot
}

func (r *Reconciler) load(ctx context.Context, userID string, now time.Time) (activity.Snapshot, error) {
	day := activity.Day(now)

	var remoteTotals activity.Totals
	agg, err := r.store.Get(ctx, userID, day)
	switch {
	case errors.Is(err, remote.ErrNotFound):
	case err != nil:
		return activity.Snapshot{}, fmt.Errorf("get remote aggregate: %w", err)
	default:
		remoteTotals = agg.Totals
	}

	rec, err := r.cache.Read(ctx)
	if err != nil {
		return activity.Snapshot{}, fmt.Errorf("read cache: %w", err)
	}

	total := remoteTotals
	if rec.BelongsTo(userID) && !rec.IsNewUser {
		local, err := r.unflushed(ctx, rec)
		if err != nil {
			return activity.Snapshot{}, err
		}
		total = total.Add(local)
	}

	return activity.Snapshot{
		Steps:      total.Steps,
		DistanceKm: total.DistanceKm,
		Calories:   total.Calories,
		AsOf:       now,
	}, nil
}

// unflushed returns the cached deltas not yet part of the remote aggregate.
func (r *Reconciler) unflushed(ctx context.Context, rec cache.Record) (activity.Totals, error) {
	if rec.Pending == nil {
		return rec.Totals, nil
	}
	applied, err := r.store.HasFlush(ctx, rec.Pending.ID)
	if err != nil {
		return activity.Totals{}, fmt.Errorf("check pending flush: %w", err)
	}
	if applied {
		return rec.Totals.Sub(rec.Pending.Totals), nil
	}
	return rec.Totals, nil
}
