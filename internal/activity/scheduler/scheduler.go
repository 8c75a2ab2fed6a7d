// Package scheduler decides when the cached activity deltas are flushed to the
// remote store: periodically, on login, on logout and on explicit request.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/activity/syncer"
	"github.com/2beens/fitsync/internal/telemetry/metrics"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultCacheTTL     = 24 * time.Hour
	DefaultSyncInterval = 30 * time.Second

	// a reused pending flush leaves at most one remainder behind
	maxLogoutFlushes = 3
)

// Sync triggers, used as metric labels.
const (
	TriggerPeriodic = "periodic"
	TriggerLogin    = "login"
	TriggerLogout   = "logout"
	TriggerCheck    = "check"
)

var ErrFlushInFlight = errors.New("another flush is in progress")

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=scheduler_test

type activityCache interface {
	Read(ctx context.Context) (cache.Record, error)
	Initialize(ctx context.Context, userID string) error
	ClearIfEmpty(ctx context.Context, userID string) error
}

type executor interface {
	Sync(ctx context.Context, userID string) (syncer.Result, error)
}

type dayStore interface {
	EnsureDay(ctx context.Context, userID, day string) error
}

type Params struct {
	Cache    activityCache
	Executor executor
	Store    dayStore
	Metrics  *metrics.Manager
	CacheTTL time.Duration
	Interval time.Duration
	Clock    activity.Clock
}

type Scheduler struct {
	cache    activityCache
	executor executor
	store    dayStore
	metrics  *metrics.Manager
	ttl      time.Duration
	interval time.Duration
	now      activity.Clock

	// held while a flush runs
	flushMutex sync.Mutex

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(params Params) *Scheduler {
	s := &Scheduler{
		cache:    params.Cache,
		executor: params.Executor,
		store:    params.Store,
		metrics:  params.Metrics,
		ttl:      params.CacheTTL,
		interval: params.Interval,
		now:      params.Clock,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	if s.interval <= 0 {
		s.interval = DefaultSyncInterval
	}
	if s.now == nil {
		s.now = activity.SystemClock
	}
	return s
}

// IsStale tells whether the record should be flushed: it is older than ttl,
// belongs to the active user and holds steps.
func IsStale(rec cache.Record, activeUserID string, now time.Time, ttl time.Duration) bool {
	return now.Sub(rec.Timestamp) > ttl &&
		rec.BelongsTo(activeUserID) &&
		rec.Steps > 0
}

// CheckAndSync flushes the cache of userID if it is stale, and tells whether it did.
func (s *Scheduler) CheckAndSync(ctx context.Context, userID string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "scheduler.activity.checkAndSync")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	stale, err := s.isStale(ctx, userID)
	if err != nil || !stale {
		return false, err
	}

	if _, err := s.flush(ctx, userID, TriggerCheck); err != nil {
		return false, err
	}
	return true, nil
}

// OnLogin prepares the cache for the user: another user's cache is discarded and
// reinitialized, an expired cache of the same user is flushed. A failed flush is
// only logged, the periodic task retries it.
func (s *Scheduler) OnLogin(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "scheduler.activity.onLogin")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	rec, err := s.cache.Read(ctx)
	if err != nil {
		log.Errorf("scheduler: read cache on login of %s, reinitializing: %s", userID, err)
		return s.reinitialize(ctx, userID)
	}

	if !rec.BelongsTo(userID) {
		if rec.UserID != "" {
			log.Infof("scheduler: cache of user %s found on login of %s, reinitializing", rec.UserID, userID)
		}
		return s.reinitialize(ctx, userID)
	}

	if s.now().Sub(rec.Timestamp) > s.ttl {
		if _, err := s.flush(ctx, userID, TriggerLogin); err != nil {
			log.Errorf("scheduler: flush expired cache on login of %s: %s", userID, err)
		}
	}
	return nil
}

// OnLogout stops the periodic task and flushes whatever the user has cached, then
// clears the cache. A flush already running is waited for. Deltas left over by a
// retried flush are flushed too, and the cache is only removed once it holds none.
// When a flush fails the cache is kept and the error returned.
func (s *Scheduler) OnLogout(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "scheduler.activity.onLogout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	s.Stop()

	s.flushMutex.Lock()
	defer s.flushMutex.Unlock()

	for i := 1; ; i++ {
		res, err := s.sync(ctx, userID, TriggerLogout)
		if err != nil {
			return fmt.Errorf("flush on logout: %w", err)
		}
		if res != syncer.ResultFlushed {
			break
		}

		rec, err := s.cache.Read(ctx)
		if err != nil {
			return fmt.Errorf("read cache after logout flush: %w", err)
		}
		if !rec.BelongsTo(userID) || (rec.Totals.IsZero() && rec.Pending == nil) {
			break
		}
		if i == maxLogoutFlushes {
			log.Warnf("scheduler: %s still has cached deltas after %d logout flushes, keeping them", userID, i)
			break
		}
		log.Debugf("scheduler: flushing %d remaining steps of %s", rec.Steps, userID)
	}

	if err := s.cache.ClearIfEmpty(ctx, userID); err != nil {
		return fmt.Errorf("clear cache on logout: %w", err)
	}
	return nil
}

// Start runs the periodic staleness check for userID until Stop is called.
// Calling Start while it is running is a no-op.
func (s *Scheduler) Start(userID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, userID, s.done)
	log.Debugf("scheduler: periodic sync started for %s, every %s", userID, s.interval)
}

// Stop cancels the periodic task and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debugln("scheduler: periodic sync stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) Status() string {
	if s.IsRunning() {
		return "running"
	}
	return "stopped"
}

func (s *Scheduler) run(ctx context.Context, userID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, userID)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, userID string) {
	stale, err := s.isStale(ctx, userID)
	if err != nil {
		log.Errorf("scheduler: periodic check for %s: %s", userID, err)
		return
	}
	if !stale {
		return
	}

	// flushes are not interrupted by Stop, they either complete or fail as a whole
	if _, err := s.flush(context.WithoutCancel(ctx), userID, TriggerPeriodic); err != nil && !errors.Is(err, ErrFlushInFlight) {
		log.Errorf("scheduler: periodic flush for %s: %s", userID, err)
	}
}

func (s *Scheduler) isStale(ctx context.Context, userID string) (bool, error) {
	rec, err := s.cache.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("read cache: %w", err)
	}
	return IsStale(rec, userID, s.now(), s.ttl), nil
}

// flush runs one sync, unless another one is already running in this process.
func (s *Scheduler) flush(ctx context.Context, userID, trigger string) (syncer.Result, error) {
	if !s.flushMutex.TryLock() {
		s.metrics.ObserveSync(trigger, metrics.SyncResultSkipped)
		return "", ErrFlushInFlight
	}
	defer s.flushMutex.Unlock()

	return s.sync(ctx, userID, trigger)
}

// sync runs one sync; the caller holds flushMutex.
func (s *Scheduler) sync(ctx context.Context, userID, trigger string) (syncer.Result, error) {
	res, err := s.executor.Sync(ctx, userID)
	switch {
	case err != nil:
		s.metrics.ObserveSync(trigger, metrics.SyncResultFailed)
	case res == syncer.ResultUserMismatch:
		s.metrics.ObserveSync(trigger, metrics.SyncResultMismatch)
	case res == syncer.ResultNothingToFlush:
		s.metrics.ObserveSync(trigger, metrics.SyncResultEmpty)
	default:
		s.metrics.ObserveSync(trigger, metrics.SyncResultOK)
	}
	return res, err
}

func (s *Scheduler) reinitialize(ctx context.Context, userID string) error {
	if err := s.cache.Initialize(ctx, userID); err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CounterCacheReinits.Inc()
	}

	if s.store != nil {
		if err := s.store.EnsureDay(ctx, userID, activity.Day(s.now())); err != nil {
			log.Errorf("scheduler: ensure remote day for %s: %s", userID, err)
		}
	}
	return nil
}
