package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

var ErrNegativeReading = errors.New("cumulative steps must not be negative")

type stepsCache interface {
	AddSteps(ctx context.Context, userID string, delta int64) (cache.Record, error)
}

// Recorder derives step deltas from cumulative sensor readings and adds them
// to the local cache.
type Recorder struct {
	cache   stepsCache
	metrics *metrics.Manager

	mutex    sync.Mutex
	userID   string
	baseline int64
}

func NewRecorder(cache stepsCache, metricsManager *metrics.Manager) *Recorder {
	return &Recorder{
		cache:   cache,
		metrics: metricsManager,
	}
}

// Run records the readings of userID from sub until ctx is done or the
// subscription ends. Readings of other users are ignored. Readings already
// delivered to sub when ctx is done are still recorded.
func (r *Recorder) Run(ctx context.Context, userID string, sub *Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx), userID, sub)
			return
		case reading, ok := <-sub.Readings():
			if !ok {
				return
			}
			r.record(ctx, userID, reading)
		}
	}
}

// drain closes sub and records what is left in its buffer.
func (r *Recorder) drain(ctx context.Context, userID string, sub *Subscription) {
	sub.Close()
	for reading := range sub.Readings() {
		r.record(ctx, userID, reading)
	}
}

func (r *Recorder) record(ctx context.Context, userID string, reading Reading) {
	if reading.UserID != "" && reading.UserID != userID {
		log.Warnf("recorder: dropping reading of %s, session is %s", reading.UserID, userID)
		return
	}
	if _, err := r.OnReading(ctx, userID, reading.CumulativeSteps); err != nil {
		log.Errorf("recorder: record reading for %s: %s", userID, err)
	}
}

// OnReading records one cumulative count. The delta is the increase since the
// previous reading; a decrease means the sensor was reset, and the new count is
// itself the delta. It returns the delta written to the cache.
func (r *Recorder) OnReading(ctx context.Context, userID string, cumulative int64) (int64, error) {
	if cumulative < 0 {
		return 0, ErrNegativeReading
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.userID != userID {
		r.userID = userID
		r.baseline = 0
	}

	delta := cumulative - r.baseline
	if delta < 0 {
		log.Debugf("recorder: sensor reset detected for %s (%d -> %d)", userID, r.baseline, cumulative)
		if r.metrics != nil {
			r.metrics.CounterSensorResets.Inc()
		}
		delta = cumulative
	}
	if r.metrics != nil {
		r.metrics.CounterSensorReadings.Inc()
	}
	if delta == 0 {
		return 0, nil
	}

	// baseline moves only once the delta is stored, so a failed write is retried
	// as part of the next reading's delta
	if _, err := r.cache.AddSteps(ctx, userID, delta); err != nil {
		return 0, fmt.Errorf("add %d steps: %w", delta, err)
	}
	r.baseline = cumulative
	return delta, nil
}

// Reset forgets the baseline, e.g. when the session ends.
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.userID = ""
	r.baseline = 0
}
