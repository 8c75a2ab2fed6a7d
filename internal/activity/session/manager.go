// Package session wires the login/logout lifecycle of the device's user to the
// sync scheduler and the sensor recorder.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/fitsync/internal/activity/sensor"
	"github.com/2beens/fitsync/internal/telemetry/metrics"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoActiveSession = errors.New("no active session for user")
	ErrSessionActive   = errors.New("another user session is active")
)

type lifecycleScheduler interface {
	OnLogin(ctx context.Context, userID string) error
	OnLogout(ctx context.Context, userID string) error
	Start(userID string)
	Stop()
}

type readingsRecorder interface {
	Run(ctx context.Context, userID string, sub *sensor.Subscription)
	Reset()
}

// Manager tracks the single active session on the device. The periodic sync and
// the sensor subscription live exactly as long as the session.
type Manager struct {
	scheduler lifecycleScheduler
	recorder  readingsRecorder
	feed      sensor.Feed
	metrics   *metrics.Manager

	mutex        sync.Mutex
	activeUserID string
	stopRecorder context.CancelFunc
	recorderDone chan struct{}
}

func NewManager(
	scheduler lifecycleScheduler,
	recorder readingsRecorder,
	feed sensor.Feed,
	metricsManager *metrics.Manager,
) *Manager {
	return &Manager{
		scheduler: scheduler,
		recorder:  recorder,
		feed:      feed,
		metrics:   metricsManager,
	}
}

// Login starts the session of userID. Logging in again with the same user is a no-op.
func (m *Manager) Login(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.login")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch m.activeUserID {
	case "":
	case userID:
		return nil
	default:
		return ErrSessionActive
	}

	if err := m.scheduler.OnLogin(ctx, userID); err != nil {
		return fmt.Errorf("on login: %w", err)
	}

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	sub, err := m.feed.Subscribe(recorderCtx)
	if err != nil {
		stopRecorder()
		return fmt.Errorf("subscribe to sensor feed: %w", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.recorder.Run(recorderCtx, userID, sub)
	}()

	m.scheduler.Start(userID)

	m.activeUserID = userID
	m.stopRecorder = stopRecorder
	m.recorderDone = done
	if m.metrics != nil {
		m.metrics.GaugeActiveSessions.Set(1)
	}
	log.Infof("session: user %s logged in", userID)
	return nil
}

// Logout ends the session of userID and flushes its cached activity. The session
// ends even when the flush fails; the cached deltas are then kept on the device
// and the error is returned.
func (m *Manager) Logout(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.logout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.activeUserID == "" || m.activeUserID != userID {
		return ErrNoActiveSession
	}

	m.stop()
	log.Infof("session: user %s logged out", userID)

	if err := m.scheduler.OnLogout(ctx, userID); err != nil {
		return fmt.Errorf("on logout: %w", err)
	}
	return nil
}

// ActiveUser returns the user of the active session, if any.
func (m *Manager) ActiveUser() (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.activeUserID, m.activeUserID != ""
}

// Close stops the session tasks without flushing; the cache is durable and is
// picked up again on the next login.
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.activeUserID == "" {
		return
	}
	m.scheduler.Stop()
	m.stop()
}

func (m *Manager) stop() {
	m.stopRecorder()
	<-m.recorderDone
	m.recorder.Reset()

	m.activeUserID = ""
	m.stopRecorder = nil
	m.recorderDone = nil
	if m.metrics != nil {
		m.metrics.GaugeActiveSessions.Set(0)
	}
}
