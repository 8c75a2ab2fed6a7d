// Package sensor turns the step sensor's cumulative counts into activity deltas
// recorded in the local cache.
package sensor

import (
	"context"
	"errors"
	"sync"
	"time"
)

const subscriptionBuffer = 64

var ErrFeedClosed = errors.New("sensor feed closed")

// Reading is one cumulative step count reported by the sensor since its last reset.
type Reading struct {
	UserID          string
	CumulativeSteps int64
	At              time.Time
}

// Feed is a lazy, infinite stream of readings. Subscriptions end when their
// context is done or when closed, and cannot be restarted.
type Feed interface {
	Subscribe(ctx context.Context) (*Subscription, error)
}

type Subscription struct {
	readings chan Reading
	once     sync.Once
	onClose  func(*Subscription)
}

func (s *Subscription) Readings() <-chan Reading {
	return s.readings
}

// Close unregisters the subscription; its readings channel is closed.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.onClose(s)
	})
}

var _ Feed = (*Broadcaster)(nil)

// Broadcaster is an in-process Feed, fed by the ingestion endpoint.
type Broadcaster struct {
	mutex  sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*Subscription]struct{}),
	}
}

func (b *Broadcaster) Subscribe(ctx context.Context) (*Subscription, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return nil, ErrFeedClosed
	}

	sub := &Subscription{
		readings: make(chan Reading, subscriptionBuffer),
		onClose:  b.remove,
	}
	b.subs[sub] = struct{}{}
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Publish hands the reading to all subscribers without blocking. A slow
// subscriber loses its oldest buffered reading; later cumulative counts cover it.
func (b *Broadcaster) Publish(r Reading) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for sub := range b.subs {
		select {
		case sub.readings <- r:
			continue
		default:
		}
		select {
		case <-sub.readings:
		default:
		}
		select {
		case sub.readings <- r:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.subs)
}

// Close ends all subscriptions; no new ones can be made.
func (b *Broadcaster) Close() {
	b.mutex.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.closed = true
	b.mutex.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.subs, sub)
	close(sub.readings)
}
