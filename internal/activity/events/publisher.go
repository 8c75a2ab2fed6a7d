// Package events publishes activity flush notifications for downstream consumers
// (leaderboards, goal notifications).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/fitsync/internal/telemetry/tracing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

const TypeActivityFlushed = "activity.flushed"

// FlushEvent is emitted after cached deltas were applied to a remote day aggregate.
type FlushEvent struct {
	Type       string    `json:"type"`
	FlushID    string    `json:"flushId"`
	UserID     string    `json:"userId"`
	Day        string    `json:"day"`
	Steps      int64     `json:"steps"`
	DistanceKm float64   `json:"distanceKm"`
	Calories   int64     `json:"calories"`
	FlushedAt  time.Time `json:"flushedAt"`
}

type Publisher interface {
	PublishFlush(ctx context.Context, event FlushEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ Publisher = (*KafkaPublisher)(nil)

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}, topic)
}

func newKafkaPublisher(writer messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
	}
}

// PublishFlush writes the event keyed by user, so events of one user keep their order.
func (p *KafkaPublisher) PublishFlush(ctx context.Context, event FlushEvent) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "events.kafka.publishFlush")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("topic", p.topic),
		attribute.String("flush.id", event.FlushID),
	)

	if event.Type == "" {
		event.Type = TypeActivityFlushed
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal flush event: %w", err)
	}

	if err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  event.FlushedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}); err != nil {
		return fmt.Errorf("write flush event to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops all events; used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishFlush(context.Context, FlushEvent) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
