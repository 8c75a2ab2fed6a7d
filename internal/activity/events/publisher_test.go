package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writerMock struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *writerMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerMock) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_PublishFlush(t *testing.T) {
	writer := &writerMock{}
	publisher := newKafkaPublisher(writer, "activity.flushed")

	flushedAt := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	err := publisher.PublishFlush(context.Background(), FlushEvent{
		FlushID:    "f-1",
		UserID:     "u1",
		Day:        "2025-03-14",
		Steps:      1200,
		DistanceKm: 0.9144,
		Calories:   48,
		FlushedAt:  flushedAt,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "u1", string(msg.Key))
	assert.Equal(t, flushedAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeActivityFlushed, string(msg.Headers[0].Value))

	var event FlushEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, TypeActivityFlushed, event.Type)
	assert.Equal(t, "f-1", event.FlushID)
	assert.Equal(t, int64(1200), event.Steps)
	assert.Equal(t, int64(48), event.Calories)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &writerMock{err: errors.New("broker unavailable")}
	publisher := newKafkaPublisher(writer, "activity.flushed")

	err := publisher.PublishFlush(context.Background(), FlushEvent{UserID: "u1"})
	assert.ErrorContains(t, err, "broker unavailable")
	assert.ErrorContains(t, err, "activity.flushed")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishFlush(context.Background(), FlushEvent{}))
	assert.NoError(t, p.Close())
}
