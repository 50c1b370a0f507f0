package kafka

import (
	"context"
	"encoding/json"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

type fakeWriter struct {
	messages []segkafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue     []segkafka.Message
	committed []segkafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (segkafka.Message, error) {
	if len(r.queue) == 0 {
		return segkafka.Message{}, context.Canceled
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...segkafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestEnvelope_RoundTrip(t *testing.T) {
	payload := RunCompletedPayload{
		RunID:    common.NewRunID(),
		Status:   common.RunStatusFinished,
		RowCount: 10,
	}
	envelope, err := NewEnvelope(EventTypeRunCompleted, "worker-1", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.ID)
	assert.Equal(t, EventTypeRunCompleted, envelope.Type)

	var decoded RunCompletedPayload
	require.NoError(t, envelope.DecodePayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "apiserver", nil)

	batch := ReviewBatchPayload{
		RunID: common.NewRunID(),
		Reviews: []review.Review{
			{TextIndex: "r1", Medication: "Humira for Crohn's Disease", Rate: 7},
		},
	}
	require.NoError(t, p.Publish(context.Background(), TopicReviewBatches, EventTypeReviewBatch, batch))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicReviewBatches, msg.Topic)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, "apiserver", envelope.Source)
	assert.Equal(t, []byte(envelope.ID), msg.Key)

	var decoded ReviewBatchPayload
	require.NoError(t, envelope.DecodePayload(&decoded))
	assert.Equal(t, batch.RunID, decoded.RunID)
	require.Len(t, decoded.Reviews, 1)
	assert.Equal(t, common.TextIndex("r1"), decoded.Reviews[0].TextIndex)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "test", nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, "test", nil)
	assert.Error(t, err)
}

func TestConsumer_Run(t *testing.T) {
	envelope, err := NewEnvelope(EventTypeRunCompleted, "worker-1", RunCompletedPayload{RowCount: 3})
	require.NoError(t, err)
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	r := &fakeReader{queue: []segkafka.Message{
		{Topic: TopicRunCompleted, Value: raw},
		{Topic: TopicRunCompleted, Value: []byte("not json")},
	}}
	c := NewConsumerWithReader(r, nil)

	var handled []string
	err = c.Run(context.Background(), func(_ context.Context, e *EventEnvelope) error {
		handled = append(handled, e.ID)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	// Both the handled message and the malformed one get committed.
	assert.Equal(t, []string{envelope.ID}, handled)
	assert.Len(t, r.committed, 2)
}

func TestConsumer_HandlerErrorLeavesUncommitted(t *testing.T) {
	envelope, err := NewEnvelope(EventTypeMarkerEvent, "worker-1", MarkerEventPayload{})
	require.NoError(t, err)
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)

	r := &fakeReader{queue: []segkafka.Message{{Value: raw}}}
	c := NewConsumerWithReader(r, nil)

	err = c.Run(context.Background(), func(context.Context, *EventEnvelope) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.committed)
}
