// Package kafka carries the pipeline's event stream: review batches going
// into the worker and detection events coming out of it.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// Topic names.  The worker consumes TopicReviewBatches; everything else is
// produced by the pipeline for downstream consumers.
const (
	TopicRunRequests   = "reviewsignal.run-requests"
	TopicReviewBatches = "reviewsignal.review-batches"
	TopicMarkerEvents  = "reviewsignal.marker-events"
	TopicChangeEvents  = "reviewsignal.treatment-change-events"
	TopicRunCompleted  = "reviewsignal.run-completed"
)

// Event types carried in envelopes.
const (
	EventTypeRunRequested = "run.requested"
	EventTypeReviewBatch  = "review.batch"
	EventTypeMarkerEvent  = "marker.detected"
	EventTypeChangeEvent  = "treatment.change"
	EventTypeRunCompleted = "run.completed"
)

// EventEnvelope is the uniform wire format for every message.
type EventEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// RunRequestPayload asks the worker to execute the pipeline over a
// server-side CSV path.
type RunRequestPayload struct {
	Source string `json:"source"`
}

// ReviewBatchPayload is a batch of raw rows for the worker to process.
type ReviewBatchPayload struct {
	RunID   common.RunID    `json:"run_id"`
	Reviews []review.Review `json:"reviews"`
}

// MarkerEventPayload mirrors the persisted marker event.
type MarkerEventPayload struct {
	Event review.MarkerEvent `json:"event"`
}

// ChangeEventPayload mirrors the persisted treatment-change event.
type ChangeEventPayload struct {
	Event review.TreatmentChangeEvent `json:"event"`
}

// RunCompletedPayload announces a finished run.
type RunCompletedPayload struct {
	RunID        common.RunID     `json:"run_id"`
	Status       common.RunStatus `json:"status"`
	RowCount     int              `json:"row_count"`
	MarkerEvents int              `json:"marker_events"`
	ChangeEvents int              `json:"change_events"`
}

// NewEnvelope wraps payload for the wire.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "encode event payload")
	}
	return &EventEnvelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "decode event payload")
	}
	return nil
}
