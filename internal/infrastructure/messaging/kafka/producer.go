package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// WriterInterface is the slice of kafka.Writer the producer needs.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes.
type Producer struct {
	writer WriterInterface
	source string
	logger logging.Logger
}

// NewProducer builds a producer over the configured brokers.  Messages are
// keyed by envelope ID so partitioning spreads evenly.
func NewProducer(cfg config.KafkaConfig, source string, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "kafka brokers are required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  maxAttempts(cfg.ProducerRetries),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: writeTimeout(cfg.WriteTimeout),
	}
	return &Producer{writer: writer, source: source, logger: logger}, nil
}

// NewProducerWithWriter wires a custom writer, mainly for tests.
func NewProducerWithWriter(w WriterInterface, source string, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, source: source, logger: logger}
}

// Publish sends one payload as an envelope on topic.
func (p *Producer) Publish(ctx context.Context, topic, eventType string, payload interface{}) error {
	envelope, err := NewEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "encode event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.ID),
		Value: raw,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_type", eventType),
		logging.String("event_id", envelope.ID),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "close producer")
	}
	return nil
}

func maxAttempts(retries int) int {
	if retries <= 0 {
		return 3
	}
	return retries + 1
}

func writeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
