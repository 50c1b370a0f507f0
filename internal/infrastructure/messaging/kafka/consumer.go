package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/medlens/reviewsignal/internal/config"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
)

// Handler processes one decoded envelope.  Returning an error leaves the
// message uncommitted so it is redelivered.
type Handler func(ctx context.Context, envelope *EventEnvelope) error

// ReaderInterface is the slice of kafka.Reader the consumer needs.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a fetch/handle/commit loop over one topic.
type Consumer struct {
	reader ReaderInterface
	logger logging.Logger
}

// NewConsumer builds a group consumer for topic.
func NewConsumer(cfg config.KafkaConfig, topic string, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "kafka brokers are required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.CodeConfiguration, "kafka group id is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topic:   topic,
	})
	return &Consumer{reader: reader, logger: logger}, nil
}

// NewConsumerWithReader wires a custom reader, mainly for tests.
func NewConsumerWithReader(r ReaderInterface, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{reader: r, logger: logger}
}

// Run consumes until ctx is canceled.  Malformed messages are committed and
// skipped; handler errors leave the message uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, errors.CodeMessageQueueError, "fetch message")
		}

		var envelope EventEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			c.logger.Warn("skipping malformed message",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err),
			)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return errors.Wrap(err, errors.CodeMessageQueueError, "commit malformed message")
			}
			continue
		}

		if err := handler(ctx, &envelope); err != nil {
			c.logger.Error("event handler failed",
				logging.String("event_id", envelope.ID),
				logging.String("event_type", envelope.Type),
				logging.Err(err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, errors.CodeMessageQueueError, "commit message")
		}
	}
}

// Close shuts the underlying reader down.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "close consumer")
	}
	return nil
}
