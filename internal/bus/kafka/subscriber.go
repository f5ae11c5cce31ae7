package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/openexch/tradelogd/internal/domain"
)

// EventHandler processes one decoded execution event. A returned error
// leaves the message uncommitted so the group redelivers it after restart;
// retry and dead-letter policy beyond that belongs to the broker setup, not
// this job.
type EventHandler func(ctx context.Context, event domain.ExecutionEvent) error

// SubscriberConfig holds connection parameters for the execution-event
// reader.
type SubscriberConfig struct {
	Brokers []string
	Topic   string
	GroupID string

	// MaxBytes caps message size; zero means the kafka-go default.
	MaxBytes int
}

// Subscriber consumes execution events from the matching-engine topic and
// dispatches them to the handler.
type Subscriber struct {
	reader  *kafkago.Reader
	handler EventHandler
	logger  *slog.Logger
}

// NewSubscriber creates a consumer-group subscriber on the given topic.
func NewSubscriber(cfg SubscriberConfig, handler EventHandler, logger *slog.Logger) *Subscriber {
	readerCfg := kafkago.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	}
	if cfg.MaxBytes > 0 {
		readerCfg.MaxBytes = cfg.MaxBytes
	}
	return &Subscriber{
		reader:  kafkago.NewReader(readerCfg),
		handler: handler,
		logger:  logger.With(slog.String("component", "orders_subscriber")),
	}
}

// Run fetches, decodes, and handles messages until ctx is cancelled.
//
// Malformed payloads are logged and committed: a message that cannot decode
// will never decode, so redelivering it only wedges the partition. Handler
// failures are logged and left uncommitted for redelivery.
func (s *Subscriber) Run(ctx context.Context) error {
	defer s.reader.Close()

	s.logger.Info("subscribed to execution events",
		slog.String("topic", s.reader.Config().Topic),
		slog.String("group", s.reader.Config().GroupID),
	)

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka: fetch message: %w", err)
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			s.logger.Error("dropping malformed execution event",
				slog.Int64("offset", msg.Offset),
				slog.Int("partition", msg.Partition),
				slog.String("error", err.Error()),
			)
			s.commit(ctx, msg)
			continue
		}

		if err := s.handler(ctx, event); err != nil {
			s.logger.Error("execution event handling failed",
				slog.Int64("offset", msg.Offset),
				slog.String("order_ids", strings.Join(event.OrderIDs(), ",")),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.commit(ctx, msg)
	}
}

func (s *Subscriber) commit(ctx context.Context, msg kafkago.Message) {
	if err := s.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		s.logger.Warn("commit failed",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// decodeEvent accepts either the batch envelope or a single order-with-
// trades object, normalizing both into an ExecutionEvent.
func decodeEvent(data []byte) (domain.ExecutionEvent, error) {
	var event domain.ExecutionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.ExecutionEvent{}, fmt.Errorf("%w: %s", domain.ErrBadPayload, err)
	}
	if len(event.Orders) > 0 {
		return event, nil
	}

	var single domain.OrderWithTrades
	if err := json.Unmarshal(data, &single); err != nil {
		return domain.ExecutionEvent{}, fmt.Errorf("%w: %s", domain.ErrBadPayload, err)
	}
	if single.Order.ExternalID == "" {
		// Neither shape matched; treat as an empty batch rather than poison.
		return domain.ExecutionEvent{Timestamp: time.Now().UTC()}, nil
	}
	return domain.ExecutionEvent{
		Timestamp: time.Now().UTC(),
		Orders:    []domain.OrderWithTrades{single},
	}, nil
}
