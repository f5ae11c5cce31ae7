// Package kafka implements the bus transport: the execution-event subscriber
// and the restartable trade-log publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/openexch/tradelogd/internal/domain"
)

// PublisherConfig holds connection parameters for the trade-log writer.
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	BatchTimeout time.Duration
}

// Publisher writes trade-log batches to the outbound topic. One message per
// batch, JSON body, random uuid key so partitions balance. Restart replaces
// the underlying writer; a stuck channel is better replaced than awaited.
type Publisher struct {
	cfg    PublisherConfig
	logger *slog.Logger

	mu     sync.Mutex
	writer *kafkago.Writer
}

// NewPublisher creates a Publisher for the given topic.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "tradelog_publisher")),
	}
	p.writer = p.newWriter()
	return p
}

func (p *Publisher) newWriter() *kafkago.Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.cfg.Brokers...),
		Topic:        p.cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		Compression:  kafkago.Snappy,
	}
	if p.cfg.WriteTimeout > 0 {
		w.WriteTimeout = p.cfg.WriteTimeout
	}
	if p.cfg.BatchTimeout > 0 {
		w.BatchTimeout = p.cfg.BatchTimeout
	}
	return w
}

// Publish sends one batch of records and blocks until the broker
// acknowledges it.
func (p *Publisher) Publish(ctx context.Context, records []domain.TradeLogRecord) error {
	if len(records) == 0 {
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("kafka: marshal trade-log batch: %w", err)
	}

	p.mu.Lock()
	writer := p.writer
	p.mu.Unlock()
	if writer == nil {
		return fmt.Errorf("kafka: publish: %w", domain.ErrBusClosed)
	}

	msg := kafkago.Message{
		Key:   []byte(uuid.NewString()),
		Value: data,
		Time:  time.Now().UTC(),
	}
	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %d records: %w", len(records), err)
	}
	return nil
}

// Restart tears down the current writer and creates a fresh one. Called by
// the pipeline when a publish exceeded the slow-publish threshold.
func (p *Publisher) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			p.logger.Warn("closing stuck writer failed", slog.String("error", err.Error()))
		}
	}
	p.writer = p.newWriter()
	p.logger.Info("trade-log writer restarted", slog.String("topic", p.cfg.Topic))
}

// Close shuts the writer down.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
