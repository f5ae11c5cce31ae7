// Package pipeline ties the conversion engine to the transport: it handles
// each inbound execution event end to end and coordinates the long-running
// loops.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openexch/tradelogd/internal/convert"
	"github.com/openexch/tradelogd/internal/domain"
	"github.com/openexch/tradelogd/internal/guard"
)

// TradeLogPublisher is the outbound bus surface. Restart replaces the
// underlying channel after a slow publish.
type TradeLogPublisher interface {
	Publish(ctx context.Context, records []domain.TradeLogRecord) error
	Restart()
}

// AuditSink persists published records for reporting. Optional; failures
// never fail event handling.
type AuditSink interface {
	InsertBatch(ctx context.Context, records []domain.TradeLogRecord) error
}

// ArchiveSink buffers published records for cold storage. Optional.
type ArchiveSink interface {
	Append(records []domain.TradeLogRecord)
}

// DefaultProcessThreshold bounds how long one event should take end to end
// before we complain about it.
const DefaultProcessThreshold = time.Minute

// Handler converts one execution event and pushes the result through the
// publish, audit, and archive sinks.
type Handler struct {
	converter *convert.Converter
	publisher TradeLogPublisher
	audit     AuditSink
	archive   ArchiveSink
	slow      *guard.Guard
	logger    *slog.Logger
}

// NewHandler creates a Handler. audit and archive may be nil.
func NewHandler(
	converter *convert.Converter,
	publisher TradeLogPublisher,
	audit AuditSink,
	archive ArchiveSink,
	processThreshold time.Duration,
	logger *slog.Logger,
) *Handler {
	if processThreshold <= 0 {
		processThreshold = DefaultProcessThreshold
	}
	logger = logger.With(slog.String("component", "pipeline"))
	return &Handler{
		converter: converter,
		publisher: publisher,
		audit:     audit,
		archive:   archive,
		slow:      guard.New(processThreshold, logger),
		logger:    logger,
	}
}

// HandleEvent converts the event and publishes the resulting records. The
// conversion itself cannot fail; a publish failure propagates so the
// transport redelivers the message. A publish that succeeded but exceeded
// the slow threshold triggers a publisher restart.
func (h *Handler) HandleEvent(ctx context.Context, event domain.ExecutionEvent) error {
	start := time.Now()
	orderIDs := slog.String("order_ids", strings.Join(event.OrderIDs(), ","))
	defer func() {
		if total := time.Since(start); total > h.slow.Threshold() {
			h.logger.Warn("slow event handling",
				orderIDs,
				slog.Duration("elapsed", total),
			)
		}
	}()

	var records []domain.TradeLogRecord
	_, _ = h.slow.Observe(ctx, "convert", func(ctx context.Context) error {
		records = h.converter.Convert(ctx, event)
		return nil
	}, orderIDs)

	if len(records) == 0 {
		return nil
	}

	elapsed, err := h.slow.Observe(ctx, "publish", func(ctx context.Context) error {
		return h.publisher.Publish(ctx, records)
	}, orderIDs, slog.Int("records", len(records)))
	if err != nil {
		return fmt.Errorf("pipeline: publish trade log: %w", err)
	}
	if elapsed > h.slow.Threshold() {
		h.publisher.Restart()
	}

	if h.audit != nil {
		if err := h.audit.InsertBatch(ctx, records); err != nil {
			h.logger.Error("audit insert failed",
				orderIDs,
				slog.Int("records", len(records)),
				slog.String("error", err.Error()),
			)
		}
	}

	if h.archive != nil {
		h.archive.Append(records)
	}

	h.logger.Debug("execution event handled",
		orderIDs,
		slog.Int("records", len(records)),
	)
	return nil
}
