// Package archive buffers published trade-log records and flushes them to
// cold object storage as newline-delimited JSON.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openexch/tradelogd/internal/domain"
)

// BlobWriter is the object-storage surface the archiver needs.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// DefaultFlushInterval controls how often the buffer is flushed when no
// interval is configured.
const DefaultFlushInterval = 5 * time.Minute

// Archiver accumulates records in memory and writes one JSONL object per
// flush, keyed by UTC date and a random id so concurrent instances never
// collide. A failed flush keeps the buffer for the next attempt.
type Archiver struct {
	writer   BlobWriter
	prefix   string
	interval time.Duration
	logger   *slog.Logger

	mu  sync.Mutex
	buf []domain.TradeLogRecord
}

// New creates an Archiver writing under the given key prefix.
func New(writer BlobWriter, prefix string, interval time.Duration, logger *slog.Logger) *Archiver {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Archiver{
		writer:   writer,
		prefix:   prefix,
		interval: interval,
		logger:   logger.With(slog.String("component", "archiver")),
	}
}

// Append adds records to the pending buffer. Never blocks on storage.
func (a *Archiver) Append(records []domain.TradeLogRecord) {
	if len(records) == 0 {
		return
	}
	a.mu.Lock()
	a.buf = append(a.buf, records...)
	a.mu.Unlock()
}

// Run flushes the buffer on the configured interval until ctx is cancelled,
// then performs a final flush with a short grace period.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.Flush(flushCtx); err != nil {
				a.logger.Error("final archive flush failed", slog.String("error", err.Error()))
			}
			return ctx.Err()
		case <-ticker.C:
			if err := a.Flush(ctx); err != nil {
				a.logger.Error("archive flush failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Flush writes all buffered records as one JSONL object. No-op when the
// buffer is empty.
func (a *Archiver) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.buf
	a.buf = nil
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range pending {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("archive: encode record %s: %w", r.TradeID, err)
		}
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%s/tradelog-%s.jsonl",
		a.prefix, now.Format("2006/01/02"), uuid.NewString())

	if err := a.writer.Put(ctx, key, &body, "application/x-ndjson"); err != nil {
		// Put the records back so the next flush retries them.
		a.mu.Lock()
		a.buf = append(pending, a.buf...)
		a.mu.Unlock()
		return fmt.Errorf("archive: flush %d records: %w", len(pending), err)
	}

	a.logger.Info("archived trade-log batch",
		slog.String("key", key),
		slog.Int("records", len(pending)),
	)
	return nil
}
