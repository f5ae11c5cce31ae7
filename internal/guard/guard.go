// Package guard provides a timing wrapper for blocking operations that are
// expected to be fast but occasionally stall: remote lookups and publishes.
package guard

import (
	"context"
	"log/slog"
	"time"
)

// Guard measures wall-clock time of wrapped operations and warns when one
// exceeds the configured threshold. The warning carries the operation name
// and caller-supplied identifying attributes, never full payloads.
type Guard struct {
	threshold time.Duration
	logger    *slog.Logger
}

// New creates a Guard with the given slow threshold.
func New(threshold time.Duration, logger *slog.Logger) *Guard {
	return &Guard{
		threshold: threshold,
		logger:    logger.With(slog.String("component", "slowop")),
	}
}

// Threshold returns the configured slow threshold.
func (g *Guard) Threshold() time.Duration {
	return g.threshold
}

// Observe runs fn, returning its error and the elapsed wall-clock time.
// Exceeding the threshold emits a warning; it never changes control flow.
// Callers that need a corrective action (the publish path restarts its
// channel) decide from the returned elapsed.
func (g *Guard) Observe(ctx context.Context, op string, fn func(context.Context) error, attrs ...slog.Attr) (time.Duration, error) {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if elapsed > g.threshold {
		logAttrs := make([]any, 0, len(attrs)+2)
		logAttrs = append(logAttrs,
			slog.String("op", op),
			slog.Duration("elapsed", elapsed),
		)
		for _, a := range attrs {
			logAttrs = append(logAttrs, a)
		}
		g.logger.Warn("slow operation", logAttrs...)
	}
	return elapsed, err
}
