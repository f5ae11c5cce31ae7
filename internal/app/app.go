// Package app assembles the configured components into a runnable job.
package app

import (
	"context"
	"log/slog"

	"github.com/openexch/tradelogd/internal/config"
	"github.com/openexch/tradelogd/internal/pipeline"
)

// App is the wired tradelogd job: one or more event sources feeding the
// conversion pipeline, plus the optional audit and archive sinks.
type App struct {
	cfg          config.Config
	logger       *slog.Logger
	orchestrator *pipeline.Orchestrator
	closers      []closer
}

type closer struct {
	name  string
	close func() error
}

// New loads every enabled component and wires the pipeline. Components that
// fail to connect abort startup; optional sinks are only constructed when
// enabled.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Run starts the event loops and blocks until ctx is cancelled or a loop
// fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("tradelogd starting",
		slog.Bool("bus", a.cfg.Bus.Enabled),
		slog.Bool("feed", a.cfg.Feed.Enabled),
		slog.Bool("audit", a.cfg.Audit.Enabled),
		slog.Bool("archive", a.cfg.Archive.Enabled),
	)
	return a.orchestrator.Run(ctx)
}

// Close releases every connected component in reverse wiring order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Warn("close failed",
				slog.String("component", c.name),
				slog.String("error", err.Error()),
			)
		}
	}
	a.closers = nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}
