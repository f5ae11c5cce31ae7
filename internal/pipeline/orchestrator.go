package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Source is a long-running event loop: the bus subscriber or the websocket
// feed. Run blocks until ctx is cancelled or the source fails.
type Source interface {
	Run(ctx context.Context) error
}

// Orchestrator runs the event sources and the optional archiver flush loop
// as one errgroup. Any non-context failure cancels the rest.
type Orchestrator struct {
	sources  map[string]Source
	archiver Source
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator. archiver may be nil.
func NewOrchestrator(sources map[string]Source, archiver Source, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		sources:  sources,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "orchestrator")),
	}
}

// Run starts every loop and blocks until all have stopped. Context
// cancellation is a clean shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	if len(o.sources) == 0 {
		return fmt.Errorf("orchestrator: no event sources configured")
	}

	g, ctx := errgroup.WithContext(ctx)

	for name, src := range o.sources {
		name, src := name, src
		g.Go(func() error {
			o.logger.Info("starting event source", slog.String("source", name))
			err := src.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("%s: %w", name, err)
		})
	}

	if o.archiver != nil {
		g.Go(func() error {
			o.logger.Info("starting archiver flush loop")
			err := o.archiver.Run(ctx)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archiver: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("pipeline stopped with error", slog.String("error", err.Error()))
		return err
	}
	o.logger.Info("pipeline stopped cleanly")
	return nil
}
