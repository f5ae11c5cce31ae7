package app

import (
	"context"
	"fmt"

	"github.com/openexch/tradelogd/internal/archive"
	s3blob "github.com/openexch/tradelogd/internal/blob/s3"
	"github.com/openexch/tradelogd/internal/bus/kafka"
	"github.com/openexch/tradelogd/internal/cache/redis"
	"github.com/openexch/tradelogd/internal/convert"
	"github.com/openexch/tradelogd/internal/domain"
	"github.com/openexch/tradelogd/internal/feed"
	"github.com/openexch/tradelogd/internal/pipeline"
	"github.com/openexch/tradelogd/internal/platform/accounts"
	"github.com/openexch/tradelogd/internal/store/postgres"
	"github.com/openexch/tradelogd/internal/wallet"
)

// wire builds the component graph bottom-up: wallet resolution, converter,
// publisher, optional sinks, then the event sources.
func (a *App) wire(ctx context.Context) error {
	cfg := a.cfg

	// Wallet cache: always an in-process tier, optionally layered over Redis.
	var walletCache domain.WalletCache = wallet.NewMemoryCache()
	if cfg.Redis.Enabled {
		rc, err := redis.NewWalletCache(ctx, redis.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return fmt.Errorf("app: redis: %w", err)
		}
		a.addCloser("redis", rc.Close)
		walletCache = wallet.NewTieredCache(walletCache, rc)
	}

	directory := accounts.NewClient(cfg.Accounts.BaseURL, cfg.Accounts.ApiKey)
	resolver := wallet.NewResolver(directory, walletCache, wallet.ResolverConfig{
		CallTimeout:       cfg.Accounts.CallTimeout.Duration,
		MaxRetries:        cfg.Accounts.MaxRetries,
		SlowCallThreshold: cfg.Accounts.SlowCallThreshold.Duration,
	}, a.logger)

	converter := convert.New(resolver, a.logger)

	publisher := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:      cfg.Bus.Brokers,
		Topic:        cfg.Bus.TradeLogTopic,
		WriteTimeout: cfg.Bus.WriteTimeout.Duration,
		BatchTimeout: cfg.Bus.BatchTimeout.Duration,
	}, a.logger)
	a.addCloser("tradelog_publisher", publisher.Close)

	var audit pipeline.AuditSink
	if cfg.Audit.Enabled {
		pg, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Audit.DSN,
			Host:     cfg.Audit.Host,
			Port:     cfg.Audit.Port,
			Database: cfg.Audit.Database,
			User:     cfg.Audit.User,
			Password: cfg.Audit.Password,
			SSLMode:  cfg.Audit.SSLMode,
			MaxConns: cfg.Audit.PoolMaxConns,
			MinConns: cfg.Audit.PoolMinConns,
		})
		if err != nil {
			return fmt.Errorf("app: postgres: %w", err)
		}
		a.addCloser("postgres", func() error { pg.Close(); return nil })

		if cfg.Audit.RunMigrations {
			if err := pg.RunMigrations(ctx); err != nil {
				return fmt.Errorf("app: migrations: %w", err)
			}
		}
		audit = postgres.NewTradeLogStore(pg.Pool())
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		s3c, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.Endpoint,
			Region:         cfg.Archive.Region,
			Bucket:         cfg.Archive.Bucket,
			AccessKey:      cfg.Archive.AccessKey,
			SecretKey:      cfg.Archive.SecretKey,
			UseSSL:         cfg.Archive.UseSSL,
			ForcePathStyle: cfg.Archive.ForcePathStyle,
		})
		if err != nil {
			return fmt.Errorf("app: s3: %w", err)
		}
		if err := s3c.Health(ctx); err != nil {
			return fmt.Errorf("app: s3: %w", err)
		}
		archiver = archive.New(
			s3blob.NewWriter(s3c),
			cfg.Archive.Prefix,
			cfg.Archive.FlushInterval.Duration,
			a.logger,
		)
	}

	var archiveSink pipeline.ArchiveSink
	if archiver != nil {
		archiveSink = archiver
	}
	handler := pipeline.NewHandler(
		converter,
		publisher,
		audit,
		archiveSink,
		cfg.Converter.SlowProcessThreshold.Duration,
		a.logger,
	)

	sources := make(map[string]pipeline.Source)
	if cfg.Bus.Enabled {
		sources["orders_subscriber"] = kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:  cfg.Bus.Brokers,
			Topic:    cfg.Bus.OrdersTopic,
			GroupID:  cfg.Bus.GroupID,
			MaxBytes: cfg.Bus.MaxBytes,
		}, handler.HandleEvent, a.logger)
	}
	if cfg.Feed.Enabled {
		sources["ws_feed"] = feed.NewWSFeed(cfg.Feed.WsURL, handler.HandleEvent, a.logger)
	}

	var archiverSource pipeline.Source
	if archiver != nil {
		archiverSource = archiver
	}
	a.orchestrator = pipeline.NewOrchestrator(sources, archiverSource, a.logger)
	return nil
}
