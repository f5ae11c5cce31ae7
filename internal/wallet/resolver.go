// Package wallet resolves raw client ids to stable wallet identities via the
// remote account service, with caching, bounded retry, and per-call timeout.
package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/openexch/tradelogd/internal/domain"
	"github.com/openexch/tradelogd/internal/guard"
)

// Resolution defaults. The call timeout is deliberately generous: the
// account service, not the network, is the bottleneck.
const (
	DefaultCallTimeout       = 5 * time.Minute
	DefaultMaxRetries        = 5
	DefaultSlowCallThreshold = 10 * time.Second
)

// ResolverConfig holds tunables for the Resolver.
type ResolverConfig struct {
	CallTimeout time.Duration
	MaxRetries  int

	// SlowCallThreshold is diagnostic only: individual remote calls taking
	// longer than this are logged, nothing else changes.
	SlowCallThreshold time.Duration
}

func (c *ResolverConfig) applyDefaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.SlowCallThreshold <= 0 {
		c.SlowCallThreshold = DefaultSlowCallThreshold
	}
}

// Resolver implements domain.WalletResolver. Resolve never fails: remote
// failures degrade to the sentinel identity rather than blocking trade-log
// emission.
type Resolver struct {
	directory domain.AccountDirectory
	cache     domain.WalletCache
	cfg       ResolverConfig
	slow      *guard.Guard
	logger    *slog.Logger
}

// NewResolver creates a Resolver backed by the given directory and cache.
func NewResolver(directory domain.AccountDirectory, cache domain.WalletCache, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	cfg.applyDefaults()
	logger = logger.With(slog.String("component", "wallet_resolver"))
	return &Resolver{
		directory: directory,
		cache:     cache,
		cfg:       cfg,
		slow:      guard.New(cfg.SlowCallThreshold, logger),
		logger:    logger,
	}
}

// Resolve returns the wallet identity for clientID, fetching and caching it
// on a miss. Cache read errors are treated as a miss; concurrent resolutions
// of the same uncached id may fetch redundantly, which is tolerated because
// the fetch is idempotent.
func (r *Resolver) Resolve(ctx context.Context, clientID string) domain.WalletInfo {
	if info, ok, err := r.cache.Get(ctx, clientID); err == nil && ok {
		return info
	} else if err != nil {
		r.logger.Warn("wallet cache read failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}

	info := r.lookup(ctx, clientID)

	if err := r.cache.Put(ctx, clientID, info); err != nil {
		r.logger.Warn("wallet cache write failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}
	return info
}

// lookup runs the remote resolution protocol with bounded retry. Each failed
// attempt is logged and retried immediately; exhausting the budget yields
// the sentinel identity.
func (r *Resolver) lookup(ctx context.Context, clientID string) domain.WalletInfo {
	idHash := HashClientID(clientID)

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		info, err := r.tryLookup(ctx, clientID, idHash)
		if err == nil {
			return info
		}
		r.logger.Warn("wallet lookup attempt failed",
			slog.String("client_id", clientID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	r.logger.Warn("could not resolve wallet from account service",
		slog.String("client_id", clientID),
	)
	return domain.SentinelWalletInfo(clientID, idHash)
}

// tryLookup is one pass over the protocol: primary wallet lookup, then the
// trading-wallet listing, then the sentinel. Only transport failures return
// an error; "no wallet exists" is an answer, not a failure, and is not
// retried.
func (r *Resolver) tryLookup(ctx context.Context, clientID, idHash string) (domain.WalletInfo, error) {
	wallet, err := r.walletByClient(ctx, clientID)
	if err != nil {
		return domain.WalletInfo{}, err
	}
	if wallet != nil {
		// walletId carries the input client id, not the wallet's own id.
		// Downstream consumers depend on this exact shape.
		return domain.WalletInfo{
			OwnerID:     wallet.ClientID,
			OwnerIDHash: HashClientID(wallet.ClientID),
			WalletID:    clientID,
			WalletType:  wallet.Type,
		}, nil
	}

	wallets, err := r.walletsByType(ctx, clientID, domain.WalletTypeTrading)
	if err != nil {
		return domain.WalletInfo{}, err
	}
	if len(wallets) == 0 {
		return domain.SentinelWalletInfo(clientID, idHash), nil
	}

	trading := wallets[0]
	return domain.WalletInfo{
		OwnerID:     clientID,
		OwnerIDHash: idHash,
		WalletID:    trading.ID,
		WalletType:  trading.Type,
	}, nil
}

func (r *Resolver) walletByClient(ctx context.Context, clientID string) (*domain.AccountWallet, error) {
	var wallet *domain.AccountWallet
	_, err := r.slow.Observe(ctx, "accounts.WalletByClient", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
		var err error
		wallet, err = r.directory.WalletByClient(callCtx, clientID)
		return err
	}, slog.String("client_id", clientID))
	return wallet, err
}

func (r *Resolver) walletsByType(ctx context.Context, clientID, walletType string) ([]domain.AccountWallet, error) {
	var wallets []domain.AccountWallet
	_, err := r.slow.Observe(ctx, "accounts.WalletsByType", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
		var err error
		wallets, err = r.directory.WalletsByType(callCtx, clientID, walletType)
		return err
	}, slog.String("client_id", clientID))
	return wallets, err
}

var _ domain.WalletResolver = (*Resolver)(nil)
