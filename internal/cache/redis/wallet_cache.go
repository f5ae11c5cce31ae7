// Package redis implements the shared wallet-cache tier using go-redis/v9.
// It is a single-purpose store: the only thing kept in Redis is resolved
// wallet identity, shared across converter instances.
package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/openexch/tradelogd/internal/domain"
)

// Config holds connection parameters for the wallet-cache tier.
type Config struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	TLSEnabled bool
}

// WalletCache implements domain.WalletCache on Redis. Entries are JSON
// values with no TTL, mirroring the append-only in-process cache policy:
// identity, once resolved, stays resolved.
//
// Key schema:
//
//	wallet:{clientID} - JSON-serialized domain.WalletInfo
type WalletCache struct {
	rdb *redis.Client
}

// NewWalletCache connects to Redis, pings it to verify connectivity, and
// returns the cache.
func NewWalletCache(ctx context.Context, cfg Config) (*WalletCache, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &WalletCache{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (wc *WalletCache) Close() error {
	return wc.rdb.Close()
}

func walletKey(clientID string) string { return "wallet:" + clientID }

// Get retrieves the cached identity for clientID. A missing key is a miss,
// not an error.
func (wc *WalletCache) Get(ctx context.Context, clientID string) (domain.WalletInfo, bool, error) {
	data, err := wc.rdb.Get(ctx, walletKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.WalletInfo{}, false, nil
		}
		return domain.WalletInfo{}, false, fmt.Errorf("redis: get wallet %s: %w", clientID, err)
	}

	var info domain.WalletInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return domain.WalletInfo{}, false, fmt.Errorf("redis: unmarshal wallet %s: %w", clientID, err)
	}
	return info, true, nil
}

// Put stores the identity for clientID without expiry.
func (wc *WalletCache) Put(ctx context.Context, clientID string, info domain.WalletInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("redis: marshal wallet %s: %w", clientID, err)
	}
	if err := wc.rdb.Set(ctx, walletKey(clientID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set wallet %s: %w", clientID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.WalletCache = (*WalletCache)(nil)
