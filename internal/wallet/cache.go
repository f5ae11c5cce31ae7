package wallet

import (
	"context"
	"sync"

	"github.com/openexch/tradelogd/internal/domain"
)

// MemoryCache is the process-wide wallet-identity cache. Entries are
// inserted once and never evicted; client-id cardinality is bounded by the
// universe of trading accounts one process instance sees. Concurrent
// check-then-insert races resolve last-writer-wins, which is acceptable
// because resolution is idempotent.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.WalletInfo
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.WalletInfo)}
}

// Get returns the cached identity for clientID, if present.
func (c *MemoryCache) Get(_ context.Context, clientID string) (domain.WalletInfo, bool, error) {
	c.mu.RLock()
	info, ok := c.entries[clientID]
	c.mu.RUnlock()
	return info, ok, nil
}

// Put stores the identity for clientID.
func (c *MemoryCache) Put(_ context.Context, clientID string, info domain.WalletInfo) error {
	c.mu.Lock()
	c.entries[clientID] = info
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached identities.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TieredCache layers a fast local cache over a shared remote tier. Reads
// check local first and promote remote hits; writes go to both. Remote
// errors degrade to a miss or a local-only write, keeping resolution on the
// happy path.
type TieredCache struct {
	local  domain.WalletCache
	remote domain.WalletCache
}

// NewTieredCache combines a local and a remote cache tier.
func NewTieredCache(local, remote domain.WalletCache) *TieredCache {
	return &TieredCache{local: local, remote: remote}
}

// Get checks the local tier, then the remote tier, promoting remote hits
// into the local tier.
func (c *TieredCache) Get(ctx context.Context, clientID string) (domain.WalletInfo, bool, error) {
	if info, ok, err := c.local.Get(ctx, clientID); err == nil && ok {
		return info, true, nil
	}
	info, ok, err := c.remote.Get(ctx, clientID)
	if err != nil || !ok {
		return domain.WalletInfo{}, false, err
	}
	_ = c.local.Put(ctx, clientID, info)
	return info, true, nil
}

// Put writes through to both tiers. A remote write failure is returned but
// the local tier is always updated first.
func (c *TieredCache) Put(ctx context.Context, clientID string, info domain.WalletInfo) error {
	if err := c.local.Put(ctx, clientID, info); err != nil {
		return err
	}
	return c.remote.Put(ctx, clientID, info)
}

var (
	_ domain.WalletCache = (*MemoryCache)(nil)
	_ domain.WalletCache = (*TieredCache)(nil)
)
