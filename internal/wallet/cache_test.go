package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/tradelogd/internal/domain"
)

// flakyCache fails every call, standing in for an unreachable remote tier.
type flakyCache struct {
	err error
}

func (c *flakyCache) Get(_ context.Context, _ string) (domain.WalletInfo, bool, error) {
	return domain.WalletInfo{}, false, c.err
}

func (c *flakyCache) Put(_ context.Context, _ string, _ domain.WalletInfo) error {
	return c.err
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "C-1")
	require.NoError(t, err)
	assert.False(t, ok)

	info := domain.WalletInfo{OwnerID: "owner", WalletID: "W-1", WalletType: domain.WalletTypeTrading}
	require.NoError(t, c.Put(ctx, "C-1", info))

	got, ok, err := c.Get(ctx, "C-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, info, got)
	assert.Equal(t, 1, c.Len())
}

func TestTieredCachePromotesRemoteHits(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache()
	remote := NewMemoryCache()
	tiered := NewTieredCache(local, remote)

	info := domain.WalletInfo{OwnerID: "owner", WalletID: "W-1"}
	require.NoError(t, remote.Put(ctx, "C-1", info))

	got, ok, err := tiered.Get(ctx, "C-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, info, got)

	// The hit was promoted into the local tier.
	_, ok, err = local.Get(ctx, "C-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTieredCacheWritesThrough(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache()
	remote := NewMemoryCache()
	tiered := NewTieredCache(local, remote)

	info := domain.WalletInfo{OwnerID: "owner", WalletID: "W-1"}
	require.NoError(t, tiered.Put(ctx, "C-1", info))

	_, ok, _ := local.Get(ctx, "C-1")
	assert.True(t, ok)
	_, ok, _ = remote.Get(ctx, "C-1")
	assert.True(t, ok)
}

func TestTieredCacheRemoteFailure(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache()
	remote := &flakyCache{err: errors.New("remote down")}
	tiered := NewTieredCache(local, remote)

	info := domain.WalletInfo{OwnerID: "owner", WalletID: "W-1"}

	// The local tier is written even when the remote write fails.
	err := tiered.Put(ctx, "C-1", info)
	require.Error(t, err)
	got, ok, err := tiered.Get(ctx, "C-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, info, got)

	// A remote read failure on a local miss surfaces as an error, which the
	// resolver treats as a miss.
	_, ok, err = tiered.Get(ctx, "C-2")
	assert.False(t, ok)
	assert.Error(t, err)
}
