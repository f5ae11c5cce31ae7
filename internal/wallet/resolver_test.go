package wallet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/tradelogd/internal/domain"
)

// fakeDirectory scripts the two account-service calls and counts invocations.
type fakeDirectory struct {
	wallet    *domain.AccountWallet
	walletErr error
	byType    []domain.AccountWallet
	byTypeErr error
	byClientN int
	byTypeN   int
}

func (d *fakeDirectory) WalletByClient(_ context.Context, _ string) (*domain.AccountWallet, error) {
	d.byClientN++
	return d.wallet, d.walletErr
}

func (d *fakeDirectory) WalletsByType(_ context.Context, _, _ string) ([]domain.AccountWallet, error) {
	d.byTypeN++
	return d.byType, d.byTypeErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(dir domain.AccountDirectory) *Resolver {
	return NewResolver(dir, NewMemoryCache(), ResolverConfig{
		CallTimeout:       time.Second,
		MaxRetries:        2,
		SlowCallThreshold: time.Second,
	}, testLogger())
}

func TestResolvePrimaryLookup(t *testing.T) {
	dir := &fakeDirectory{
		wallet: &domain.AccountWallet{ID: "W-77", ClientID: "owner-7", Type: domain.WalletTypeTrading},
	}
	r := newTestResolver(dir)

	info := r.Resolve(context.Background(), "C-7")

	assert.Equal(t, "owner-7", info.OwnerID)
	assert.Equal(t, HashClientID("owner-7"), info.OwnerIDHash)
	// The wallet id field carries the input client id, not the wallet's own
	// id. Consumers key on that shape.
	assert.Equal(t, "C-7", info.WalletID)
	assert.Equal(t, domain.WalletTypeTrading, info.WalletType)
	assert.Equal(t, 1, dir.byClientN)
	assert.Equal(t, 0, dir.byTypeN)
}

func TestResolveTradingWalletFallback(t *testing.T) {
	dir := &fakeDirectory{
		byType: []domain.AccountWallet{
			{ID: "W-1", ClientID: "C-7", Type: domain.WalletTypeTrading},
			{ID: "W-2", ClientID: "C-7", Type: domain.WalletTypeTrading},
		},
	}
	r := newTestResolver(dir)

	info := r.Resolve(context.Background(), "C-7")

	assert.Equal(t, "C-7", info.OwnerID)
	assert.Equal(t, HashClientID("C-7"), info.OwnerIDHash)
	assert.Equal(t, "W-1", info.WalletID)
	assert.Equal(t, domain.WalletTypeTrading, info.WalletType)
	assert.Equal(t, 1, dir.byClientN)
	assert.Equal(t, 1, dir.byTypeN)
}

func TestResolveNoWalletIsSentinelWithoutRetry(t *testing.T) {
	dir := &fakeDirectory{}
	r := newTestResolver(dir)

	info := r.Resolve(context.Background(), "ghost")

	assert.Equal(t, domain.SentinelWalletInfo("ghost", HashClientID("ghost")), info)
	// An empty answer is an answer. One pass, no retries.
	assert.Equal(t, 1, dir.byClientN)
	assert.Equal(t, 1, dir.byTypeN)
}

func TestResolveTransportErrorRetriesThenSentinel(t *testing.T) {
	dir := &fakeDirectory{walletErr: errors.New("connection refused")}
	r := newTestResolver(dir)

	info := r.Resolve(context.Background(), "C-9")

	assert.Equal(t, domain.WalletTypeNone, info.WalletType)
	assert.Equal(t, "C-9", info.OwnerID)
	assert.Equal(t, "C-9", info.WalletID)
	// MaxRetries=2 means three attempts total.
	assert.Equal(t, 3, dir.byClientN)
}

func TestResolveSecondaryTransportErrorRetries(t *testing.T) {
	dir := &fakeDirectory{byTypeErr: errors.New("timeout")}
	r := newTestResolver(dir)

	info := r.Resolve(context.Background(), "C-9")

	assert.Equal(t, domain.WalletTypeNone, info.WalletType)
	assert.Equal(t, 3, dir.byClientN)
	assert.Equal(t, 3, dir.byTypeN)
}

func TestResolveCachesResult(t *testing.T) {
	dir := &fakeDirectory{
		wallet: &domain.AccountWallet{ID: "W-1", ClientID: "owner-1", Type: domain.WalletTypeTrading},
	}
	r := newTestResolver(dir)

	first := r.Resolve(context.Background(), "C-1")
	second := r.Resolve(context.Background(), "C-1")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.byClientN)
}

func TestResolveCachesSentinel(t *testing.T) {
	dir := &fakeDirectory{}
	r := newTestResolver(dir)

	r.Resolve(context.Background(), "ghost")
	info := r.Resolve(context.Background(), "ghost")

	require.Equal(t, domain.WalletTypeNone, info.WalletType)
	assert.Equal(t, 1, dir.byClientN)
}

func TestHashClientIDDeterministic(t *testing.T) {
	h := HashClientID("client-1")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashClientID("client-1"))
	assert.NotEqual(t, h, HashClientID("client-2"))
}
