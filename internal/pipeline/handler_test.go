package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/tradelogd/internal/convert"
	"github.com/openexch/tradelogd/internal/domain"
)

type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, clientID string) domain.WalletInfo {
	return domain.WalletInfo{
		OwnerID:     clientID,
		OwnerIDHash: "hash",
		WalletID:    "W-" + clientID,
		WalletType:  domain.WalletTypeTrading,
	}
}

type fakePublisher struct {
	published  [][]domain.TradeLogRecord
	publishErr error
	delay      time.Duration
	restarts   int
}

func (p *fakePublisher) Publish(_ context.Context, records []domain.TradeLogRecord) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, records)
	return nil
}

func (p *fakePublisher) Restart() { p.restarts++ }

type fakeAudit struct {
	inserted  [][]domain.TradeLogRecord
	insertErr error
}

func (a *fakeAudit) InsertBatch(_ context.Context, records []domain.TradeLogRecord) error {
	if a.insertErr != nil {
		return a.insertErr
	}
	a.inserted = append(a.inserted, records)
	return nil
}

type fakeArchive struct {
	appended [][]domain.TradeLogRecord
}

func (a *fakeArchive) Append(records []domain.TradeLogRecord) {
	a.appended = append(a.appended, records)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() domain.ExecutionEvent {
	return domain.ExecutionEvent{
		Timestamp: time.Now().UTC(),
		Orders: []domain.OrderWithTrades{{
			Order: domain.RawOrder{
				ExternalID: "O1", AssetPairID: "BTCUSD", Straight: true,
				Volume: 1, Kind: domain.OrderKindLimit,
			},
			Trades: []domain.RawTrade{{
				TradeID: "T1", ClientID: "C1", Asset: "BTC", Volume: 1,
				Price: 8000, OppositeOrderID: "O2",
				OppositeAsset: "USD", OppositeVolume: 8000,
			}},
		}},
	}
}

func newTestHandler(pub *fakePublisher, audit AuditSink, archive ArchiveSink, threshold time.Duration) *Handler {
	converter := convert.New(staticResolver{}, testLogger())
	return NewHandler(converter, pub, audit, archive, threshold, testLogger())
}

func TestHandleEventPublishes(t *testing.T) {
	pub := &fakePublisher{}
	audit := &fakeAudit{}
	archive := &fakeArchive{}
	h := newTestHandler(pub, audit, archive, time.Minute)

	err := h.HandleEvent(context.Background(), testEvent())
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Len(t, pub.published[0], 2)
	require.Len(t, audit.inserted, 1)
	require.Len(t, archive.appended, 1)
	assert.Zero(t, pub.restarts)
}

func TestHandleEventEmptyConversion(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(pub, nil, nil, time.Minute)

	event := domain.ExecutionEvent{
		Orders: []domain.OrderWithTrades{{
			Order: domain.RawOrder{ExternalID: "O1", Kind: domain.OrderKindLimit},
		}},
	}
	err := h.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
}

func TestHandleEventPublishFailurePropagates(t *testing.T) {
	pub := &fakePublisher{publishErr: errors.New("broker unavailable")}
	audit := &fakeAudit{}
	h := newTestHandler(pub, audit, nil, time.Minute)

	err := h.HandleEvent(context.Background(), testEvent())
	require.Error(t, err)
	// The batch never reached the bus, so it must not be audited either.
	assert.Empty(t, audit.inserted)
	assert.Zero(t, pub.restarts)
}

func TestHandleEventSlowPublishRestartsPublisher(t *testing.T) {
	pub := &fakePublisher{delay: 10 * time.Millisecond}
	h := newTestHandler(pub, nil, nil, time.Millisecond)

	err := h.HandleEvent(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, pub.restarts)
	// The slow publish still succeeded; the batch is not republished.
	assert.Len(t, pub.published, 1)
}

func TestHandleEventAuditFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{}
	audit := &fakeAudit{insertErr: errors.New("db down")}
	archive := &fakeArchive{}
	h := newTestHandler(pub, audit, archive, time.Minute)

	err := h.HandleEvent(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Len(t, pub.published, 1)
	// Archive still runs after a failed audit insert.
	assert.Len(t, archive.appended, 1)
}
