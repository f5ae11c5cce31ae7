// Package convert implements the trade-event conversion and enrichment
// engine: raw matching-engine execution events go in, normalized double-entry
// trade-log records come out.
package convert

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/openexch/tradelogd/internal/domain"
)

// Converter turns one execution event into the ordered list of trade-log
// records, two per fill. It is a pure function of its inputs plus the wallet
// cache state held by the injected resolver.
type Converter struct {
	wallets domain.WalletResolver
	logger  *slog.Logger
}

// New creates a Converter that resolves wallet identities through wallets.
func New(wallets domain.WalletResolver, logger *slog.Logger) *Converter {
	return &Converter{
		wallets: wallets,
		logger:  logger.With(slog.String("component", "converter")),
	}
}

// Convert produces trade-log records for every convertible order in the
// event, preserving input order. Orders without trades, or with an order
// kind other than Limit/Market, are skipped; mixed batches where only some
// orders are convertible are expected and not an error.
func (c *Converter) Convert(ctx context.Context, event domain.ExecutionEvent) []domain.TradeLogRecord {
	var result []domain.TradeLogRecord
	for _, o := range event.Orders {
		if len(o.Trades) == 0 {
			continue
		}
		if !o.Order.Kind.Convertible() {
			c.logger.Debug("skipping order with unsupported kind",
				slog.String("order_id", o.Order.ExternalID),
				slog.String("kind", string(o.Order.Kind)),
			)
			continue
		}
		for _, trade := range o.Trades {
			result = append(result, c.convertTrade(ctx, event.Timestamp, o.Order, trade)...)
		}
	}
	return result
}

// convertTrade emits the two legs of one fill: the primary-asset leg, then
// the opposite-asset leg with direction flipped, assets and volumes swapped,
// and the fee recomputed for the opposite asset. The record keeps the fill's
// own timestamp; the fee carries the event timestamp.
func (c *Converter) convertTrade(ctx context.Context, eventTS time.Time, order domain.RawOrder, trade domain.RawTrade) []domain.TradeLogRecord {
	oppositeOrderID := trade.OppositeExternalID()
	tradeID := PairID(order.ExternalID, oppositeOrderID)
	direction := ChooseDirection(order.AssetPairID, trade.Asset, order.Straight, order.Volume)
	wallet := c.wallets.Resolve(ctx, trade.ClientID)
	fees := domain.FeesFromTrade(order, trade)

	legA := domain.TradeLogRecord{
		TradeID:         tradeID,
		TradeLegID:      trade.TradeID,
		OwnerID:         wallet.OwnerID,
		OwnerIDHash:     wallet.OwnerIDHash,
		WalletID:        wallet.WalletID,
		WalletType:      wallet.WalletType,
		OrderID:         order.ExternalID,
		OrderKind:       order.Kind,
		Direction:       direction,
		Asset:           trade.Asset,
		Volume:          math.Abs(trade.Volume),
		Price:           trade.Price,
		Timestamp:       trade.Timestamp,
		OppositeOrderID: oppositeOrderID,
		OppositeAsset:   trade.OppositeAsset,
		OppositeVolume:  math.Abs(trade.OppositeVolume),
		Fee:             MapFee(fees, trade.Asset, eventTS),
	}

	legB := legA
	legB.Direction = direction.Opposite()
	legB.Asset = trade.OppositeAsset
	legB.Volume = math.Abs(trade.OppositeVolume)
	legB.OppositeAsset = trade.Asset
	legB.OppositeVolume = math.Abs(trade.Volume)
	legB.Fee = MapFee(fees, trade.OppositeAsset, eventTS)

	return []domain.TradeLogRecord{legA, legB}
}
