package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openexch/tradelogd/internal/domain"
)

// TradeLogStore persists published trade-log records for reporting. The
// record stream is the source of truth; this table is a queryable mirror,
// so duplicate legs (redelivered messages) are silently skipped.
type TradeLogStore struct {
	pool *pgxpool.Pool
}

// NewTradeLogStore creates a TradeLogStore backed by the given pool.
func NewTradeLogStore(pool *pgxpool.Pool) *TradeLogStore {
	return &TradeLogStore{pool: pool}
}

// InsertBatch inserts records using a pgx batch. Conflicts on the leg's
// natural key (trade_id, order_id, asset) are ignored.
func (s *TradeLogStore) InsertBatch(ctx context.Context, records []domain.TradeLogRecord) error {
	if len(records) == 0 {
		return nil
	}

	const query = `
		INSERT INTO trade_log (
			trade_id, trade_leg_id, owner_id, owner_id_hash,
			wallet_id, wallet_type, order_id, order_kind,
			direction, asset, volume, price, timestamp,
			opposite_order_id, opposite_asset, opposite_volume, fee
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17
		) ON CONFLICT (trade_id, order_id, asset) DO NOTHING`

	batch := &pgx.Batch{}
	for i, r := range records {
		var fee []byte
		if r.Fee != nil {
			var err error
			fee, err = json.Marshal(r.Fee)
			if err != nil {
				return fmt.Errorf("postgres: marshal fee for record %d: %w", i, err)
			}
		}
		batch.Queue(query,
			r.TradeID, r.TradeLegID, r.OwnerID, r.OwnerIDHash,
			r.WalletID, r.WalletType, r.OrderID, string(r.OrderKind),
			r.Direction.String(), r.Asset, r.Volume, r.Price, r.Timestamp,
			r.OppositeOrderID, r.OppositeAsset, r.OppositeVolume, fee,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert trade-log batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListByOwner returns records for a given owner, newest first.
func (s *TradeLogStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.TradeLogRecord, error) {
	query := `
		SELECT trade_id, trade_leg_id, owner_id, owner_id_hash,
			wallet_id, wallet_type, order_id, order_kind,
			direction, asset, volume, price, timestamp,
			opposite_order_id, opposite_asset, opposite_volume, fee
		FROM trade_log WHERE owner_id = $1 ORDER BY timestamp DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trade log by owner: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteBefore removes records older than the given time, returning the
// number deleted. Used by retention jobs once batches are archived.
func (s *TradeLogStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trade_log WHERE timestamp < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trade log before: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRecords(rows pgx.Rows) ([]domain.TradeLogRecord, error) {
	var records []domain.TradeLogRecord
	for rows.Next() {
		var (
			r         domain.TradeLogRecord
			kind      string
			direction string
			fee       []byte
		)
		if err := rows.Scan(
			&r.TradeID, &r.TradeLegID, &r.OwnerID, &r.OwnerIDHash,
			&r.WalletID, &r.WalletType, &r.OrderID, &kind,
			&direction, &r.Asset, &r.Volume, &r.Price, &r.Timestamp,
			&r.OppositeOrderID, &r.OppositeAsset, &r.OppositeVolume, &fee,
		); err != nil {
			return nil, err
		}
		r.OrderKind = domain.OrderKind(kind)
		if direction == domain.Sell.String() {
			r.Direction = domain.Sell
		}
		if len(fee) > 0 {
			r.Fee = &domain.FeeRecord{}
			if err := json.Unmarshal(fee, r.Fee); err != nil {
				return nil, fmt.Errorf("unmarshal fee for trade %s: %w", r.TradeID, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
