package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Direction is the side of one trade leg. It is a closed two-value type;
// compare with the constants, never with raw strings.
type Direction int

const (
	Buy Direction = iota
	Sell
)

// Opposite returns the flipped direction.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

func (d Direction) String() string {
	if d == Buy {
		return "Buy"
	}
	return "Sell"
}

// MarshalJSON encodes the direction as "Buy" or "Sell" on the wire.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "Buy" or "Sell".
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Buy":
		*d = Buy
	case "Sell":
		*d = Sell
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// FeeRecord is the fee attached to one trade-log leg. At most one per leg;
// present only when a fee transfer settled in the leg's asset.
type FeeRecord struct {
	Type                string    `json:"type"`
	SourceWalletID      string    `json:"sourceWalletId"`
	TargetWalletID      string    `json:"targetWalletId"`
	Timestamp           time.Time `json:"timestamp"`
	Volume              float64   `json:"volume"`
	Asset               string    `json:"asset"`
	SizeType            string    `json:"sizeType"`
	Size                *float64  `json:"size,omitempty"`
	MakerSizeType       string    `json:"makerSizeType,omitempty"`
	MakerSize           *float64  `json:"makerSize,omitempty"`
	MakerFeeModificator *float64  `json:"makerFeeModificator,omitempty"`
}

// TradeLogRecord is one leg of a fill on the outbound trade-log contract.
// Every fill produces exactly two records sharing the same TradeID, with
// asset/oppositeAsset and volume/oppositeVolume swapped and the direction
// flipped. Volumes are always non-negative.
type TradeLogRecord struct {
	TradeID         string     `json:"tradeId"`
	TradeLegID      string     `json:"tradeLegId,omitempty"`
	OwnerID         string     `json:"ownerId"`
	OwnerIDHash     string     `json:"ownerIdHash"`
	WalletID        string     `json:"walletId"`
	WalletType      string     `json:"walletType"`
	OrderID         string     `json:"orderId"`
	OrderKind       OrderKind  `json:"orderType"`
	Direction       Direction  `json:"direction"`
	Asset           string     `json:"asset"`
	Volume          float64    `json:"volume"`
	Price           float64    `json:"price"`
	Timestamp       time.Time  `json:"timestamp"`
	OppositeOrderID string     `json:"oppositeOrderId"`
	OppositeAsset   string     `json:"oppositeAsset"`
	OppositeVolume  float64    `json:"oppositeVolume"`
	Fee             *FeeRecord `json:"fee,omitempty"`
}
