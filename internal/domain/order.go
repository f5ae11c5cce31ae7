package domain

import "time"

// OrderKind identifies the matching-engine order type of the primary order.
// Only Limit and Market orders produce trade-log records; anything else is
// skipped by the converter.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "Limit"
	OrderKindMarket OrderKind = "Market"
)

// Convertible reports whether the converter handles this order kind.
func (k OrderKind) Convertible() bool {
	return k == OrderKindLimit || k == OrderKindMarket
}

// RawOrder is the primary order of an execution event, exactly as emitted by
// the matching engine. Immutable input.
type RawOrder struct {
	ExternalID  string `json:"externalId"`
	AssetPairID string `json:"assetPairId"`

	// Straight is true when the order's volume sign is interpreted directly
	// as base-asset buy/sell without inversion.
	Straight bool `json:"straight"`

	Volume float64   `json:"volume"`
	Kind   OrderKind `json:"orderType"`

	// Fees carries order-level fee instructions in the message shape where
	// transfers live on the trade and instructions on the order.
	Fees []FeeInstruction `json:"fees,omitempty"`
}

// RawTrade is one fill of a RawOrder. Immutable input. The three fee fields
// correspond to the three historical message shapes; at most one of them is
// populated by a given upstream producer.
type RawTrade struct {
	TradeID                 string          `json:"tradeId"`
	ClientID                string          `json:"clientId"`
	Asset                   string          `json:"asset"`
	Volume                  float64         `json:"volume"`
	Price                   float64         `json:"price"`
	Timestamp               time.Time       `json:"timestamp"`
	OppositeOrderID         string          `json:"oppositeOrderId"`
	OppositeOrderExternalID string          `json:"oppositeOrderExternalId,omitempty"`
	OppositeAsset           string          `json:"oppositeAsset"`
	OppositeClientID        string          `json:"oppositeClientId,omitempty"`
	OppositeVolume          float64         `json:"oppositeVolume"`
	Fees                    []TradeFee      `json:"fees,omitempty"`
	FeeInstruction          *FeeInstruction `json:"feeInstruction,omitempty"`
	FeeTransfers            []FeeTransfer   `json:"feeTransfers,omitempty"`
}

// OppositeExternalID returns the opposite order's external id, falling back
// to its internal id when the external one was not supplied.
func (t RawTrade) OppositeExternalID() string {
	if t.OppositeOrderExternalID != "" {
		return t.OppositeOrderExternalID
	}
	return t.OppositeOrderID
}

// OrderWithTrades is one order plus the fills it participated in.
type OrderWithTrades struct {
	Order  RawOrder   `json:"order"`
	Trades []RawTrade `json:"trades"`
}

// ExecutionEvent is the decoded inbound message: a batch of orders with
// their fills, sharing one matching-engine timestamp.
type ExecutionEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Orders    []OrderWithTrades `json:"orders"`
}

// OrderIDs returns the external ids of the event's orders, for log context.
func (e ExecutionEvent) OrderIDs() []string {
	ids := make([]string, 0, len(e.Orders))
	for _, o := range e.Orders {
		ids = append(ids, o.Order.ExternalID)
	}
	return ids
}
