package domain

import "time"

// Fee size types as they appear on the outbound contract.
const (
	FeeSizeAbsolute   = "ABSOLUTE"
	FeeSizePercentage = "PERCENTAGE"
)

// FeeInstruction describes how a fee was charged. Index pairs an instruction
// with its settlement transfer when the two travel in separate lists.
type FeeInstruction struct {
	Index               int      `json:"index"`
	Type                string   `json:"type"`
	SourceClientID      string   `json:"sourceClientId"`
	TargetClientID      string   `json:"targetClientId"`
	SizeType            string   `json:"sizeType"`
	Size                *float64 `json:"size,omitempty"`
	MakerSizeType       string   `json:"makerSizeType,omitempty"`
	MakerSize           *float64 `json:"makerSize,omitempty"`
	MakerFeeModificator *float64 `json:"makerFeeModificator,omitempty"`
}

// FeeTransfer is the settlement movement of a charged fee.
type FeeTransfer struct {
	Index          int       `json:"index"`
	ExternalID     string    `json:"externalId,omitempty"`
	SourceWalletID string    `json:"sourceWalletId"`
	TargetWalletID string    `json:"targetWalletId"`
	Timestamp      time.Time `json:"timestamp"`
	Volume         float64   `json:"volume"`
	Asset          string    `json:"asset"`
}

// TradeFee is the per-trade fee shape where each entry carries its own
// instruction and transfer.
type TradeFee struct {
	Instruction FeeInstruction `json:"instruction"`
	Transfer    *FeeTransfer   `json:"transfer,omitempty"`
}

// FeeSource is the normalized view over the three historical fee message
// shapes. Instructions and transfers are matched by Index.
type FeeSource struct {
	Instructions []FeeInstruction
	Transfers    []FeeTransfer
}

// FeesFromTrade builds the fee source for a trade, selecting whichever of
// the three shapes the upstream producer populated:
//
//  1. per-trade instruction+transfer pairs (Fees)
//  2. a single instruction reference on the trade (FeeInstruction)
//  3. order-level instructions with trade-level transfers (order.Fees +
//     FeeTransfers), matched by index
func FeesFromTrade(order RawOrder, trade RawTrade) FeeSource {
	switch {
	case len(trade.Fees) > 0:
		src := FeeSource{
			Instructions: make([]FeeInstruction, 0, len(trade.Fees)),
			Transfers:    make([]FeeTransfer, 0, len(trade.Fees)),
		}
		for i, f := range trade.Fees {
			instr := f.Instruction
			instr.Index = i
			src.Instructions = append(src.Instructions, instr)
			if f.Transfer != nil {
				tr := *f.Transfer
				tr.Index = i
				src.Transfers = append(src.Transfers, tr)
			}
		}
		return src
	case trade.FeeInstruction != nil:
		return FeeSource{Instructions: []FeeInstruction{*trade.FeeInstruction}}
	case len(trade.FeeTransfers) > 0:
		return FeeSource{Instructions: order.Fees, Transfers: trade.FeeTransfers}
	default:
		return FeeSource{}
	}
}
