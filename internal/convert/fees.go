package convert

import (
	"time"

	"github.com/openexch/tradelogd/internal/domain"
)

// MapFee extracts the fee record for one trade leg: the first fee transfer
// settled in the leg's asset, field-mapped from the instruction sharing its
// index. No matching transfer means the leg carries no fee.
func MapFee(src domain.FeeSource, asset string, timestamp time.Time) *domain.FeeRecord {
	var transfer *domain.FeeTransfer
	for i := range src.Transfers {
		if src.Transfers[i].Asset == asset {
			transfer = &src.Transfers[i]
			break
		}
	}
	if transfer == nil {
		return nil
	}

	var instruction *domain.FeeInstruction
	for i := range src.Instructions {
		if src.Instructions[i].Index == transfer.Index {
			instruction = &src.Instructions[i]
			break
		}
	}
	if instruction == nil {
		return nil
	}

	rec := &domain.FeeRecord{
		Type:           instruction.Type,
		SourceWalletID: transfer.SourceWalletID,
		TargetWalletID: transfer.TargetWalletID,
		Timestamp:      timestamp,
		Volume:         transfer.Volume,
		Asset:          asset,
		SizeType:       instruction.SizeType,
		MakerSizeType:  instruction.MakerSizeType,
	}
	if instruction.Size != nil {
		size := *instruction.Size
		rec.Size = &size
	}
	if instruction.MakerSize != nil {
		size := *instruction.MakerSize
		rec.MakerSize = &size
	}
	if instruction.MakerFeeModificator != nil {
		mod := *instruction.MakerFeeModificator
		rec.MakerFeeModificator = &mod
	}
	return rec
}
