package convert

import (
	"strings"

	"github.com/openexch/tradelogd/internal/domain"
)

// ChooseDirection resolves Buy/Sell for the leg trading asset, given the
// order's asset-pair orientation and signed volume.
//
// A straight order with non-negative volume buys the pair's base asset; an
// inverted orientation or a negative volume each flip that. When the
// asset-pair id ends with the asset, the asset is the pair's quote leg, and
// buying the base means selling the quote, so the result flips once more.
func ChooseDirection(assetPairID, asset string, straight bool, orderVolume float64) domain.Direction {
	isBuy := !(straight != (orderVolume >= 0))
	if strings.HasSuffix(assetPairID, asset) {
		isBuy = !isBuy
	}
	if isBuy {
		return domain.Buy
	}
	return domain.Sell
}
