package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openexch/tradelogd/internal/domain"
)

func TestChooseDirection(t *testing.T) {
	tests := []struct {
		name        string
		assetPairID string
		asset       string
		straight    bool
		volume      float64
		want        domain.Direction
	}{
		{"straight positive base", "BTCUSD", "BTC", true, 10, domain.Buy},
		{"straight negative base", "BTCUSD", "BTC", true, -10, domain.Sell},
		{"inverted positive base", "BTCUSD", "BTC", false, 10, domain.Sell},
		{"inverted negative base", "BTCUSD", "BTC", false, -10, domain.Buy},
		{"straight positive quote flips", "BTCUSD", "USD", true, 10, domain.Sell},
		{"straight negative quote flips", "BTCUSD", "USD", true, -10, domain.Buy},
		{"inverted negative quote flips", "BTCUSD", "USD", false, -10, domain.Sell},
		{"zero volume counts as buy", "BTCUSD", "BTC", true, 0, domain.Buy},
		{"asset not in pair", "ETHUSD", "BTC", true, 10, domain.Buy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChooseDirection(tt.assetPairID, tt.asset, tt.straight, tt.volume)
			assert.Equal(t, tt.want, got)
		})
	}
}
