package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventBatchEnvelope(t *testing.T) {
	data := []byte(`{
		"timestamp": "2024-03-01T12:00:00Z",
		"orders": [
			{
				"order": {"externalId": "O1", "assetPairId": "BTCUSD", "straight": true, "volume": 10, "orderType": "Limit"},
				"trades": [{"tradeId": "T1", "clientId": "C1", "asset": "BTC", "volume": 10, "price": 8000, "oppositeOrderId": "O2", "oppositeAsset": "USD", "oppositeVolume": 80000}]
			}
		]
	}`)

	event, err := decodeEvent(data)
	require.NoError(t, err)
	require.Len(t, event.Orders, 1)
	assert.Equal(t, "O1", event.Orders[0].Order.ExternalID)
	require.Len(t, event.Orders[0].Trades, 1)
	assert.Equal(t, "T1", event.Orders[0].Trades[0].TradeID)
}

func TestDecodeEventSingleOrderShape(t *testing.T) {
	data := []byte(`{
		"order": {"externalId": "O1", "assetPairId": "BTCUSD", "straight": true, "volume": 10, "orderType": "Market"},
		"trades": [{"tradeId": "T1", "clientId": "C1", "asset": "BTC", "volume": 10, "oppositeOrderId": "O2", "oppositeAsset": "USD", "oppositeVolume": 80000}]
	}`)

	event, err := decodeEvent(data)
	require.NoError(t, err)
	require.Len(t, event.Orders, 1)
	assert.Equal(t, "O1", event.Orders[0].Order.ExternalID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestDecodeEventMalformed(t *testing.T) {
	_, err := decodeEvent([]byte(`{"orders": "nope"`))
	assert.Error(t, err)
}

func TestDecodeEventUnknownShapeIsEmptyBatch(t *testing.T) {
	event, err := decodeEvent([]byte(`{"something": "else"}`))
	require.NoError(t, err)
	assert.Empty(t, event.Orders)
}
