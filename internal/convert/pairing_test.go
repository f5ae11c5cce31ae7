package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairID(t *testing.T) {
	tests := []struct {
		name string
		id1  string
		id2  string
		want string
	}{
		{"already ordered", "O1", "O2", "O1_O2"},
		{"reversed", "O2", "O1", "O1_O2"},
		{"equal ids", "O1", "O1", "O1_O1"},
		{"uuid-like ids", "b2c3", "a1f4", "a1f4_b2c3"},
		{"prefix relation", "O1", "O10", "O1_O10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PairID(tt.id1, tt.id2))
		})
	}
}

func TestPairIDSymmetric(t *testing.T) {
	// Both sides of a fill must derive the same trade id regardless of which
	// order is primary.
	assert.Equal(t, PairID("buyer-order", "seller-order"), PairID("seller-order", "buyer-order"))
}
