package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalletKey(t *testing.T) {
	// The key schema is shared by every converter instance; changing it
	// orphans all cached identities.
	assert.Equal(t, "wallet:C-1", walletKey("C-1"))
	assert.Equal(t, "wallet:", walletKey(""))
}
