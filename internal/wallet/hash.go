package wallet

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashClientID computes the one-way hash published in place of the raw owner
// id. SHA3-256, hex encoded. Cheap enough to compute unconditionally.
func HashClientID(clientID string) string {
	sum := sha3.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:])
}
