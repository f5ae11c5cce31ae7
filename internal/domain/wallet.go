package domain

import "context"

// Wallet types used by resolution.
const (
	WalletTypeTrading = "Trading"

	// WalletTypeNone is the sentinel type used when identity could not be
	// resolved.
	WalletTypeNone = "N/A"
)

// WalletInfo is the resolved identity of a trading account. Once cached for
// a client id it is never recomputed within the process lifetime.
type WalletInfo struct {
	OwnerID     string `json:"ownerId"`
	OwnerIDHash string `json:"ownerIdHash"`
	WalletID    string `json:"walletId"`
	WalletType  string `json:"walletType"`
}

// SentinelWalletInfo is the fallback identity used when the account service
// could not resolve a client id. Resolution never blocks the pipeline.
func SentinelWalletInfo(clientID, idHash string) WalletInfo {
	return WalletInfo{
		OwnerID:     clientID,
		OwnerIDHash: idHash,
		WalletID:    clientID,
		WalletType:  WalletTypeNone,
	}
}

// AccountWallet is a wallet as returned by the remote account service.
type AccountWallet struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Type     string `json:"type"`
}

// AccountDirectory is the remote account-lookup capability. Both calls are
// fallible and subject to the resolver's timeout. WalletByClient returns
// (nil, nil) when no wallet exists for the id.
type AccountDirectory interface {
	WalletByClient(ctx context.Context, clientID string) (*AccountWallet, error)
	WalletsByType(ctx context.Context, clientID, walletType string) ([]AccountWallet, error)
}

// WalletCache stores resolved wallet identities keyed by raw client id.
// Implementations must be safe for concurrent check-then-insert; entries are
// never evicted. A Get error is treated as a miss by the resolver.
type WalletCache interface {
	Get(ctx context.Context, clientID string) (WalletInfo, bool, error)
	Put(ctx context.Context, clientID string, info WalletInfo) error
}

// WalletResolver resolves a raw client id to a stable wallet identity. It
// never fails; unresolvable ids degrade to the sentinel tuple.
type WalletResolver interface {
	Resolve(ctx context.Context, clientID string) WalletInfo
}
