package wallet

import "context"

// Addresses are the two addresses a signing agent manages: the settlement
// (payment) address and the ordinal-signing address.
type Addresses struct {
	BSVAddress string `json:"bsvAddress"`
	OrdAddress string `json:"ordAddress"`
}

// Agent is the external signing agent (a wallet extension). It is untrusted
// and asynchronous: every call may fail, hang, or lie, and the session
// manager wraps each one so a fault degrades to a reported outcome.
type Agent interface {
	// Present reports whether the agent is reachable at all. Used by the
	// bounded detection probe; must be cheap and non-mutating.
	Present(ctx context.Context) bool

	// IsConnected is the non-mutating "already authorized?" query.
	IsConnected(ctx context.Context) (bool, error)

	// Connect requests authorization from the user. Mutating; may prompt.
	Connect(ctx context.Context) error

	// GetAddresses returns the settlement and ordinal addresses.
	GetAddresses(ctx context.Context) (Addresses, error)

	// GetBalance returns the agent's balance in whatever shape the agent
	// chooses to report. See NormalizeBalance.
	GetBalance(ctx context.Context) (any, error)
}

// PurchaseRequest carries what the agent needs to move funds for a listing:
// the asset's UTXO reference plus the fixed marketplace rate and address.
type PurchaseRequest struct {
	Outpoint              string  `json:"outpoint"`
	MarketplaceRate       float64 `json:"marketplaceRate"`
	MarketplaceFeeAddress string  `json:"marketplaceAddress"`
}

// Purchaser is the optional purchase capability. Agents that cannot build
// settlement transactions simply don't implement it; callers must handle
// its absence gracefully.
type Purchaser interface {
	PurchaseOrdinal(ctx context.Context, req PurchaseRequest) (txid string, err error)
}
