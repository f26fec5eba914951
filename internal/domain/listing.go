package domain

import "github.com/Sirbiscuits1/Marketplace/pkg/fees"

// Listing is an active offer to sell one ordinal at a fixed price. The
// server assigns the id and is authoritative for every field. There is no
// sold/cancelled status: presence in the active collection is the status,
// removal is the terminal state.
type Listing struct {
	ID               string         `json:"id"`
	Origin           string         `json:"origin"`
	SellerAddress    string         `json:"seller_address"`
	SellerOrdAddress string         `json:"seller_ord_address"`
	Fees             fees.Breakdown `json:"fees"`
	OrdinalUtxo      UtxoRef        `json:"ordinal_utxo"`
}
