package gateway

import (
	"github.com/Sirbiscuits1/Marketplace/internal/domain"
	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// CreateListingRequest is the wire body for POST /listings. The client sends
// the computed fee amounts along with the price; the server re-derives and
// normalizes them and its listing is authoritative.
type CreateListingRequest struct {
	Origin                 string         `json:"origin"`
	OrdinalUtxo            domain.UtxoRef `json:"ordinal_utxo"`
	SellerWantsSatoshis    fees.Sats      `json:"seller_wants_satoshis"`
	TipPercent             float64        `json:"tip_percent"`
	SellerAddress          string         `json:"seller_address"`
	SellerOrdAddress       string         `json:"seller_ord_address"`
	ListingPriceSatoshis   fees.Sats      `json:"listing_price_satoshis"`
	MarketplaceFeeSatoshis fees.Sats      `json:"marketplace_fee_satoshis"`
	TipSatoshis            fees.Sats      `json:"tip_satoshis"`
	MarketplaceFeeAddress  string         `json:"marketplace_fee_address"`
}

// Health is the registry's health snapshot.
type Health struct {
	Status        string `json:"status"`
	ListingsCount int    `json:"listings_count"`
}

type walletResponse struct {
	Success bool              `json:"success"`
	Data    domain.WalletView `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
}

type listingsResponse struct {
	Success  bool             `json:"success"`
	Listings []domain.Listing `json:"listings"`
	Error    string           `json:"error"`
	Message  string           `json:"message"`
}

type createListingResponse struct {
	Success bool           `json:"success"`
	Listing domain.Listing `json:"listing"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
}

type simpleResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
