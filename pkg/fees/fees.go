package fees

import "github.com/shopspring/decimal"

// PlatformFeePercent is the fixed marketplace rate applied to every listing.
const PlatformFeePercent = 1.0

// TipPercents is the enumerated set of tip rates a seller may choose.
var TipPercents = []float64{0, 2.5, 5}

// ValidTipPercent reports whether t is one of the configured tip rates.
func ValidTipPercent(t float64) bool {
	for _, v := range TipPercents {
		if v == t {
			return true
		}
	}
	return false
}

// Breakdown is the fee/tip/proceeds split for a listing price.
// Immutable once computed; all amounts in satoshis.
type Breakdown struct {
	ListingPrice   Sats    `json:"listing_price"`
	MarketplaceFee Sats    `json:"marketplace_fee"`
	Tip            Sats    `json:"tip"`
	SellerReceives Sats    `json:"seller_receives"`
	TipPercent     float64 `json:"tip_percent"`
}

// Compute splits listingPrice into the marketplace fee, tip and seller
// proceeds. Fee and tip are each the ceiling of price * percent/100; the
// seller receives the remainder, floored at zero. Deterministic, no side
// effects, never fails — callers normalize negative prices to 0 first.
func Compute(listingPrice Sats, tipPercent float64) Breakdown {
	fee := ceilPercent(listingPrice, PlatformFeePercent)
	tip := ceilPercent(listingPrice, tipPercent)

	receives := listingPrice - fee - tip
	if receives < 0 {
		receives = 0
	}

	return Breakdown{
		ListingPrice:   listingPrice,
		MarketplaceFee: fee,
		Tip:            tip,
		SellerReceives: receives,
		TipPercent:     tipPercent,
	}
}

// ceilPercent returns ceil(amount * percent / 100) in exact decimal
// arithmetic. float64 rounding must not leak into sat amounts.
func ceilPercent(amount Sats, percent float64) Sats {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(percent)
	v := decimal.New(int64(amount), 0).Mul(p).Div(decimal.New(100, 0))
	return Sats(v.Ceil().IntPart())
}
