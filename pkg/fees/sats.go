package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sats represents an amount in satoshis, the smallest currency unit.
// 1 BSV = 100,000,000 Sats. All internal math is done in Sats; whole-unit
// decimals appear only at display boundaries.
type Sats int64

const SatScale = 100_000_000

// ToBSV converts a satoshi amount to a whole-unit decimal.
func (s Sats) ToBSV() decimal.Decimal {
	return decimal.New(int64(s), 0).Div(decimal.New(SatScale, 0))
}

func (s Sats) String() string {
	return fmt.Sprintf("%.8f", float64(s)/SatScale)
}

// FromBSV converts a whole-unit decimal to Sats, rounding to the nearest sat.
func FromBSV(d decimal.Decimal) Sats {
	return Sats(d.Mul(decimal.New(SatScale, 0)).Round(0).IntPart())
}
