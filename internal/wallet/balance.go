package wallet

import (
	"encoding/json"

	"github.com/Sirbiscuits1/Marketplace/pkg/fees"
)

// NormalizeBalance reduces the shapes agents report a balance in to
// satoshis. Three shapes are accepted:
//
//	{"bsv": {"satoshis": n}}  nested object with a smallest-unit field
//	{"satoshis": n}           flat smallest-unit field
//	n                         raw number already in smallest units
//
// Anything else normalizes to 0. Display values are whole-unit decimals
// obtained by dividing by 1e8 (fees.Sats.ToBSV).
func NormalizeBalance(raw any) fees.Sats {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return fees.Sats(v)
	case int:
		return fees.Sats(v)
	case int64:
		return fees.Sats(v)
	case uint64:
		return fees.Sats(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return fees.Sats(n)
		}
		if f, err := v.Float64(); err == nil {
			return fees.Sats(f)
		}
		return 0
	case map[string]any:
		if sats, ok := v["satoshis"]; ok {
			return numberToSats(sats)
		}
		// Nested shape: the smallest-unit field sits one level down.
		for _, inner := range v {
			if m, ok := inner.(map[string]any); ok {
				if sats, ok := m["satoshis"]; ok {
					return numberToSats(sats)
				}
			}
		}
		return 0
	default:
		return 0
	}
}

func numberToSats(v any) fees.Sats {
	switch n := v.(type) {
	case float64:
		return fees.Sats(n)
	case int:
		return fees.Sats(n)
	case int64:
		return fees.Sats(n)
	case uint64:
		return fees.Sats(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return fees.Sats(i)
		}
		if f, err := n.Float64(); err == nil {
			return fees.Sats(f)
		}
	}
	return 0
}
