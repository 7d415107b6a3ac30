package checkout

import "github.com/shopspring/decimal"

// ToMinorUnits converts a major-unit price to the processor's integer minor
// units, rounding half away from zero.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts a processor amount back to major units.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
