package service

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// applyMultiplier scales a minor-unit amount and rounds half away from zero.
// Every decimal multiplication in a quote goes through here so no fractional
// cents are ever carried forward.
func applyMultiplier(amount int64, m decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(m).Round(0).IntPart()
}

func percentOf(amount int64, pct decimal.Decimal) int64 {
	return applyMultiplier(amount, pct.Div(hundred))
}

// discountFactor turns a percentage off into a multiplier: 20 -> 0.8.
func discountFactor(pct *decimal.Decimal) decimal.Decimal {
	if pct == nil {
		return one
	}
	return one.Sub(pct.Div(hundred))
}

func formatMultiplier(m decimal.Decimal) string {
	return m.StringFixed(3)
}
