package model

import "github.com/shopspring/decimal"

// PriceMultiplier converts a percentage change into a price factor,
// e.g. 10 -> 1.1 and -25 -> 0.75.
func PriceMultiplier(percentage decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(percentage.Div(hundred))
}

// AdjustPrice applies multiplier to price and rounds the result to cents.
func AdjustPrice(price, multiplier decimal.Decimal) decimal.Decimal {
	return price.Mul(multiplier).Round(2)
}
