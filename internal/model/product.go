package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64
	Name      string
	Category  string
	Cost      decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Margin returns the markup of the product price over its cost.
func (p Product) Margin() decimal.Decimal {
	return ComputeMargin(p.Cost, p.Price)
}

var hundred = decimal.NewFromInt(100)

// ComputeMargin returns ((price - cost) / cost) * 100 rounded to 2 decimal
// places, or zero when cost is zero.
func ComputeMargin(cost, price decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(hundred).Round(2)
}
