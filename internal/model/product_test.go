package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-pricing/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeMargin(t *testing.T) {
	tests := []struct {
		name  string
		cost  string
		price string
		want  string
	}{
		{name: "zero cost", cost: "0", price: "150", want: "0"},
		{name: "zero cost zero price", cost: "0", price: "0", want: "0"},
		{name: "fifty percent markup", cost: "100", price: "150", want: "50"},
		{name: "no markup", cost: "100", price: "100", want: "0"},
		{name: "selling at a loss", cost: "80", price: "60", want: "-25"},
		{name: "rounded to two places", cost: "3", price: "4", want: "33.33"},
		{name: "tiny markup rounds to zero", cost: "8", price: "8.0001", want: "0"},
		{name: "fractional cost", cost: "0.30", price: "1.00", want: "233.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.ComputeMargin(d(tt.cost), d(tt.price))
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestProductMargin(t *testing.T) {
	p := model.Product{Cost: d("200"), Price: d("250")}
	assert.True(t, d("25").Equal(p.Margin()))
}

func TestAdjustPrice(t *testing.T) {
	tests := []struct {
		name       string
		price      string
		percentage string
		want       string
	}{
		{name: "ten percent increase", price: "100", percentage: "10", want: "110"},
		{name: "ten percent of two hundred", price: "200", percentage: "10", want: "220"},
		{name: "decrease", price: "80", percentage: "-25", want: "60"},
		{name: "more than doubling", price: "10", percentage: "150", want: "25"},
		{name: "rounded to cents", price: "9.99", percentage: "3.3", want: "10.32"},
		{name: "zero percent", price: "12.34", percentage: "0", want: "12.34"},
		{name: "minus one hundred", price: "12.34", percentage: "-100", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.AdjustPrice(d(tt.price), model.PriceMultiplier(d(tt.percentage)))
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
