package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/service"
)

// Money crosses the wire as JSON numbers. Requests are converted with
// decimal.NewFromFloat, which keeps the shortest decimal representation of
// the float the client sent.

type CreateProductRequest struct {
	Name     *string  `json:"name" validate:"required,notblank"`
	Category *string  `json:"category" validate:"required,notblank"`
	Cost     *float64 `json:"cost" validate:"required,finite,gte=0"`
	Price    *float64 `json:"price" validate:"required,finite,gte=0"`
}

func (r CreateProductRequest) toParams() service.CreateProductParams {
	return service.CreateProductParams{
		Name:     *r.Name,
		Category: *r.Category,
		Cost:     decimal.NewFromFloat(*r.Cost),
		Price:    decimal.NewFromFloat(*r.Price),
	}
}

// UpdateProductRequest is a partial update: absent and null fields are both
// left unchanged.
type UpdateProductRequest struct {
	Name     *string  `json:"name" validate:"omitnil,notblank"`
	Category *string  `json:"category" validate:"omitnil,notblank"`
	Cost     *float64 `json:"cost" validate:"omitnil,finite,gte=0"`
	Price    *float64 `json:"price" validate:"omitnil,finite,gte=0"`
}

func (r UpdateProductRequest) toParams() service.UpdateProductParams {
	return service.UpdateProductParams{
		Name:     r.Name,
		Category: r.Category,
		Cost:     decimalPtr(r.Cost),
		Price:    decimalPtr(r.Price),
	}
}

type BulkIncreaseRequest struct {
	Percentage *float64 `json:"percentage" validate:"required,finite"`
	Category   *string  `json:"category"`
	Reason     *string  `json:"reason"`
}

func (r BulkIncreaseRequest) toParams() service.BulkIncreaseParams {
	return service.BulkIncreaseParams{
		Percentage: decimal.NewFromFloat(*r.Percentage),
		Category:   r.Category,
		Reason:     r.Reason,
	}
}

type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Cost      float64   `json:"cost"`
	Price     float64   `json:"price"`
	Margin    float64   `json:"margin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Cost:      p.Cost.InexactFloat64(),
		Price:     p.Price.InexactFloat64(),
		Margin:    p.Margin().InexactFloat64(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type PriceHistoryResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	OldPrice  float64   `json:"old_price"`
	NewPrice  float64   `json:"new_price"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func newPriceHistoryResponse(h model.PriceHistory) PriceHistoryResponse {
	return PriceHistoryResponse{
		ID:        h.ID,
		ProductID: h.ProductID,
		OldPrice:  h.OldPrice.InexactFloat64(),
		NewPrice:  h.NewPrice.InexactFloat64(),
		Reason:    h.Reason,
		CreatedAt: h.CreatedAt,
	}
}

type BulkIncreaseResponse struct {
	Updated    int     `json:"updated"`
	Percentage float64 `json:"percentage"`
	Category   *string `json:"category"`
}

type DeleteProductResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
