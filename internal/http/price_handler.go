package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/product-pricing/internal/service"
)

type priceHandler struct {
	*Service
	priceSvc service.PriceService
}

func newPriceHandler(s *Service, priceSvc service.PriceService) *priceHandler {
	return &priceHandler{
		Service:  s,
		priceSvc: priceSvc,
	}
}

func (h *priceHandler) BulkIncrease(w http.ResponseWriter, r *http.Request) error {
	var req BulkIncreaseRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	result, err := h.priceSvc.BulkIncrease(r.Context(), req.toParams())
	if err != nil {
		return fmt.Errorf("price service bulk increase: %w", err)
	}

	return writeJSON(w, http.StatusOK, BulkIncreaseResponse{
		Updated:    result.Updated,
		Percentage: result.Percentage.InexactFloat64(),
		Category:   result.Category,
	})
}

func (h *priceHandler) GetPriceHistory(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	histories, err := h.priceSvc.GetPriceHistory(r.Context(), id)
	if err != nil {
		return fmt.Errorf("price service get price history: %w", err)
	}

	items := make([]PriceHistoryResponse, 0, len(histories))
	for _, history := range histories {
		items = append(items, newPriceHistoryResponse(history))
	}

	return writeJSON(w, http.StatusOK, items)
}
