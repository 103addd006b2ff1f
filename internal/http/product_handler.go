package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/product-pricing/internal/service"
)

type productHandler struct {
	*Service
	productSvc service.ProductService
}

func newProductHandler(s *Service, productSvc service.ProductService) *productHandler {
	return &productHandler{
		Service:    s,
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListAllProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list all products: %w", err)
	}

	items := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		items = append(items, newProductResponse(product))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req CreateProductRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), req.toParams())
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	return writeJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, req.toParams())
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	return writeJSON(w, http.StatusOK, DeleteProductResponse{Detail: "product deleted"})
}
