package apperr

import "github.com/tuanvumaihuynh/product-pricing/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	ProductNotFoundErrorCode = "PRODUCT_NOT_FOUND"
	UnhealthyErrorCode       = "SERVICE_UNHEALTHY"
)

var (
	ValidationErr      = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	UnhealthyErr       = zerror.NewServiceUnavailable(UnhealthyErrorCode, "service unhealthy")
)
