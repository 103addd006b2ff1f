package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/product-pricing/internal/apperr"
)

var errNotHealthy = errors.New("database is not healthy")

// Health answers 200 when the database is reachable and 503 otherwise.
func (s *Service) Health(w http.ResponseWriter, r *http.Request) error {
	healthy, err := s.healthChecker.IsHealthy(r.Context())
	if err != nil {
		return apperr.UnhealthyErr.WrapParent(fmt.Errorf("database health check: %w", err))
	}
	if !healthy {
		return apperr.UnhealthyErr.WrapParent(errNotHealthy)
	}

	return writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
