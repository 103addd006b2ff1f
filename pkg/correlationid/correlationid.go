package correlationid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP and Kafka header carrying the correlation id.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// New generates a new correlation id.
func New() string {
	return uuid.NewString()
}

// NewContext returns a copy of ctx carrying the given correlation id.
func NewContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, correlationID)
}

// FromContext returns the correlation id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(ctxKey{}).(string)
	if !ok || correlationID == "" {
		return "", false
	}
	return correlationID, true
}
