package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PriceChangeReasonIndividual is recorded for every price change made
	// through a single product update.
	PriceChangeReasonIndividual = "individual update"

	// PriceChangeReasonBulk is recorded by bulk adjustments when the caller
	// does not supply a reason.
	PriceChangeReasonBulk = "bulk adjustment"
)

// PriceHistory is an immutable record of one price transition of a product.
// ProductID is a plain reference: rows outlive the product they point to.
type PriceHistory struct {
	ID        int64
	ProductID int64
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Reason    *string
	CreatedAt time.Time
}
