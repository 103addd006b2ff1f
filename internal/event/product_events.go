package event

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated      = "product.created"
	TopicProductUpdated      = "product.updated"
	TopicProductDeleted      = "product.deleted"
	TopicProductPriceChanged = "product.price_changed"
)

// Topics lists every topic published through the outbox.
var Topics = []string{
	TopicProductCreated,
	TopicProductUpdated,
	TopicProductDeleted,
	TopicProductPriceChanged,
}

type ProductCreatedEvent struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProductUpdatedEvent struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductDeletedEvent struct {
	ProductID int64     `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ProductPriceChangedEvent mirrors one price history entry.
type ProductPriceChangedEvent struct {
	HistoryID int64           `json:"history_id"`
	ProductID int64           `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	Reason    *string         `json:"reason"`
	ChangedAt time.Time       `json:"changed_at"`
}
