package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
)

type CreatePriceHistoryParams struct {
	ProductID int64
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Reason    *string
	CreatedAt time.Time
}

// PriceHistoryRepository persists history entries. It has no update or
// delete operation: entries are immutable once written.
type PriceHistoryRepository interface {
	WithDB(db db.DB) PriceHistoryRepository
	CreatePriceHistory(ctx context.Context, params CreatePriceHistoryParams) (model.PriceHistory, error)
	BulkCreatePriceHistories(ctx context.Context, params []CreatePriceHistoryParams) ([]model.PriceHistory, error)
	ListPriceHistoriesByProduct(ctx context.Context, productID int64) ([]model.PriceHistory, error)
}

type priceHistoryRepository struct {
	db db.DB
}

func NewPriceHistoryRepository(db db.DB) PriceHistoryRepository {
	return &priceHistoryRepository{
		db: db,
	}
}

func (r priceHistoryRepository) WithDB(db db.DB) PriceHistoryRepository {
	return &priceHistoryRepository{
		db: db,
	}
}

type priceHistoryRow struct {
	ID        int64           `db:"id"`
	ProductID int64           `db:"product_id"`
	OldPrice  decimal.Decimal `db:"old_price"`
	NewPrice  decimal.Decimal `db:"new_price"`
	Reason    *string         `db:"reason"`
	CreatedAt time.Time       `db:"created_at"`
}

func (row priceHistoryRow) toModel() model.PriceHistory {
	return model.PriceHistory{
		ID:        row.ID,
		ProductID: row.ProductID,
		OldPrice:  row.OldPrice,
		NewPrice:  row.NewPrice,
		Reason:    row.Reason,
		CreatedAt: row.CreatedAt,
	}
}

const priceHistoryColumns = `id, product_id, old_price, new_price, reason, created_at`

func (r priceHistoryRepository) CreatePriceHistory(ctx context.Context, params CreatePriceHistoryParams) (model.PriceHistory, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO price_history (product_id, old_price, new_price, reason, created_at)
		VALUES (@product_id, @old_price, @new_price, @reason, @created_at)
		RETURNING `+priceHistoryColumns,
		pgx.NamedArgs{
			"product_id": params.ProductID,
			"old_price":  params.OldPrice,
			"new_price":  params.NewPrice,
			"reason":     params.Reason,
			"created_at": params.CreatedAt,
		})
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("create price history: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[priceHistoryRow])
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("collect created price history: %w", err)
	}

	return row.toModel(), nil
}

// BulkCreatePriceHistories inserts all entries with a single statement.
// The result is in the same order as params.
func (r priceHistoryRepository) BulkCreatePriceHistories(ctx context.Context, params []CreatePriceHistoryParams) ([]model.PriceHistory, error) {
	if len(params) == 0 {
		return nil, nil
	}

	productIDs := make([]int64, 0, len(params))
	oldPrices := make([]string, 0, len(params))
	newPrices := make([]string, 0, len(params))
	reasons := make([]*string, 0, len(params))
	createdAts := make([]time.Time, 0, len(params))
	for _, p := range params {
		productIDs = append(productIDs, p.ProductID)
		oldPrices = append(oldPrices, p.OldPrice.String())
		newPrices = append(newPrices, p.NewPrice.String())
		reasons = append(reasons, p.Reason)
		createdAts = append(createdAts, p.CreatedAt)
	}

	rows, err := r.db.Query(ctx, `
		WITH inserted AS (
			INSERT INTO price_history (product_id, old_price, new_price, reason, created_at)
			SELECT
				t.product_id,
				t.old_price::numeric,
				t.new_price::numeric,
				t.reason,
				t.created_at
			FROM UNNEST(
				@product_ids::bigint[],
				@old_prices::text[],
				@new_prices::text[],
				@reasons::text[],
				@created_ats::timestamptz[]
			) WITH ORDINALITY AS t(product_id, old_price, new_price, reason, created_at, ord)
			ORDER BY t.ord
			RETURNING `+priceHistoryColumns+`
		)
		SELECT `+priceHistoryColumns+` FROM inserted ORDER BY id
	`, pgx.NamedArgs{
		"product_ids": productIDs,
		"old_prices":  oldPrices,
		"new_prices":  newPrices,
		"reasons":     reasons,
		"created_ats": createdAts,
	})
	if err != nil {
		return nil, fmt.Errorf("bulk create price histories: %w", err)
	}

	historyRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[priceHistoryRow])
	if err != nil {
		return nil, fmt.Errorf("collect created price histories: %w", err)
	}

	if len(historyRows) != len(params) {
		return nil, fmt.Errorf("bulk create price histories: inserted %d of %d rows", len(historyRows), len(params))
	}

	histories := make([]model.PriceHistory, 0, len(historyRows))
	for _, row := range historyRows {
		histories = append(histories, row.toModel())
	}

	return histories, nil
}

// ListPriceHistoriesByProduct returns the entries of a product, most recent
// first. Entries written by the same bulk adjustment share created_at, so
// the id breaks ties.
func (r priceHistoryRepository) ListPriceHistoriesByProduct(ctx context.Context, productID int64) ([]model.PriceHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+priceHistoryColumns+`
		FROM price_history
		WHERE product_id = @product_id
		ORDER BY created_at DESC, id DESC
	`, pgx.NamedArgs{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("list price histories by product: %w", err)
	}

	historyRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[priceHistoryRow])
	if err != nil {
		return nil, fmt.Errorf("collect price histories: %w", err)
	}

	histories := make([]model.PriceHistory, 0, len(historyRows))
	for _, row := range historyRows {
		histories = append(histories, row.toModel())
	}

	return histories, nil
}
