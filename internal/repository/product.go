package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

type CreateProductParams struct {
	Name      string
	Category  string
	Cost      decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}

type UpdateProductPricesItem struct {
	ID        int64
	Price     decimal.Decimal
	UpdatedAt time.Time
}

type UpdateProductPricesParams struct {
	Items []UpdateProductPricesItem
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	ExistsProduct(ctx context.Context, id int64) (bool, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	UpdateProductPrices(ctx context.Context, params UpdateProductPricesParams) error
	DeleteProduct(ctx context.Context, id int64) error
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

type productRow struct {
	ID        int64           `db:"id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	Cost      decimal.Decimal `db:"cost"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (row productRow) toModel() model.Product {
	return model.Product{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category,
		Cost:      row.Cost,
		Price:     row.Price,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const productColumns = `id, name, category, cost, price, created_at, updated_at`

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO products (name, category, cost, price, created_at, updated_at)
		VALUES (@name, @category, @cost, @price, @created_at, @created_at)
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"name":       params.Name,
			"category":   params.Category,
			"cost":       params.Cost,
			"price":      params.Price,
			"created_at": params.CreatedAt,
		})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return model.Product{}, fmt.Errorf("collect created product: %w", err)
	}

	return row.toModel(), nil
}

func (r productRepository) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`,
		pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("get product %d: %w", id, ErrNotFound)
		}
		return model.Product{}, fmt.Errorf("collect product: %w", err)
	}

	return row.toModel(), nil
}

func (r productRepository) ExistsProduct(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)`,
		pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists product: %w", err)
	}

	return exists, nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.listProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`, nil)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	return products, nil
}

func (r productRepository) ListProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	products, err := r.listProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE category = @category ORDER BY id`,
		pgx.NamedArgs{"category": category})
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}

	return products, nil
}

func (r productRepository) listProducts(ctx context.Context, sql string, args pgx.NamedArgs) ([]model.Product, error) {
	var queryArgs []any
	if args != nil {
		queryArgs = append(queryArgs, args)
	}

	rows, err := r.db.Query(ctx, sql, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		products = append(products, row.toModel())
	}

	return products, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET
			name       = @name,
			category   = @category,
			cost       = @cost,
			price      = @price,
			updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"category":   product.Category,
		"cost":       product.Cost,
		"price":      product.Price,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %d: %w", product.ID, ErrNotFound)
	}

	return nil
}

func (r productRepository) UpdateProductPrices(ctx context.Context, params UpdateProductPricesParams) error {
	if len(params.Items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(params.Items))
	prices := make([]string, 0, len(params.Items))
	updatedAts := make([]time.Time, 0, len(params.Items))
	for _, item := range params.Items {
		ids = append(ids, item.ID)
		prices = append(prices, item.Price.String())
		updatedAts = append(updatedAts, item.UpdatedAt)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products AS p
		SET
			price      = u.price,
			updated_at = u.updated_at
		FROM (
			SELECT
				UNNEST(@ids::bigint[])              AS id,
				UNNEST(@prices::text[])::numeric    AS price,
				UNNEST(@updated_ats::timestamptz[]) AS updated_at
		) AS u
		WHERE p.id = u.id
	`, pgx.NamedArgs{
		"ids":         ids,
		"prices":      prices,
		"updated_ats": updatedAts,
	})
	if err != nil {
		return fmt.Errorf("update product prices: %w", err)
	}

	if tag.RowsAffected() != int64(len(params.Items)) {
		return fmt.Errorf("update product prices: %d of %d rows updated: %w",
			tag.RowsAffected(), len(params.Items), ErrNotFound)
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product %d: %w", id, ErrNotFound)
	}

	return nil
}
