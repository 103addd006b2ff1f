package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-pricing/internal/apperr"
	"github.com/tuanvumaihuynh/product-pricing/internal/event"
	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
	"github.com/tuanvumaihuynh/product-pricing/pkg/ptr"
)

type CreateProductParams struct {
	Name     string
	Category string
	Cost     decimal.Decimal
	Price    decimal.Decimal
}

// UpdateProductParams holds the fields of a partial update. A nil field is
// left unchanged.
type UpdateProductParams struct {
	Name     *string
	Category *string
	Cost     *decimal.Decimal
	Price    *decimal.Decimal
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	db               db.DB
	productRepo      repository.ProductRepository
	priceHistoryRepo repository.PriceHistoryRepository
	outboxMsgRepo    repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:               db,
		productRepo:      productRepo,
		priceHistoryRepo: priceHistoryRepo,
		outboxMsgRepo:    outboxMsgRepo,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	var product model.Product

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			CreateProduct(ctx, repository.CreateProductParams{
				Name:      params.Name,
				Category:  params.Category,
				Cost:      params.Cost,
				Price:     params.Price,
				CreatedAt: now(),
			})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		msg, err := newOutboxMsg(ctx, event.TopicProductCreated, product.ID, event.ProductCreatedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			Cost:      product.Cost,
			Price:     product.Price,
			CreatedAt: product.CreatedAt,
		})
		if err != nil {
			return err
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsgs(ctx, []repository.CreateOutboxMsgParams{msg}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msgs: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, productErr(id, fmt.Errorf("product repository get product: %w", err))
	}

	return product, nil
}

// UpdateProduct applies the supplied fields and refreshes updated_at even
// when nothing else changes. A price history entry is written only when the
// price is supplied and differs from the stored one.
func (s *productService) UpdateProduct(ctx context.Context, id int64, params UpdateProductParams) (model.Product, error) {
	var product model.Product

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			GetProduct(ctx, id)
		if err != nil {
			return productErr(id, fmt.Errorf("product repository get product: %w", err))
		}

		oldPrice := product.Price
		if params.Name != nil {
			product.Name = *params.Name
		}
		if params.Category != nil {
			product.Category = *params.Category
		}
		if params.Cost != nil {
			product.Cost = *params.Cost
		}
		if params.Price != nil {
			product.Price = *params.Price
		}
		product.UpdatedAt = latest(now(), product.CreatedAt)

		if err := s.productRepo.
			WithDB(db).
			UpdateProduct(ctx, product); err != nil {
			return productErr(id, fmt.Errorf("product repository update product: %w", err))
		}

		msg, err := newOutboxMsg(ctx, event.TopicProductUpdated, product.ID, event.ProductUpdatedEvent{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			Cost:      product.Cost,
			Price:     product.Price,
			UpdatedAt: product.UpdatedAt,
		})
		if err != nil {
			return err
		}
		msgs := []repository.CreateOutboxMsgParams{msg}

		if params.Price != nil && !params.Price.Equal(oldPrice) {
			history, err := s.priceHistoryRepo.
				WithDB(db).
				CreatePriceHistory(ctx, repository.CreatePriceHistoryParams{
					ProductID: product.ID,
					OldPrice:  oldPrice,
					NewPrice:  product.Price,
					Reason:    ptr.New(model.PriceChangeReasonIndividual),
					CreatedAt: product.UpdatedAt,
				})
			if err != nil {
				return fmt.Errorf("price history repository create price history: %w", err)
			}

			msg, err := newPriceChangedOutboxMsg(ctx, history)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsgs(ctx, msgs); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msgs: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	return product, nil
}

// DeleteProduct removes the product only. Its price history is kept.
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			DeleteProduct(ctx, id); err != nil {
			return productErr(id, fmt.Errorf("product repository delete product: %w", err))
		}

		msg, err := newOutboxMsg(ctx, event.TopicProductDeleted, id, event.ProductDeletedEvent{
			ProductID: id,
			DeletedAt: now(),
		})
		if err != nil {
			return err
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsgs(ctx, []repository.CreateOutboxMsgParams{msg}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msgs: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

// productErr converts a repository miss into the product not found error.
func productErr(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ProductNotFoundErr.
			WithMsg("product %d not found", id).
			WrapParent(err)
	}
	return err
}

// now is truncated to the storage precision, so values returned to callers
// equal the values read back later.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func latest(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
