package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-pricing/internal/apperr"
	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
	"github.com/tuanvumaihuynh/product-pricing/pkg/ptr"
)

type BulkIncreaseParams struct {
	// Percentage may be negative (a decrease) or above 100.
	Percentage decimal.Decimal
	// Category restricts the adjustment to one exact category. Nil or empty
	// means every product.
	Category *string
	// Reason is recorded on every history entry. Defaults to
	// model.PriceChangeReasonBulk.
	Reason *string
}

type BulkIncreaseResult struct {
	Updated    int
	Percentage decimal.Decimal
	Category   *string
}

type PriceService interface {
	BulkIncrease(ctx context.Context, params BulkIncreaseParams) (BulkIncreaseResult, error)
	GetPriceHistory(ctx context.Context, productID int64) ([]model.PriceHistory, error)
}

type priceService struct {
	db               db.DB
	productRepo      repository.ProductRepository
	priceHistoryRepo repository.PriceHistoryRepository
	outboxMsgRepo    repository.OutboxMsgRepository
}

func NewPriceService(
	db db.DB,
	productRepo repository.ProductRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) PriceService {
	return &priceService{
		db:               db,
		productRepo:      productRepo,
		priceHistoryRepo: priceHistoryRepo,
		outboxMsgRepo:    outboxMsgRepo,
	}
}

// BulkIncrease multiplies the price of every selected product by
// 1 + percentage/100, rounded to cents, and records one history entry per
// product in the same transaction. Unlike UpdateProduct, an entry is written
// even when the rounded price does not change. No range is enforced on the
// percentage: below -100 the resulting prices are negative.
func (s *priceService) BulkIncrease(ctx context.Context, params BulkIncreaseParams) (BulkIncreaseResult, error) {
	category := params.Category
	if category != nil && *category == "" {
		category = nil
	}

	reason := params.Reason
	if reason == nil {
		reason = ptr.New(model.PriceChangeReasonBulk)
	}

	result := BulkIncreaseResult{
		Percentage: params.Percentage,
		Category:   category,
	}

	multiplier := model.PriceMultiplier(params.Percentage)

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		var (
			products []model.Product
			err      error
		)
		if category != nil {
			products, err = productRepo.ListProductsByCategory(ctx, *category)
		} else {
			products, err = productRepo.ListAllProducts(ctx)
		}
		if err != nil {
			return fmt.Errorf("product repository list products: %w", err)
		}

		if len(products) == 0 {
			return nil
		}

		changedAt := now()
		items := make([]repository.UpdateProductPricesItem, 0, len(products))
		historyParams := make([]repository.CreatePriceHistoryParams, 0, len(products))
		for _, product := range products {
			newPrice := model.AdjustPrice(product.Price, multiplier)
			updatedAt := latest(changedAt, product.CreatedAt)

			items = append(items, repository.UpdateProductPricesItem{
				ID:        product.ID,
				Price:     newPrice,
				UpdatedAt: updatedAt,
			})
			historyParams = append(historyParams, repository.CreatePriceHistoryParams{
				ProductID: product.ID,
				OldPrice:  product.Price,
				NewPrice:  newPrice,
				Reason:    reason,
				CreatedAt: updatedAt,
			})
		}

		if err := productRepo.UpdateProductPrices(ctx, repository.UpdateProductPricesParams{
			Items: items,
		}); err != nil {
			return fmt.Errorf("product repository update product prices: %w", err)
		}

		histories, err := s.priceHistoryRepo.
			WithDB(db).
			BulkCreatePriceHistories(ctx, historyParams)
		if err != nil {
			return fmt.Errorf("price history repository bulk create price histories: %w", err)
		}

		msgs := make([]repository.CreateOutboxMsgParams, 0, len(histories))
		for _, history := range histories {
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

		result.Updated = len(products)
		return nil
	}); err != nil {
		return BulkIncreaseResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return result, nil
}

// GetPriceHistory returns the price history of an existing product, most
// recent first. A product without history yields an empty slice.
func (s *priceService) GetPriceHistory(ctx context.Context, productID int64) ([]model.PriceHistory, error) {
	exists, err := s.productRepo.ExistsProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product repository exists product: %w", err)
	}

	if !exists {
		return nil, apperr.ProductNotFoundErr.WithMsg("product %d not found", productID)
	}

	histories, err := s.priceHistoryRepo.ListPriceHistoriesByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("price history repository list price histories by product: %w", err)
	}

	if histories == nil {
		histories = []model.PriceHistory{}
	}

	return histories, nil
}
