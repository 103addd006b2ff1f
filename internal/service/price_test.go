package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-pricing/internal/apperr"
	"github.com/tuanvumaihuynh/product-pricing/internal/event"
	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/internal/service"
	"github.com/tuanvumaihuynh/product-pricing/pkg/ptr"
)

func newPriceService(store *fakeStore) service.PriceService {
	return service.NewPriceService(
		&fakeDB{store: store},
		fakeProductRepo{store},
		fakePriceHistoryRepo{store},
		fakeOutboxMsgRepo{store},
	)
}

func TestPriceService_BulkIncrease(t *testing.T) {
	ctx := context.Background()

	t.Run("Should increase every product when no category is given", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(
			model.Product{Name: "A", Category: "coffee", Cost: dec("50"), Price: dec("100")},
			model.Product{Name: "B", Category: "tea", Cost: dec("50"), Price: dec("200")},
		)
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("10")})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Updated)
		assert.True(t, dec("10").Equal(result.Percentage))
		assert.Nil(t, result.Category)

		assert.True(t, dec("110").Equal(store.products[seeded[0].ID].Price))
		assert.True(t, dec("220").Equal(store.products[seeded[1].ID].Price))

		require.Len(t, store.histories, 2)
		for _, h := range store.histories {
			require.NotNil(t, h.Reason)
			assert.Equal(t, model.PriceChangeReasonBulk, *h.Reason)
		}
		assert.True(t, dec("100").Equal(store.historiesOf(seeded[0].ID)[0].OldPrice))
		assert.True(t, dec("110").Equal(store.historiesOf(seeded[0].ID)[0].NewPrice))

		assert.Equal(t, []string{event.TopicProductPriceChanged, event.TopicProductPriceChanged}, store.topics())
		assert.Equal(t, 1, store.txCount)
	})

	t.Run("Should only touch the requested category", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(
			model.Product{Name: "A", Category: "coffee", Price: dec("10")},
			model.Product{Name: "B", Category: "Coffee", Price: dec("10")},
			model.Product{Name: "C", Category: "coffee", Price: dec("20")},
		)
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{
			Percentage: dec("-25"),
			Category:   ptr.New("coffee"),
			Reason:     ptr.New("summer sale"),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Updated)
		require.NotNil(t, result.Category)
		assert.Equal(t, "coffee", *result.Category)

		assert.True(t, dec("7.5").Equal(store.products[seeded[0].ID].Price))
		assert.True(t, dec("10").Equal(store.products[seeded[1].ID].Price))
		assert.True(t, dec("15").Equal(store.products[seeded[2].ID].Price))

		assert.Empty(t, store.historiesOf(seeded[1].ID))
		require.Len(t, store.historiesOf(seeded[2].ID), 1)
		assert.Equal(t, "summer sale", *store.historiesOf(seeded[2].ID)[0].Reason)
	})

	t.Run("Should treat an empty category as no filter", func(t *testing.T) {
		store := newFakeStore()
		store.seed(
			model.Product{Category: "a", Price: dec("1")},
			model.Product{Category: "b", Price: dec("1")},
		)
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{
			Percentage: dec("100"),
			Category:   ptr.New(""),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Updated)
		assert.Nil(t, result.Category)
	})

	t.Run("Should report zero updates for an empty selection", func(t *testing.T) {
		store := newFakeStore()
		store.seed(model.Product{Category: "tea", Price: dec("3")})
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{
			Percentage: dec("10"),
			Category:   ptr.New("coffee"),
		})
		require.NoError(t, err)

		assert.Equal(t, 0, result.Updated)
		assert.Equal(t, "coffee", *result.Category)
		assert.Empty(t, store.histories)
		assert.Empty(t, store.outboxMsgs)
	})

	t.Run("Should record history even when the rounded price is unchanged", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(model.Product{Category: "misc", Price: dec("1.00")})
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("0.1")})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)

		histories := store.historiesOf(seeded[0].ID)
		require.Len(t, histories, 1)
		assert.True(t, histories[0].OldPrice.Equal(histories[0].NewPrice))
	})

	t.Run("Should refresh updated_at on every adjusted product", func(t *testing.T) {
		store := newFakeStore()
		old := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
		seeded := store.seed(model.Product{Category: "x", Price: dec("5"), CreatedAt: old, UpdatedAt: old})
		svc := newPriceService(store)

		_, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("1")})
		require.NoError(t, err)

		product := store.products[seeded[0].ID]
		assert.True(t, product.UpdatedAt.After(old))
		assert.Equal(t, product.UpdatedAt, store.historiesOf(seeded[0].ID)[0].CreatedAt)
	})

	t.Run("Should accept percentages below minus one hundred", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(model.Product{Category: "x", Price: dec("10")})
		svc := newPriceService(store)

		result, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("-150")})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)

		assert.True(t, dec("-5").Equal(store.products[seeded[0].ID].Price))
		assert.True(t, dec("-5").Equal(store.historiesOf(seeded[0].ID)[0].NewPrice))
	})

	t.Run("Should never set updated_at before created_at", func(t *testing.T) {
		store := newFakeStore()
		future := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
		seeded := store.seed(
			model.Product{Category: "x", Price: dec("5"), CreatedAt: future, UpdatedAt: future},
			model.Product{Category: "x", Price: dec("5")},
		)
		svc := newPriceService(store)

		_, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("10")})
		require.NoError(t, err)

		skewed := store.products[seeded[0].ID]
		assert.Equal(t, future, skewed.UpdatedAt)
		assert.Equal(t, future, store.historiesOf(seeded[0].ID)[0].CreatedAt)

		regular := store.products[seeded[1].ID]
		assert.True(t, regular.UpdatedAt.Before(future))
		assert.Equal(t, regular.UpdatedAt, store.historiesOf(seeded[1].ID)[0].CreatedAt)
	})

	t.Run("Should persist nothing when any write of the batch fails", func(t *testing.T) {
		for _, method := range []string{"UpdateProductPrices", "BulkCreatePriceHistories", "CreateOutboxMsgs"} {
			t.Run(method, func(t *testing.T) {
				store := newFakeStore()
				seeded := store.seed(
					model.Product{Category: "x", Price: dec("10")},
					model.Product{Category: "x", Price: dec("20")},
				)
				store.failOn = method
				svc := newPriceService(store)

				_, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("50")})
				require.ErrorIs(t, err, errInjected)

				assert.True(t, dec("10").Equal(store.products[seeded[0].ID].Price))
				assert.True(t, dec("20").Equal(store.products[seeded[1].ID].Price))
				assert.Empty(t, store.histories)
				assert.Empty(t, store.outboxMsgs)
			})
		}
	})

	t.Run("Should publish price changed events matching history entries", func(t *testing.T) {
		store := newFakeStore()
		store.seed(model.Product{Category: "x", Price: dec("40")})
		svc := newPriceService(store)

		_, err := svc.BulkIncrease(ctx, service.BulkIncreaseParams{Percentage: dec("5")})
		require.NoError(t, err)

		require.Len(t, store.outboxMsgs, 1)
		var ev event.ProductPriceChangedEvent
		require.NoError(t, json.Unmarshal(store.outboxMsgs[0].Payload, &ev))
		assert.Equal(t, store.histories[0].ID, ev.HistoryID)
		assert.True(t, dec("42").Equal(ev.NewPrice))
	})
}

func TestPriceService_GetPriceHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return an empty list for a product without history", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(model.Product{Category: "x", Price: dec("1")})
		svc := newPriceService(store)

		histories, err := svc.GetPriceHistory(ctx, seeded[0].ID)
		require.NoError(t, err)
		assert.NotNil(t, histories)
		assert.Empty(t, histories)
	})

	t.Run("Should return not found for an unknown product", func(t *testing.T) {
		svc := newPriceService(newFakeStore())

		_, err := svc.GetPriceHistory(ctx, 7)
		assert.ErrorIs(t, err, apperr.ProductNotFoundErr)
	})

	t.Run("Should return entries newest first", func(t *testing.T) {
		store := newFakeStore()
		seeded := store.seed(model.Product{Category: "x", Price: dec("10")})
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		historyRepo := fakePriceHistoryRepo{store}
		for i, price := range []string{"11", "12", "13"} {
			_, err := historyRepo.CreatePriceHistory(ctx, repository.CreatePriceHistoryParams{
				ProductID: seeded[0].ID,
				OldPrice:  dec("10"),
				NewPrice:  dec(price),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}
		svc := newPriceService(store)

		histories, err := svc.GetPriceHistory(ctx, seeded[0].ID)
		require.NoError(t, err)
		require.Len(t, histories, 3)
		assert.True(t, dec("13").Equal(histories[0].NewPrice))
		assert.True(t, dec("12").Equal(histories[1].NewPrice))
		assert.True(t, dec("11").Equal(histories[2].NewPrice))
	})
}
