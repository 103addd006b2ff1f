package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tuanvumaihuynh/product-pricing/internal/event"
	"github.com/tuanvumaihuynh/product-pricing/internal/model"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/pkg/outbox"
)

// newOutboxMsg builds an outbox message keyed by product id, so every event
// of one product lands on the same partition.
func newOutboxMsg(ctx context.Context, topic string, productID int64, ev any) (repository.CreateOutboxMsgParams, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return repository.CreateOutboxMsgParams{}, fmt.Errorf("marshal %s event: %w", topic, err)
	}

	key := strconv.FormatInt(productID, 10)
	return repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: &key,
	}, nil
}

func newPriceChangedOutboxMsg(ctx context.Context, history model.PriceHistory) (repository.CreateOutboxMsgParams, error) {
	return newOutboxMsg(ctx, event.TopicProductPriceChanged, history.ProductID, event.ProductPriceChangedEvent{
		HistoryID: history.ID,
		ProductID: history.ProductID,
		OldPrice:  history.OldPrice,
		NewPrice:  history.NewPrice,
		Reason:    history.Reason,
		ChangedAt: history.CreatedAt,
	})
}
