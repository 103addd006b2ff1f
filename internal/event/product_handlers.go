package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event",
		slog.Int64("product_id", ev.ProductID),
		slog.String("category", ev.Category),
		slog.String("price", ev.Price.String()),
	)
	return nil
}

func (s *Service) handleProductUpdatedEvent(ctx context.Context, ev ProductUpdatedEvent) error {
	s.logger.InfoContext(ctx, "handling product updated event",
		slog.Int64("product_id", ev.ProductID),
		slog.Time("updated_at", ev.UpdatedAt),
	)
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event",
		slog.Int64("product_id", ev.ProductID),
	)
	return nil
}

func (s *Service) handleProductPriceChangedEvent(ctx context.Context, ev ProductPriceChangedEvent) error {
	attrs := []any{
		slog.Int64("history_id", ev.HistoryID),
		slog.Int64("product_id", ev.ProductID),
		slog.String("old_price", ev.OldPrice.String()),
		slog.String("new_price", ev.NewPrice.String()),
	}
	if ev.Reason != nil {
		attrs = append(attrs, slog.String("reason", *ev.Reason))
	}

	s.logger.InfoContext(ctx, "handling product price changed event", attrs...)
	return nil
}
