package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-pricing/internal/storage/mq"
)

// Service is the event service.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.RegisterHandlers(); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// RegisterHandlers subscribes the consumer to every product topic.
func (s *Service) RegisterHandlers() error {
	registrations := []struct {
		topic   string
		handler mq.HandlerFunc
	}{
		{TopicProductCreated, jsonHandler(s.handleProductCreatedEvent)},
		{TopicProductUpdated, jsonHandler(s.handleProductUpdatedEvent)},
		{TopicProductDeleted, jsonHandler(s.handleProductDeletedEvent)},
		{TopicProductPriceChanged, jsonHandler(s.handleProductPriceChangedEvent)},
	}

	for _, reg := range registrations {
		if err := s.mqConsumer.RegisterHandler(reg.topic, reg.handler); err != nil {
			return fmt.Errorf("register %s event handler: %w", reg.topic, err)
		}
	}

	return nil
}

func jsonHandler[T any](fn func(ctx context.Context, ev T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := fn(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
