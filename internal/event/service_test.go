package event_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-pricing/internal/event"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	running  bool
	stopped  bool
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{handlers: map[string]mq.HandlerFunc{}}
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if _, ok := c.handlers[topic]; ok {
		return assert.AnError
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.running = true
	return func() { c.stopped = true }, nil
}

func TestService_Run(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := newFakeConsumer()
	svc := event.New(logger, consumer)

	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, consumer.running)

	for _, topic := range event.Topics {
		assert.Contains(t, consumer.handlers, topic)
	}

	ctx := context.Background()
	payload := []byte(`{"history_id":3,"product_id":7,"old_price":"10","new_price":"11","reason":"bulk adjustment","changed_at":"2025-01-01T00:00:00Z"}`)
	require.NoError(t, consumer.handlers[event.TopicProductPriceChanged](ctx, event.TopicProductPriceChanged, payload))
	assert.Contains(t, buf.String(), `"new_price":"11"`)
	assert.Contains(t, buf.String(), `"reason":"bulk adjustment"`)

	err = consumer.handlers[event.TopicProductCreated](ctx, event.TopicProductCreated, []byte(`not json`))
	assert.ErrorContains(t, err, "unmarshal product.created event")

	cleanup()
	assert.True(t, consumer.stopped)
}

func TestService_RegisterHandlersTwice(t *testing.T) {
	svc := event.New(slog.Default(), newFakeConsumer())

	require.NoError(t, svc.RegisterHandlers())
	assert.Error(t, svc.RegisterHandlers())
}
