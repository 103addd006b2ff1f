package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-pricing/internal/config"
	"github.com/tuanvumaihuynh/product-pricing/internal/repository"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
	"github.com/tuanvumaihuynh/product-pricing/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-pricing/pkg/outbox"
	"github.com/tuanvumaihuynh/product-pricing/pkg/ptr"
)

// Service moves product events from the outbox table to Kafka. Each batch is
// locked with FOR UPDATE SKIP LOCKED, so several relays can run side by side.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

// Run relays in the background. The cleanup lets an in-flight batch finish
// for up to cfg.ShutdownTimeout before cancelling it.
func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(s.cfg.ShutdownTimeout):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			count, err := s.RelayBatch(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
				continue
			}
			if count > 0 {
				s.logger.DebugContext(ctx, "relayed outbox msgs", slog.Int("count", count))
			}
		}
	}
}

// RelayBatch produces one batch of unprocessed outbox messages and marks
// each of them processed, recording the produce error when there is one.
// It returns the number of messages picked up.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	var count int

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				//nolint:gosec
				BatchSize: int32(s.cfg.BatchSize),
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		count = len(outboxMsgs)
		if count == 0 {
			return nil
		}

		items := make([]repository.BulkUpdateOutboxMsgsItem, len(outboxMsgs))
		var wg sync.WaitGroup
		for i, msg := range outboxMsgs {
			wg.Go(func() {
				items[i] = s.produce(ctx, msg)
			})
		}
		wg.Wait()

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// produce sends one message under the trace and correlation id captured when
// it was written, so consumers continue the request's trace.
func (s *Service) produce(ctx context.Context, msg repository.ListUnprocessedOutboxMsgsResult) repository.BulkUpdateOutboxMsgsItem {
	msgCtx := outbox.ExtractContextFromHeaders(ctx, msg.Headers)

	err := s.mqProducer.Produce(msgCtx, mq.ProduceMsg{
		Topic:        msg.Topic,
		Headers:      msg.Headers,
		Payload:      msg.Payload,
		PartitionKey: msg.PartitionKey,
	})
	if err != nil {
		relayedMsgsTotal.WithLabelValues(msg.Topic, resultFailed).Inc()
		s.logger.ErrorContext(msgCtx, "error producing message",
			slog.String("outbox_msg_id", msg.ID.String()),
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
		return repository.BulkUpdateOutboxMsgsItem{
			ID:    msg.ID,
			Error: ptr.New(err.Error()),
		}
	}

	relayedMsgsTotal.WithLabelValues(msg.Topic, resultProduced).Inc()
	return repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}
}
