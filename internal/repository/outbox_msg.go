package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/product-pricing/internal/storage/db"
)

type CreateOutboxMsgParams struct {
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type ListUnprocessedOutboxMsgsParams struct {
	BatchSize int32
}

type ListUnprocessedOutboxMsgsResult struct {
	ID           uuid.UUID
	Topic        string
	Headers      map[string]string
	Payload      json.RawMessage
	PartitionKey *string
}

type BulkUpdateOutboxMsgsItem struct {
	ID    uuid.UUID
	Error *string
}

type BulkUpdateOutboxMsgsParams struct {
	Items []BulkUpdateOutboxMsgsItem
}

type OutboxMsgRepository interface {
	WithDB(db db.DB) OutboxMsgRepository
	CreateOutboxMsgs(ctx context.Context, params []CreateOutboxMsgParams) error
	ListUnprocessedOutboxMsgs(ctx context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error)
	BulkUpdateOutboxMsgs(ctx context.Context, params BulkUpdateOutboxMsgsParams) error
}

type outboxMsgRepository struct {
	db db.DB
}

func NewOutboxMsgRepository(db db.DB) OutboxMsgRepository {
	return &outboxMsgRepository{
		db: db,
	}
}

func (r outboxMsgRepository) WithDB(db db.DB) OutboxMsgRepository {
	return &outboxMsgRepository{
		db: db,
	}
}

func (r outboxMsgRepository) CreateOutboxMsgs(ctx context.Context, params []CreateOutboxMsgParams) error {
	if len(params) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(params))
	topics := make([]string, 0, len(params))
	headers := make([]string, 0, len(params))
	payloads := make([]string, 0, len(params))
	partitionKeys := make([]*string, 0, len(params))
	for _, p := range params {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate uuid v7: %w", err)
		}

		headersBytes, err := json.Marshal(p.Headers)
		if err != nil {
			return fmt.Errorf("marshal headers: %w", err)
		}

		ids = append(ids, id)
		topics = append(topics, p.Topic)
		headers = append(headers, string(headersBytes))
		payloads = append(payloads, string(p.Payload))
		partitionKeys = append(partitionKeys, p.PartitionKey)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO outbox_messages (id, topic, headers, payload, partition_key, created_at)
		SELECT
			t.id,
			t.topic,
			t.headers::jsonb,
			t.payload::jsonb,
			t.partition_key,
			@created_at
		FROM UNNEST(
			@ids::uuid[],
			@topics::text[],
			@headers::text[],
			@payloads::text[],
			@partition_keys::text[]
		) AS t(id, topic, headers, payload, partition_key)
	`, pgx.NamedArgs{
		"ids":            ids,
		"topics":         topics,
		"headers":        headers,
		"payloads":       payloads,
		"partition_keys": partitionKeys,
		"created_at":     time.Now(),
	}); err != nil {
		return fmt.Errorf("outbox msgs create: %w", err)
	}

	return nil
}

type outboxMsgRow struct {
	ID           uuid.UUID `db:"id"`
	Topic        string    `db:"topic"`
	Headers      []byte    `db:"headers"`
	Payload      []byte    `db:"payload"`
	PartitionKey *string   `db:"partition_key"`
}

func (r outboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params ListUnprocessedOutboxMsgsParams) ([]ListUnprocessedOutboxMsgsResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, topic, headers, payload, partition_key
		FROM outbox_messages
		WHERE processed_at IS NULL
		ORDER BY created_at, id
		LIMIT @batch_size
		FOR UPDATE SKIP LOCKED
	`, pgx.NamedArgs{"batch_size": params.BatchSize})
	if err != nil {
		return nil, fmt.Errorf("outbox msg list unprocessed: %w", err)
	}

	msgs, err := pgx.CollectRows(rows, pgx.RowToStructByName[outboxMsgRow])
	if err != nil {
		return nil, fmt.Errorf("collect outbox msgs: %w", err)
	}

	results := make([]ListUnprocessedOutboxMsgsResult, 0, len(msgs))
	for _, msg := range msgs {
		headers := map[string]string{}
		if len(msg.Headers) > 0 {
			if err := json.Unmarshal(msg.Headers, &headers); err != nil {
				return nil, fmt.Errorf("unmarshal headers: %w", err)
			}
		}

		results = append(results, ListUnprocessedOutboxMsgsResult{
			ID:           msg.ID,
			Topic:        msg.Topic,
			Headers:      headers,
			Payload:      msg.Payload,
			PartitionKey: msg.PartitionKey,
		})
	}

	return results, nil
}

func (r outboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params BulkUpdateOutboxMsgsParams) error {
	if len(params.Items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(params.Items))
	errs := make([]*string, 0, len(params.Items))
	for _, item := range params.Items {
		ids = append(ids, item.ID)
		errs = append(errs, item.Error)
	}

	_, err := r.db.Exec(ctx, `
		UPDATE outbox_messages AS o
		SET
			processed_at = NOW(),
			error        = e.error
		FROM (
			SELECT
				UNNEST(@ids::uuid[])    AS id,
				UNNEST(@errors::text[]) AS error
		) AS e
		WHERE o.id = e.id;
	`, pgx.NamedArgs{
		"ids":    ids,
		"errors": errs,
	})
	if err != nil {
		return fmt.Errorf("outbox msg bulk update: %w", err)
	}

	return nil
}
