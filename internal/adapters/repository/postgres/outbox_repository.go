package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) ports.OutboxRepository {
	return &outboxRepository{
		db: db,
	}
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	query := `
		SELECT id, event_type, payload, status, retry_count, created_at, sent_at
		FROM notification_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, domain.OutboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		var sentAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.EventType, &msg.Payload, &msg.Status, &msg.RetryCount, &msg.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if sentAt.Valid {
			msg.SentAt = &sentAt.Time
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE notification_outbox SET status = $2, sent_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, domain.OutboxSent, at)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message sent: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notification_outbox SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, domain.OutboxFailed)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

func (r *outboxRepository) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notification_outbox SET retry_count = retry_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment outbox retry count: %w", err)
	}
	return nil
}
