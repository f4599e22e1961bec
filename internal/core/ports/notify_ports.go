package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
)

// Notifier delivers a vote lifecycle event to every connected real-time
// client. Delivery is fire-and-forget, at most once.
type Notifier interface {
	Broadcast(event domain.Event)
}

type SubscriptionRepository interface {
	// Upsert inserts the subscription, replacing the keys of an existing
	// (user, endpoint) row.
	Upsert(ctx context.Context, sub *domain.PushSubscription) error
	Delete(ctx context.Context, userID uuid.UUID, endpoint string) error
	All(ctx context.Context) ([]*domain.PushSubscription, error)
	// DeleteByEndpoint prunes a subscription the push service reported gone.
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type OutboxRepository interface {
	ListPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	IncrementRetry(ctx context.Context, id uuid.UUID) error
}

// PushSender delivers one payload to one subscription. It returns
// domain.ErrSubscriptionGone when the push service reports the endpoint
// permanently invalid.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

type SubscribeInput struct {
	UserID   uuid.UUID
	Endpoint string
	P256dh   string
	Auth     string
}

type SubscriptionService interface {
	Subscribe(ctx context.Context, input SubscribeInput) error
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
}

// FanoutRelay drains the notification outbox, pushing each pending event to
// every registered subscription.
type FanoutRelay interface {
	RunOnce(ctx context.Context) error
}
