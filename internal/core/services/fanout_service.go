package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

const (
	defaultBatchSize = 100
	maxPushRetries   = 3
)

// fanoutRelay drains the notification outbox and pushes each pending event
// to every registered subscription. Sends are independent: one failing
// subscription never blocks the others, and no failure ever reaches the
// request that enqueued the event.
type fanoutRelay struct {
	outboxRepo ports.OutboxRepository
	subRepo    ports.SubscriptionRepository
	sender     ports.PushSender
	batchSize  int
	logger     *slog.Logger
}

func NewFanoutRelay(outboxRepo ports.OutboxRepository, subRepo ports.SubscriptionRepository, sender ports.PushSender, logger *slog.Logger) ports.FanoutRelay {
	return &fanoutRelay{
		outboxRepo: outboxRepo,
		subRepo:    subRepo,
		sender:     sender,
		batchSize:  defaultBatchSize,
		logger:     logger,
	}
}

func (r *fanoutRelay) RunOnce(ctx context.Context) error {
	pending, err := r.outboxRepo.ListPending(ctx, r.batchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	subs, err := r.subRepo.All(ctx)
	if err != nil {
		return err
	}

	for _, msg := range pending {
		r.deliver(ctx, msg, subs)
	}

	return nil
}

func (r *fanoutRelay) deliver(ctx context.Context, msg *domain.OutboxMessage, subs []*domain.PushSubscription) {
	var wg sync.WaitGroup
	var failed int64
	var mu sync.Mutex

	for _, sub := range subs {
		wg.Add(1)
		go func(sub *domain.PushSubscription) {
			defer wg.Done()
			err := r.sender.Send(ctx, sub, msg.Payload)
			if err == nil {
				return
			}
			if errors.Is(err, domain.ErrSubscriptionGone) {
				// Endpoint is permanently dead; prune it. Best effort.
				if err := r.subRepo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
					r.logger.Warn("failed to prune dead subscription", "endpoint", sub.Endpoint, "error", err)
				}
				return
			}
			r.logger.Warn("push delivery failed", "outbox_id", msg.ID, "endpoint", sub.Endpoint, "error", err)
			mu.Lock()
			failed++
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	if failed == 0 {
		if err := r.outboxRepo.MarkSent(ctx, msg.ID, time.Now()); err != nil {
			r.logger.Error("failed to mark outbox message sent", "outbox_id", msg.ID, "error", err)
		}
		r.logger.Info("push fanout delivered", "outbox_id", msg.ID, "event", msg.EventType, "subscriptions", len(subs))
		return
	}

	if msg.RetryCount+1 >= maxPushRetries {
		if err := r.outboxRepo.MarkFailed(ctx, msg.ID); err != nil {
			r.logger.Error("failed to mark outbox message failed", "outbox_id", msg.ID, "error", err)
		}
		r.logger.Error("push fanout gave up", "outbox_id", msg.ID, "event", msg.EventType, "failed_sends", failed)
		return
	}

	if err := r.outboxRepo.IncrementRetry(ctx, msg.ID); err != nil {
		r.logger.Error("failed to bump outbox retry count", "outbox_id", msg.ID, "error", err)
	}
}

// Run drains the outbox on a fixed interval until the context is cancelled.
func Run(ctx context.Context, relay ports.FanoutRelay, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := relay.RunOnce(ctx); err != nil {
				logger.Error("outbox relay cycle failed", "error", err)
			}
		}
	}
}
