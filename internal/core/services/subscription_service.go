package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

type subscriptionService struct {
	repo ports.SubscriptionRepository
}

func NewSubscriptionService(repo ports.SubscriptionRepository) ports.SubscriptionService {
	return &subscriptionService{
		repo: repo,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, input ports.SubscribeInput) error {
	u, err := url.Parse(input.Endpoint)
	if err != nil || u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint must be an https URL", domain.ErrValidation)
	}
	if input.P256dh == "" || input.Auth == "" {
		return fmt.Errorf("%w: subscription keys are required", domain.ErrValidation)
	}

	return s.repo.Upsert(ctx, &domain.PushSubscription{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Endpoint:  input.Endpoint,
		P256dh:    input.P256dh,
		Auth:      input.Auth,
		CreatedAt: time.Now(),
	})
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return s.repo.Delete(ctx, userID, endpoint)
}
