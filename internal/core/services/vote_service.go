package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

const (
	maxTitleLength      = 100
	defaultHistoryLimit = 10
)

type voteService struct {
	voteRepo       ports.VoteRepository
	restaurantRepo ports.RestaurantRepository
	notifier       ports.Notifier
	logger         *slog.Logger
}

func NewVoteService(voteRepo ports.VoteRepository, restaurantRepo ports.RestaurantRepository, notifier ports.Notifier, logger *slog.Logger) ports.VoteService {
	return &voteService{
		voteRepo:       voteRepo,
		restaurantRepo: restaurantRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *voteService) Create(ctx context.Context, input ports.CreateVoteInput) (uuid.UUID, error) {
	if input.Caller.Role != domain.RoleTeacher {
		return uuid.Nil, domain.ErrForbidden
	}
	if input.Title == "" {
		return uuid.Nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(input.Title) > maxTitleLength {
		return uuid.Nil, fmt.Errorf("%w: title exceeds %d characters", domain.ErrValidation, maxTitleLength)
	}
	if len(input.MenuIDs) == 0 {
		return uuid.Nil, fmt.Errorf("%w: at least one menu is required", domain.ErrValidation)
	}

	now := time.Now()

	endTime, err := time.Parse(time.RFC3339, input.EndTime)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: end time must be RFC 3339", domain.ErrValidation)
	}
	if !endTime.After(now) {
		return uuid.Nil, fmt.Errorf("%w: end time must be in the future", domain.ErrValidation)
	}

	restaurant, err := s.restaurantRepo.GetWithMenus(ctx, input.RestaurantID)
	if err != nil {
		return uuid.Nil, err
	}

	menus := make(map[uuid.UUID]bool, len(restaurant.Menus))
	for _, m := range restaurant.Menus {
		menus[m.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(input.MenuIDs))
	for _, id := range input.MenuIDs {
		if !menus[id] {
			return uuid.Nil, fmt.Errorf("%w: menu %s does not belong to restaurant %s", domain.ErrValidation, id, restaurant.ID)
		}
		if seen[id] {
			return uuid.Nil, fmt.Errorf("%w: duplicate menu %s", domain.ErrValidation, id)
		}
		seen[id] = true
	}

	active, err := s.voteRepo.ActiveVoteExists(ctx, now)
	if err != nil {
		return uuid.Nil, err
	}
	if active {
		return uuid.Nil, domain.ErrActiveVoteExists
	}

	vote := &domain.Vote{
		ID:           uuid.New(),
		Title:        input.Title,
		RestaurantID: input.RestaurantID,
		VoteDate:     now,
		EndTime:      endTime,
		CreatedBy:    input.Caller.ID,
		CreatedAt:    now,
	}

	items := make([]domain.VoteItem, 0, len(input.MenuIDs))
	for _, menuID := range input.MenuIDs {
		items = append(items, domain.VoteItem{
			ID:     uuid.New(),
			VoteID: vote.ID,
			MenuID: menuID,
		})
	}

	event := domain.Event{
		Kind:    domain.EventVoteCreated,
		VoteID:  vote.ID,
		Message: "A new vote has started.",
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	outbox := &domain.OutboxMessage{
		ID:        uuid.New(),
		EventType: domain.EventVoteCreated,
		Payload:   payload,
		Status:    domain.OutboxPending,
		CreatedAt: now,
	}

	// Vote, items and the push fanout job commit or roll back together.
	// The real-time broadcast happens only after the commit.
	if err := s.voteRepo.CreateVote(ctx, vote, items, outbox); err != nil {
		return uuid.Nil, err
	}

	s.notifier.Broadcast(event)
	s.logger.Info("vote created", "vote_id", vote.ID, "restaurant_id", vote.RestaurantID, "items", len(items))

	return vote.ID, nil
}

func (s *voteService) Current(ctx context.Context, userID uuid.UUID) (*domain.VoteResult, error) {
	return s.voteRepo.CurrentVote(ctx, userID, time.Now())
}

func (s *voteService) History(ctx context.Context, input ports.VoteHistoryInput) ([]*domain.VoteResult, error) {
	limit := input.Limit
	switch {
	case limit == 0:
		limit = defaultHistoryLimit
	case limit < 0:
		limit = 0 // unbounded
	}
	return s.voteRepo.ClosedVotes(ctx, input.UserID, time.Now(), limit)
}

func (s *voteService) Cast(ctx context.Context, input ports.CastBallotInput) (bool, error) {
	vote, err := s.voteRepo.GetVote(ctx, input.VoteID)
	if err != nil {
		return false, err
	}
	if vote == nil {
		return false, domain.ErrVoteNotFound
	}
	if !vote.Active(time.Now()) {
		return false, domain.ErrVoteClosed
	}

	item, err := s.voteRepo.VoteItemByMenu(ctx, input.VoteID, input.MenuID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, domain.ErrInvalidSelection
	}

	changed, err := s.voteRepo.ReplaceBallot(ctx, input.VoteID, item.ID, input.UserID)
	if err != nil {
		return false, err
	}

	message := "A new ballot was cast."
	if changed {
		message = "A ballot was changed."
	}
	s.notifier.Broadcast(domain.Event{
		Kind:    domain.EventVoteUpdated,
		VoteID:  input.VoteID,
		Message: message,
	})

	return changed, nil
}

func (s *voteService) End(ctx context.Context, voteID uuid.UUID, caller ports.Caller) error {
	if caller.Role != domain.RoleTeacher {
		return domain.ErrForbidden
	}

	vote, err := s.voteRepo.GetVote(ctx, voteID)
	if err != nil {
		return err
	}
	if vote == nil {
		return domain.ErrVoteNotFound
	}

	if err := s.voteRepo.CloseVote(ctx, voteID, time.Now()); err != nil {
		return err
	}

	s.notifier.Broadcast(domain.Event{
		Kind:    domain.EventVoteEnded,
		VoteID:  voteID,
		Message: "The vote has been closed.",
	})
	s.logger.Info("vote closed", "vote_id", voteID, "closed_by", caller.ID)

	return nil
}

func (s *voteService) Voters(ctx context.Context, voteID, menuID uuid.UUID) ([]domain.Voter, error) {
	return s.voteRepo.Voters(ctx, voteID, menuID)
}
