package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/lunchvote/api/internal/core/domain"
	"github.com/lunchvote/api/internal/core/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func teacher() ports.Caller {
	return ports.Caller{ID: uuid.New(), Role: domain.RoleTeacher}
}

func student() ports.Caller {
	return ports.Caller{ID: uuid.New(), Role: domain.RoleStudent}
}

func seedRestaurant(repo *fakeRestaurantRepo, menuCount int) *domain.Restaurant {
	r := &domain.Restaurant{
		ID:   uuid.New(),
		Name: "Pizza Place",
	}
	for i := 0; i < menuCount; i++ {
		r.Menus = append(r.Menus, domain.Menu{
			ID:           uuid.New(),
			RestaurantID: r.ID,
			Name:         "Menu",
		})
	}
	repo.restaurants[r.ID] = r
	return r
}

func TestCreateVote(t *testing.T) {
	futureEnd := time.Now().Add(time.Hour).Format(time.RFC3339)

	t.Run("rejects non-teacher", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:  "Lunch",
			Caller: student(),
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{restaurant.Menus[0].ID},
			EndTime:      futureEnd,
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects empty menu list and persists nothing", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Lunch",
			RestaurantID: restaurant.ID,
			EndTime:      futureEnd,
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, voteRepo.votes)
		assert.Empty(t, voteRepo.outbox)
	})

	t.Run("rejects past end time", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Lunch",
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{restaurant.Menus[0].ID},
			EndTime:      time.Now().Add(-time.Hour).Format(time.RFC3339),
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects unparsable end time", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Lunch",
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{restaurant.Menus[0].ID},
			EndTime:      "tomorrow noon",
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects menu from another restaurant", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Lunch",
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{uuid.New()},
			EndTime:      futureEnd,
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects while another vote is active", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		voteRepo.activeExists = true
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 2)
		svc := NewVoteService(voteRepo, restRepo, &fakeNotifier{}, discardLogger())

		_, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Lunch",
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{restaurant.Menus[0].ID},
			EndTime:      futureEnd,
			Caller:       teacher(),
		})
		assert.ErrorIs(t, err, domain.ErrActiveVoteExists)
	})

	t.Run("persists vote, items and outbox row, then broadcasts", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		restRepo := newFakeRestaurantRepo()
		restaurant := seedRestaurant(restRepo, 3)
		notifier := &fakeNotifier{}
		svc := NewVoteService(voteRepo, restRepo, notifier, discardLogger())

		creator := teacher()
		id, err := svc.Create(context.Background(), ports.CreateVoteInput{
			Title:        "Pizza Day",
			RestaurantID: restaurant.ID,
			MenuIDs:      []uuid.UUID{restaurant.Menus[0].ID, restaurant.Menus[1].ID},
			EndTime:      futureEnd,
			Caller:       creator,
		})
		require.NoError(t, err)

		vote := voteRepo.votes[id]
		require.NotNil(t, vote)
		assert.Equal(t, "Pizza Day", vote.Title)
		assert.Equal(t, creator.ID, vote.CreatedBy)
		assert.Len(t, voteRepo.items[id], 2)

		require.Len(t, voteRepo.outbox, 1)
		assert.Equal(t, domain.EventVoteCreated, voteRepo.outbox[0].EventType)
		assert.Equal(t, domain.OutboxPending, voteRepo.outbox[0].Status)

		events := notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventVoteCreated, events[0].Kind)
		assert.Equal(t, id, events[0].VoteID)
	})
}

func TestCastBallot(t *testing.T) {
	seedVote := func(voteRepo *fakeVoteRepo, end time.Time, menuIDs ...uuid.UUID) *domain.Vote {
		vote := &domain.Vote{
			ID:      uuid.New(),
			Title:   "Lunch",
			EndTime: end,
		}
		voteRepo.votes[vote.ID] = vote
		for _, menuID := range menuIDs {
			voteRepo.items[vote.ID] = append(voteRepo.items[vote.ID], domain.VoteItem{
				ID:     uuid.New(),
				VoteID: vote.ID,
				MenuID: menuID,
			})
		}
		return vote
	}

	t.Run("rejects unknown vote", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), &fakeNotifier{}, discardLogger())

		_, err := svc.Cast(context.Background(), ports.CastBallotInput{
			VoteID: uuid.New(),
			MenuID: uuid.New(),
			UserID: uuid.New(),
		})
		assert.ErrorIs(t, err, domain.ErrVoteNotFound)
	})

	t.Run("rejects closed vote and records nothing", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		menuID := uuid.New()
		vote := seedVote(voteRepo, time.Now().Add(-time.Minute), menuID)
		notifier := &fakeNotifier{}
		svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), notifier, discardLogger())

		_, err := svc.Cast(context.Background(), ports.CastBallotInput{
			VoteID: vote.ID,
			MenuID: menuID,
			UserID: uuid.New(),
		})
		assert.ErrorIs(t, err, domain.ErrVoteClosed)
		assert.Empty(t, voteRepo.ballots[vote.ID])
		assert.Empty(t, notifier.Events())
	})

	t.Run("rejects menu outside the vote", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		vote := seedVote(voteRepo, time.Now().Add(time.Hour), uuid.New())
		svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), &fakeNotifier{}, discardLogger())

		_, err := svc.Cast(context.Background(), ports.CastBallotInput{
			VoteID: vote.ID,
			MenuID: uuid.New(),
			UserID: uuid.New(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	})

	t.Run("first ballot is new, second is a change", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		menuA := uuid.New()
		menuB := uuid.New()
		vote := seedVote(voteRepo, time.Now().Add(time.Hour), menuA, menuB)
		notifier := &fakeNotifier{}
		svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), notifier, discardLogger())

		user := uuid.New()
		changed, err := svc.Cast(context.Background(), ports.CastBallotInput{VoteID: vote.ID, MenuID: menuA, UserID: user})
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = svc.Cast(context.Background(), ports.CastBallotInput{VoteID: vote.ID, MenuID: menuB, UserID: user})
		require.NoError(t, err)
		assert.True(t, changed)

		// Exactly one ballot row survives for (vote, user).
		assert.Len(t, voteRepo.ballots[vote.ID], 1)

		events := notifier.Events()
		require.Len(t, events, 2)
		assert.Equal(t, domain.EventVoteUpdated, events[0].Kind)
		assert.Equal(t, "A new ballot was cast.", events[0].Message)
		assert.Equal(t, "A ballot was changed.", events[1].Message)
	})
}

func TestEndVote(t *testing.T) {
	t.Run("rejects non-teacher", func(t *testing.T) {
		svc := NewVoteService(newFakeVoteRepo(), newFakeRestaurantRepo(), &fakeNotifier{}, discardLogger())
		err := svc.End(context.Background(), uuid.New(), student())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejects unknown vote", func(t *testing.T) {
		svc := NewVoteService(newFakeVoteRepo(), newFakeRestaurantRepo(), &fakeNotifier{}, discardLogger())
		err := svc.End(context.Background(), uuid.New(), teacher())
		assert.ErrorIs(t, err, domain.ErrVoteNotFound)
	})

	t.Run("closes the vote and broadcasts", func(t *testing.T) {
		voteRepo := newFakeVoteRepo()
		vote := &domain.Vote{ID: uuid.New(), EndTime: time.Now().Add(time.Hour)}
		voteRepo.votes[vote.ID] = vote
		notifier := &fakeNotifier{}
		svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), notifier, discardLogger())

		require.NoError(t, svc.End(context.Background(), vote.ID, teacher()))
		assert.False(t, vote.Active(time.Now()))

		events := notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventVoteEnded, events[0].Kind)
	})
}

func TestVoteHistoryLimit(t *testing.T) {
	voteRepo := newFakeVoteRepo()
	svc := NewVoteService(voteRepo, newFakeRestaurantRepo(), &fakeNotifier{}, discardLogger())

	_, err := svc.History(context.Background(), ports.VoteHistoryInput{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, voteRepo.lastLimit)

	_, err = svc.History(context.Background(), ports.VoteHistoryInput{UserID: uuid.New(), Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, voteRepo.lastLimit)

	_, err = svc.History(context.Background(), ports.VoteHistoryInput{UserID: uuid.New(), Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, voteRepo.lastLimit)
}
