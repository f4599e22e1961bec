package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
)

// Caller is the authenticated identity an operation runs as. It is supplied
// by the access-control collaborator (auth middleware).
type Caller struct {
	ID   uuid.UUID
	Role domain.Role
}

type VoteRepository interface {
	// CreateVote persists the vote, its items and the fanout outbox row in
	// one transaction.
	CreateVote(ctx context.Context, vote *domain.Vote, items []domain.VoteItem, outbox *domain.OutboxMessage) error
	// ActiveVoteExists reports whether any vote's end time is after now.
	ActiveVoteExists(ctx context.Context, now time.Time) (bool, error)
	// CurrentVote returns the active vote with the soonest end time, with
	// tallies resolved against userID, or nil when no vote is active.
	CurrentVote(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.VoteResult, error)
	// ClosedVotes returns closed votes newest-closed first with tallies
	// resolved against userID. limit <= 0 removes the bound.
	ClosedVotes(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.VoteResult, error)
	GetVote(ctx context.Context, id uuid.UUID) (*domain.Vote, error)
	// VoteItemByMenu resolves the vote item binding menuID into voteID, or
	// nil when the menu is not part of the vote.
	VoteItemByMenu(ctx context.Context, voteID, menuID uuid.UUID) (*domain.VoteItem, error)
	// ReplaceBallot deletes the user's prior ballot for the vote, if any,
	// and inserts the new one, in one transaction. It reports whether a
	// prior ballot was replaced.
	ReplaceBallot(ctx context.Context, voteID, voteItemID, userID uuid.UUID) (bool, error)
	// CloseVote sets the vote's end time to now.
	CloseVote(ctx context.Context, id uuid.UUID, now time.Time) error
	// Voters lists users whose ballot for voteID points at menuID, newest
	// ballot first.
	Voters(ctx context.Context, voteID, menuID uuid.UUID) ([]domain.Voter, error)
}

type CreateVoteInput struct {
	Title        string
	RestaurantID uuid.UUID
	MenuIDs      []uuid.UUID
	EndTime      string // RFC 3339
	Caller       Caller
}

type CastBallotInput struct {
	VoteID uuid.UUID
	MenuID uuid.UUID
	UserID uuid.UUID
}

type VoteHistoryInput struct {
	UserID uuid.UUID
	// Limit bounds the number of closed votes returned; 0 means the
	// default, a negative value removes the bound.
	Limit int
}

type VoteService interface {
	Create(ctx context.Context, input CreateVoteInput) (uuid.UUID, error)
	Current(ctx context.Context, userID uuid.UUID) (*domain.VoteResult, error)
	History(ctx context.Context, input VoteHistoryInput) ([]*domain.VoteResult, error)
	// Cast records or changes the user's ballot. It reports whether an
	// existing ballot was changed.
	Cast(ctx context.Context, input CastBallotInput) (bool, error)
	End(ctx context.Context, voteID uuid.UUID, caller Caller) error
	Voters(ctx context.Context, voteID, menuID uuid.UUID) ([]domain.Voter, error)
}
