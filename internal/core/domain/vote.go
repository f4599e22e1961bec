package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one round of choosing among a restaurant's menus, with a deadline.
// It is active while EndTime is in the future and closed afterwards; there is
// no transition back.
type Vote struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	VoteDate     time.Time `json:"vote_date"`
	EndTime      time.Time `json:"end_time"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (v Vote) Active(now time.Time) bool {
	return v.EndTime.After(now)
}

// VoteItem makes one menu eligible for ballots within one vote. The set is
// fixed at vote creation.
type VoteItem struct {
	ID     uuid.UUID `json:"id"`
	VoteID uuid.UUID `json:"vote_id"`
	MenuID uuid.UUID `json:"menu_id"`
}

// Ballot is a user's current choice within a vote. A revote replaces the
// prior ballot, it never accumulates.
type Ballot struct {
	ID         uuid.UUID `json:"id"`
	VoteID     uuid.UUID `json:"vote_id"`
	VoteItemID uuid.UUID `json:"vote_item_id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemTally is the per-menu read model returned with a vote: the menu, its
// ballot count, and whether the requesting user's ballot points at it.
type ItemTally struct {
	VoteItemID uuid.UUID `json:"vote_item_id"`
	MenuID     uuid.UUID `json:"menu_id"`
	MenuName   string    `json:"menu_name"`
	Price      *int64    `json:"price,omitempty"`
	Ballots    int64     `json:"votes"`
	UserVoted  bool      `json:"user_voted"`
}

// VoteResult is a vote together with its restaurant name and tallies.
type VoteResult struct {
	Vote
	RestaurantName string      `json:"restaurant_name"`
	Items          []ItemTally `json:"items"`
}

// Voter identifies a user who cast a ballot, for voter listings.
type Voter struct {
	Name    string    `json:"name"`
	VotedAt time.Time `json:"voted_at"`
}
