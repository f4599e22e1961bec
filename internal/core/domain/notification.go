package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventVoteCreated EventKind = "voteCreated"
	EventVoteUpdated EventKind = "voteUpdated"
	EventVoteEnded   EventKind = "voteEnded"
)

// Event is a vote lifecycle notification broadcast to connected clients.
type Event struct {
	Kind    EventKind `json:"event"`
	VoteID  uuid.UUID `json:"voteId"`
	Message string    `json:"message"`
}

// PushSubscription is one browser push endpoint registered by a user.
// Endpoints reported gone by the push service are pruned lazily.
type PushSubscription struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxMessage is a push fanout job persisted in the same transaction as the
// state change that produced it. A relay worker drains pending rows.
type OutboxMessage struct {
	ID         uuid.UUID
	EventType  EventKind
	Payload    []byte
	Status     string
	RetryCount int
	CreatedAt  time.Time
	SentAt     *time.Time
}
