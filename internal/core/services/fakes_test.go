package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lunchvote/api/internal/core/domain"
)

type fakeVoteRepo struct {
	mu            sync.Mutex
	votes         map[uuid.UUID]*domain.Vote
	items         map[uuid.UUID][]domain.VoteItem
	ballots       map[uuid.UUID]map[uuid.UUID]uuid.UUID // voteID -> userID -> voteItemID
	outbox        []*domain.OutboxMessage
	activeExists  bool
	createErr     error
	closedResults []*domain.VoteResult
	currentResult *domain.VoteResult
	lastLimit     int
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{
		votes:   make(map[uuid.UUID]*domain.Vote),
		items:   make(map[uuid.UUID][]domain.VoteItem),
		ballots: make(map[uuid.UUID]map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeVoteRepo) CreateVote(ctx context.Context, vote *domain.Vote, items []domain.VoteItem, outbox *domain.OutboxMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes[vote.ID] = vote
	f.items[vote.ID] = items
	f.outbox = append(f.outbox, outbox)
	return nil
}

func (f *fakeVoteRepo) ActiveVoteExists(ctx context.Context, now time.Time) (bool, error) {
	return f.activeExists, nil
}

func (f *fakeVoteRepo) CurrentVote(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.VoteResult, error) {
	return f.currentResult, nil
}

func (f *fakeVoteRepo) ClosedVotes(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.VoteResult, error) {
	f.lastLimit = limit
	return f.closedResults, nil
}

func (f *fakeVoteRepo) GetVote(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.votes[id], nil
}

func (f *fakeVoteRepo) VoteItemByMenu(ctx context.Context, voteID, menuID uuid.UUID) (*domain.VoteItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items[voteID] {
		if item.MenuID == menuID {
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeVoteRepo) ReplaceBallot(ctx context.Context, voteID, voteItemID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byUser, ok := f.ballots[voteID]
	if !ok {
		byUser = make(map[uuid.UUID]uuid.UUID)
		f.ballots[voteID] = byUser
	}
	_, replaced := byUser[userID]
	byUser[userID] = voteItemID
	return replaced, nil
}

func (f *fakeVoteRepo) CloseVote(ctx context.Context, id uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vote, ok := f.votes[id]; ok {
		vote.EndTime = now
	}
	return nil
}

func (f *fakeVoteRepo) Voters(ctx context.Context, voteID, menuID uuid.UUID) ([]domain.Voter, error) {
	return nil, nil
}

type fakeRestaurantRepo struct {
	restaurants map[uuid.UUID]*domain.Restaurant
	saved       []*domain.Restaurant
	updated     []*domain.Restaurant
	deleted     []uuid.UUID
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{
		restaurants: make(map[uuid.UUID]*domain.Restaurant),
	}
}

func (f *fakeRestaurantRepo) List(ctx context.Context) ([]*domain.Restaurant, error) {
	var out []*domain.Restaurant
	for _, r := range f.restaurants {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRestaurantRepo) GetWithMenus(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, domain.ErrRestaurantNotFound
	}
	return r, nil
}

func (f *fakeRestaurantRepo) Save(ctx context.Context, restaurant *domain.Restaurant) error {
	f.restaurants[restaurant.ID] = restaurant
	f.saved = append(f.saved, restaurant)
	return nil
}

func (f *fakeRestaurantRepo) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	f.restaurants[restaurant.ID] = restaurant
	f.updated = append(f.updated, restaurant)
	return nil
}

func (f *fakeRestaurantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.restaurants, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *fakeNotifier) Broadcast(event domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Events() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.events...)
}

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[uuid.UUID]*domain.User),
	}
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f.byID[id], nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	subs   map[string]*domain.PushSubscription // keyed by endpoint
	pruned []string
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		subs: make(map[string]*domain.PushSubscription),
	}
}

func (f *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[sub.Endpoint] = sub
	return nil
}

func (f *fakeSubscriptionRepo) Delete(ctx context.Context, userID uuid.UUID, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, endpoint)
	return nil
}

func (f *fakeSubscriptionRepo) All(ctx context.Context) ([]*domain.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.PushSubscription
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, endpoint)
	f.pruned = append(f.pruned, endpoint)
	return nil
}

type fakeOutboxRepo struct {
	mu      sync.Mutex
	pending []*domain.OutboxMessage
	sent    []uuid.UUID
	failed  []uuid.UUID
	retried []uuid.UUID
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeOutboxRepo) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, id)
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	sends []string
	errs  map[string]error // keyed by endpoint
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		errs: make(map[string]error),
	}
}

func (f *fakeSender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sub.Endpoint)
	return f.errs[sub.Endpoint]
}
