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

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) CreateVote(ctx context.Context, vote *domain.Vote, items []domain.VoteItem, outbox *domain.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryVote := `
		INSERT INTO votes (id, title, restaurant_id, vote_date, end_time, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryVote, vote.ID, vote.Title, vote.RestaurantID, vote.VoteDate, vote.EndTime, vote.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	queryItem := `
		INSERT INTO vote_items (id, vote_id, menu_id)
		VALUES ($1, $2, $3)
	`
	stmt, err := tx.PrepareContext(ctx, queryItem)
	if err != nil {
		return fmt.Errorf("failed to prepare vote item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err = stmt.ExecContext(ctx, item.ID, item.VoteID, item.MenuID)
		if err != nil {
			return fmt.Errorf("failed to insert vote item: %w", err)
		}
	}

	queryOutbox := `
		INSERT INTO notification_outbox (id, event_type, payload, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, queryOutbox, outbox.ID, string(outbox.EventType), outbox.Payload, outbox.Status)
	if err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *voteRepository) ActiveVoteExists(ctx context.Context, now time.Time) (bool, error) {
	query := `SELECT 1 FROM votes WHERE end_time > $1 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, now).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check active vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) CurrentVote(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.VoteResult, error) {
	query := `
		SELECT v.id, v.title, v.restaurant_id, v.vote_date, v.end_time, v.created_by, v.created_at, r.name
		FROM votes v
		JOIN restaurants r ON r.id = v.restaurant_id
		WHERE v.end_time > $1
		ORDER BY v.end_time ASC
		LIMIT 1
	`

	var result domain.VoteResult
	err := r.db.QueryRowContext(ctx, query, now).Scan(
		&result.ID, &result.Title, &result.RestaurantID, &result.VoteDate,
		&result.EndTime, &result.CreatedBy, &result.CreatedAt, &result.RestaurantName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current vote: %w", err)
	}

	items, err := r.fetchTallies(ctx, result.ID, userID)
	if err != nil {
		return nil, err
	}
	result.Items = items

	return &result, nil
}

func (r *voteRepository) ClosedVotes(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.VoteResult, error) {
	query := `
		SELECT v.id, v.title, v.restaurant_id, v.vote_date, v.end_time, v.created_by, v.created_at, r.name
		FROM votes v
		JOIN restaurants r ON r.id = v.restaurant_id
		WHERE v.end_time <= $1
		ORDER BY v.end_time DESC
	`
	args := []any{now}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed votes: %w", err)
	}
	defer rows.Close()

	var results []*domain.VoteResult
	for rows.Next() {
		var result domain.VoteResult
		if err := rows.Scan(
			&result.ID, &result.Title, &result.RestaurantID, &result.VoteDate,
			&result.EndTime, &result.CreatedBy, &result.CreatedAt, &result.RestaurantName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	for _, result := range results {
		items, err := r.fetchTallies(ctx, result.ID, userID)
		if err != nil {
			return nil, err
		}
		result.Items = items
	}

	return results, nil
}

func (r *voteRepository) GetVote(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, title, restaurant_id, vote_date, end_time, created_by, created_at
		FROM votes
		WHERE id = $1
	`
	var vote domain.Vote
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vote.ID, &vote.Title, &vote.RestaurantID, &vote.VoteDate,
		&vote.EndTime, &vote.CreatedBy, &vote.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

func (r *voteRepository) VoteItemByMenu(ctx context.Context, voteID, menuID uuid.UUID) (*domain.VoteItem, error) {
	query := `
		SELECT id, vote_id, menu_id
		FROM vote_items
		WHERE vote_id = $1 AND menu_id = $2
	`
	var item domain.VoteItem
	err := r.db.QueryRowContext(ctx, query, voteID, menuID).Scan(&item.ID, &item.VoteID, &item.MenuID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote item: %w", err)
	}
	return &item, nil
}

// ReplaceBallot scopes the delete and the insert in one transaction so a
// concurrent tally read never sees two ballots, or none, for a user who has
// voted. The UNIQUE (vote_id, user_id) constraint backs this up.
func (r *voteRepository) ReplaceBallot(ctx context.Context, voteID, voteItemID, userID uuid.UUID) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM vote_records WHERE vote_id = $1 AND user_id = $2`, voteID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete prior ballot: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	query := `
		INSERT INTO vote_records (id, vote_id, vote_item_id, user_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, query, uuid.New(), voteID, voteItemID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to insert ballot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deleted > 0, nil
}

func (r *voteRepository) CloseVote(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `UPDATE votes SET end_time = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to close vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Voters(ctx context.Context, voteID, menuID uuid.UUID) ([]domain.Voter, error) {
	query := `
		SELECT u.name, vr.created_at
		FROM vote_records vr
		JOIN vote_items vi ON vi.id = vr.vote_item_id
		JOIN users u ON u.id = vr.user_id
		WHERE vi.vote_id = $1 AND vi.menu_id = $2
		ORDER BY vr.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, voteID, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters: %w", err)
	}
	defer rows.Close()

	var voters []domain.Voter
	for rows.Next() {
		var v domain.Voter
		if err := rows.Scan(&v.Name, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voters: %w", err)
	}
	return voters, nil
}

func (r *voteRepository) fetchTallies(ctx context.Context, voteID, userID uuid.UUID) ([]domain.ItemTally, error) {
	query := `
		SELECT vi.id, m.id, m.name, m.price,
		       COUNT(vr.id) AS ballots,
		       COALESCE(BOOL_OR(vr.user_id = $2), FALSE) AS user_voted
		FROM vote_items vi
		JOIN menus m ON m.id = vi.menu_id
		LEFT JOIN vote_records vr ON vr.vote_item_id = vi.id
		WHERE vi.vote_id = $1
		GROUP BY vi.id, m.id, m.name, m.price
		ORDER BY m.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, voteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tallies: %w", err)
	}
	defer rows.Close()

	var items []domain.ItemTally
	for rows.Next() {
		var t domain.ItemTally
		var price sql.NullInt64
		if err := rows.Scan(&t.VoteItemID, &t.MenuID, &t.MenuName, &price, &t.Ballots, &t.UserVoted); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		if price.Valid {
			t.Price = &price.Int64
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}
	return items, nil
}
