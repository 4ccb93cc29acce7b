package persistence

import (
	"context"
	"time"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/domain/user"
)

type ratingRepository struct {
	db *DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *DB) user.RatingRepository {
	return &ratingRepository{db: db}
}

// IncrementTaps adds one tap with a single UPDATE so concurrent taps are never lost
func (r *ratingRepository) IncrementTaps(ctx context.Context, id user.ID) (*user.User, error) {
	return r.updateAndFetch(ctx, "increment taps", id,
		`UPDATE users SET taps = taps + 1, updated_at = ? WHERE id = ?`)
}

// TopUsers returns active users by taps descending, ties by ID ascending
func (r *ratingRepository) TopUsers(ctx context.Context, limit int) ([]*user.User, error) {
	if limit <= 0 {
		return []*user.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = ? ORDER BY taps DESC, id ASC LIMIT ?`
	return listUsers(ctx, r.db, r.db.rebind(query), true, limit)
}

// TotalTaps returns the sum of taps across all users, 0 for an empty table
func (r *ratingRepository) TotalTaps(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(taps), 0) FROM users`).Scan(&total)
	if err != nil {
		return 0, apperror.Store("sum taps", err)
	}
	return total, nil
}

// UpdateInfo sets the free-text info field
func (r *ratingRepository) UpdateInfo(ctx context.Context, id user.ID, info string) (*user.User, error) {
	return r.updateAndFetch(ctx, "update info", id,
		`UPDATE users SET info = NULLIF(?, ''), updated_at = ? WHERE id = ?`, info)
}

// UpdatePhoto sets the photo reference
func (r *ratingRepository) UpdatePhoto(ctx context.Context, id user.ID, photo string) (*user.User, error) {
	return r.updateAndFetch(ctx, "update photo", id,
		`UPDATE users SET photo = NULLIF(?, ''), updated_at = ? WHERE id = ?`, photo)
}

// CommitProfile writes the collected registration form in one transaction
func (r *ratingRepository) CommitProfile(ctx context.Context, id user.ID, name, info, photo string) (*user.User, error) {
	return r.updateAndFetch(ctx, "commit profile", id,
		`UPDATE users SET first_name = NULLIF(?, ''), info = NULLIF(?, ''), photo = NULLIF(?, ''), updated_at = ? WHERE id = ?`,
		name, info, photo)
}

// updateAndFetch runs an UPDATE whose last two placeholders are updated_at and id,
// then reads the row back inside the same transaction.
func (r *ratingRepository) updateAndFetch(ctx context.Context, op string, id user.ID, query string, args ...any) (*user.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperror.Store("begin transaction", err)
	}
	defer tx.Rollback()

	args = append(args, time.Now().UTC(), int64(id))
	result, err := tx.ExecContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, apperror.Store(op, err)
	}
	if err := expectRow(result, id); err != nil {
		return nil, err
	}

	u, err := findUser(ctx, tx, r.db.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), int64(id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Store("commit "+op, err)
	}

	return u, nil
}
