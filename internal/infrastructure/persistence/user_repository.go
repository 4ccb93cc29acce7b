package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/domain/user"
)

const userColumns = `id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), COALESCE(info, ''), COALESCE(photo, ''),
	is_active, is_admin, taps, created_at, updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// Create persists a new user, assigning its ID and timestamps
func (r *userRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, info, photo,
			is_active, is_admin, taps, created_at, updated_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?)
		RETURNING id
	`

	u.Stamp(time.Now().UTC())
	s := u.Snapshot()

	err := r.db.QueryRowContext(ctx, r.db.rebind(query),
		int64(s.TelegramID), s.Username, s.FirstName, s.LastName, s.Info, s.Photo,
		s.IsActive, s.IsAdmin, s.Taps, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("user with telegram_id", s.TelegramID)
		}
		return nil, apperror.Store("save user", err)
	}

	return user.Restore(s), nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id user.ID) (*user.User, error) {
	return findUser(ctx, r.db, r.db.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), int64(id))
}

// FindByTelegramID retrieves a user by their Telegram ID
func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID user.TelegramID) (*user.User, error) {
	u, err := findUser(ctx, r.db, r.db.rebind(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), int64(telegramID))
	if apperror.IsNotFound(err) {
		return nil, apperror.NotFound("user with telegram_id", telegramID)
	}
	return u, err
}

// Update replaces the profile and status fields of an existing user.
// The tap counter is owned by the rating repository and is left untouched.
func (r *userRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		UPDATE users
		SET username = NULLIF(?, ''), first_name = NULLIF(?, ''), last_name = NULLIF(?, ''),
			info = NULLIF(?, ''), photo = NULLIF(?, ''), is_active = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`

	u.Touch(time.Now().UTC())
	s := u.Snapshot()
	result, err := r.db.ExecContext(ctx, r.db.rebind(query),
		s.Username, s.FirstName, s.LastName, s.Info, s.Photo, s.IsActive, s.IsAdmin,
		s.UpdatedAt, int64(s.ID))
	if err != nil {
		return nil, apperror.Store("update user", err)
	}
	if err := expectRow(result, s.ID); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, s.ID)
}

// Delete removes a user without checking that it exists
func (r *userRepository) Delete(ctx context.Context, id user.ID) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`DELETE FROM users WHERE id = ?`), int64(id))
	if err != nil {
		return apperror.Store("delete user", err)
	}
	return nil
}

// ListAll retrieves every user ordered by ID
func (r *userRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	return listUsers(ctx, r.db, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// ListActive retrieves active users ordered by ID
func (r *userRepository) ListActive(ctx context.Context) ([]*user.User, error) {
	return listUsers(ctx, r.db, r.db.rebind(`SELECT `+userColumns+` FROM users WHERE is_active = ? ORDER BY id`), true)
}

// Deactivate clears is_active for the user with the given Telegram ID
func (r *userRepository) Deactivate(ctx context.Context, telegramID user.TelegramID) error {
	query := `UPDATE users SET is_active = ?, updated_at = ? WHERE telegram_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.rebind(query), false, time.Now().UTC(), int64(telegramID))
	if err != nil {
		return apperror.Store("deactivate user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Store("deactivate user", err)
	}
	if affected == 0 {
		return apperror.NotFound("user with telegram_id", telegramID)
	}
	return nil
}

// Ping checks that the store is reachable
func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanUser(row rowScanner) (*user.User, error) {
	var s user.Snapshot
	err := row.Scan(&s.ID, &s.TelegramID, &s.Username, &s.FirstName, &s.LastName,
		&s.Info, &s.Photo, &s.IsActive, &s.IsAdmin, &s.Taps, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user.Restore(s), nil
}

func findUser(ctx context.Context, q querier, query string, id int64) (*user.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, apperror.Store("find user", err)
	}
	return u, nil
}

func listUsers(ctx context.Context, q querier, query string, args ...any) ([]*user.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Store("list users", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.Store("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("list users", err)
	}

	return users, nil
}

func expectRow(result sql.Result, id user.ID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Store("read affected rows", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", int64(id))
	}
	return nil
}
