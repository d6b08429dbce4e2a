package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
)

// UserStore implements store.UserStore using SQLite.
type UserStore struct{ db *DB }

// NewUserStore constructs a user store.
func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = `id, email, username, password_hash, created_at, updated_at`

// Create inserts the user and its initial state document in one transaction.
func (s *UserStore) Create(ctx context.Context, u *model.User, initialState json.RawMessage) (err error) {
	tx, err := s.db.sq.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	const insUser = `
INSERT INTO users (id, email, username, password_hash)
VALUES (?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, insUser, u.ID, u.Email, u.Username, u.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrAlreadyExists
		}
		return err
	}

	const insState = `INSERT INTO states (user_id, state) VALUES (?, ?)`
	_, err = tx.ExecContext(ctx, insState, u.ID, string(initialState))
	return err
}

// ByID selects a user by ID.
func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return s.getOne(ctx, q, id)
}

// ByEmail selects a user by normalized email.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return s.getOne(ctx, q, email)
}

// ByUsername selects a user by username, case-insensitively.
func (s *UserStore) ByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = ? COLLATE NOCASE`
	return s.getOne(ctx, q, username)
}

// Search lists users whose username contains q, excluding one user.
// SQLite LIKE is case-insensitive for ASCII, which matches the Postgres ILIKE
// behavior for the allowed username alphabet.
func (s *UserStore) Search(ctx context.Context, q string, exclude uuid.UUID, limit int) ([]model.UserRef, error) {
	const sel = `
SELECT id, username FROM users
WHERE username LIKE '%' || ? || '%' AND id <> ?
ORDER BY username
LIMIT ?`
	var rows []struct {
		ID       uuid.UUID `db:"id"`
		Username string    `db:"username"`
	}
	if err := s.db.sq.SelectContext(ctx, &rows, sel, q, exclude, limit); err != nil {
		return nil, err
	}
	var out []model.UserRef
	for _, r := range rows {
		out = append(out, model.UserRef{ID: r.ID, Username: r.Username})
	}
	return out, nil
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var r userRow
	if err := s.db.sq.GetContext(ctx, &r, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return r.toModel(), nil
}
