package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct{ db *DB }

// NewUserStore constructs a user store.
func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

const userColumns = `id, email, username, password_hash, created_at, updated_at`

// Create inserts the user and its initial state document in one transaction,
// so a user row is never observable without a state row.
func (s *UserStore) Create(ctx context.Context, u *model.User, initialState json.RawMessage) (err error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const insUser = `
INSERT INTO users (id, email, username, password_hash)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.Exec(ctx, insUser, u.ID, u.Email, u.Username, u.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrAlreadyExists
		}
		return err
	}

	const insState = `INSERT INTO states (user_id, state) VALUES ($1, $2)`
	_, err = tx.Exec(ctx, insState, u.ID, []byte(initialState))
	return err
}

// ByID selects a user by ID.
func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return s.scanOne(s.db.Pool.QueryRow(ctx, q, id))
}

// ByEmail selects a user by normalized email.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return s.scanOne(s.db.Pool.QueryRow(ctx, q, email))
}

// ByUsername selects a user by username, case-insensitively.
func (s *UserStore) ByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(username)=lower($1)`
	return s.scanOne(s.db.Pool.QueryRow(ctx, q, username))
}

// Search lists users whose username contains q, excluding one user.
func (s *UserStore) Search(ctx context.Context, q string, exclude uuid.UUID, limit int) ([]model.UserRef, error) {
	const sel = `
SELECT id, username FROM users
WHERE username ILIKE '%' || $1 || '%' AND id <> $2
ORDER BY username
LIMIT $3`
	rows, err := s.db.Pool.Query(ctx, sel, q, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserRef
	for rows.Next() {
		var ref model.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *UserStore) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}
