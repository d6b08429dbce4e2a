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

// StateStore implements store.StateStore using PostgreSQL.
type StateStore struct{ db *DB }

// NewStateStore constructs a state store.
func NewStateStore(db *DB) *StateStore { return &StateStore{db: db} }

// Get returns the stored document for the user.
func (s *StateStore) Get(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	const q = `SELECT state FROM states WHERE user_id=$1`
	var doc []byte
	if err := s.db.Pool.QueryRow(ctx, q, userID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Replace upserts the document and bumps the owner's updated_at, atomically.
func (s *StateStore) Replace(ctx context.Context, userID uuid.UUID, doc json.RawMessage) (err error) {
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

	const upsert = `
INSERT INTO states (user_id, state)
VALUES ($1, $2)
ON CONFLICT (user_id)
DO UPDATE SET state = EXCLUDED.state, updated_at = now()`
	if _, err = tx.Exec(ctx, upsert, userID, []byte(doc)); err != nil {
		return err
	}

	const touch = `UPDATE users SET updated_at = now() WHERE id = $1`
	_, err = tx.Exec(ctx, touch, userID)
	return err
}

// All returns every user's document in creation order. The order is stable,
// which is what the ranking tie-break relies on.
func (s *StateStore) All(ctx context.Context) ([]model.UserState, error) {
	const q = `
SELECT u.username, s.state
FROM users u
JOIN states s ON s.user_id = u.id
ORDER BY u.created_at, u.id`
	rows, err := s.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserState
	for rows.Next() {
		var us model.UserState
		var doc []byte
		if err := rows.Scan(&us.Username, &doc); err != nil {
			return nil, err
		}
		us.Doc = doc
		out = append(out, us)
	}
	return out, rows.Err()
}
