package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
)

// StateStore implements store.StateStore using SQLite.
type StateStore struct{ db *DB }

// NewStateStore constructs a state store.
func NewStateStore(db *DB) *StateStore { return &StateStore{db: db} }

// Get returns the stored document for the user.
func (s *StateStore) Get(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	const q = `SELECT state FROM states WHERE user_id = ?`
	var doc string
	if err := s.db.sq.GetContext(ctx, &doc, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(doc), nil
}

// Replace upserts the document and bumps the owner's updated_at, atomically.
func (s *StateStore) Replace(ctx context.Context, userID uuid.UUID, doc json.RawMessage) (err error) {
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

	const upsert = `
INSERT INTO states (user_id, state)
VALUES (?, ?)
ON CONFLICT (user_id)
DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`
	if _, err = tx.ExecContext(ctx, upsert, userID, string(doc)); err != nil {
		return err
	}

	const touch = `UPDATE users SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err = tx.ExecContext(ctx, touch, userID)
	return err
}

// All returns every user's document in creation order.
func (s *StateStore) All(ctx context.Context) ([]model.UserState, error) {
	const q = `
SELECT u.username, s.state
FROM users u
JOIN states s ON s.user_id = u.id
ORDER BY u.created_at, u.id`
	var rows []struct {
		Username string `db:"username"`
		State    string `db:"state"`
	}
	if err := s.db.sq.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	var out []model.UserState
	for _, r := range rows {
		out = append(out, model.UserState{Username: r.Username, Doc: json.RawMessage(r.State)})
	}
	return out, nil
}
