package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
)

// FriendStore implements store.FriendStore using PostgreSQL.
type FriendStore struct{ db *DB }

// NewFriendStore constructs a friend store.
func NewFriendStore(db *DB) *FriendStore { return &FriendStore{db: db} }

// CreateRequest inserts a pending request; duplicates are silently ignored.
func (s *FriendStore) CreateRequest(ctx context.Context, fr *model.FriendRequest) error {
	const q = `
INSERT INTO friend_requests (id, from_user_id, to_user_id, status)
VALUES ($1, $2, $3, 'pending')
ON CONFLICT (from_user_id, to_user_id) DO NOTHING`
	_, err := s.db.Pool.Exec(ctx, q, fr.ID, fr.FromUserID, fr.ToUserID)
	return err
}

const requestColumns = `id, from_user_id, to_user_id, status, created_at, updated_at`

// PendingRequest returns the pending request for the ordered (from, to) pair.
func (s *FriendStore) PendingRequest(ctx context.Context, from, to uuid.UUID) (*model.FriendRequest, error) {
	const q = `
SELECT ` + requestColumns + `
FROM friend_requests
WHERE from_user_id=$1 AND to_user_id=$2 AND status='pending'`
	return scanRequest(s.db.Pool.QueryRow(ctx, q, from, to))
}

// RequestByID returns a pending request by ID.
func (s *FriendStore) RequestByID(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	const q = `
SELECT ` + requestColumns + `
FROM friend_requests
WHERE id=$1 AND status='pending'`
	return scanRequest(s.db.Pool.QueryRow(ctx, q, id))
}

// IncomingRequests lists pending requests addressed to the user, newest first.
func (s *FriendStore) IncomingRequests(ctx context.Context, userID uuid.UUID) ([]model.IncomingRequest, error) {
	const q = `
SELECT fr.id, u.username, fr.created_at
FROM friend_requests fr
JOIN users u ON u.id = fr.from_user_id
WHERE fr.to_user_id = $1 AND fr.status = 'pending'
ORDER BY fr.created_at DESC`
	rows, err := s.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IncomingRequest
	for rows.Next() {
		var r model.IncomingRequest
		if err := rows.Scan(&r.ID, &r.FromUsername, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Accept deletes the request and inserts both directed friendship rows in one
// transaction, so a half-created friendship is never observable.
func (s *FriendStore) Accept(ctx context.Context, requestID, a, b uuid.UUID) (err error) {
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

	const ins = `
INSERT INTO friendships (user_id, friend_id)
VALUES ($1, $2), ($2, $1)
ON CONFLICT DO NOTHING`
	if _, err = tx.Exec(ctx, ins, a, b); err != nil {
		return err
	}

	const del = `DELETE FROM friend_requests WHERE id=$1`
	_, err = tx.Exec(ctx, del, requestID)
	return err
}

// DeleteRequest removes a request row without creating a friendship.
func (s *FriendStore) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	const q = `DELETE FROM friend_requests WHERE id=$1`
	_, err := s.db.Pool.Exec(ctx, q, requestID)
	return err
}

// Friends lists usernames related to the user, ordered alphabetically.
func (s *FriendStore) Friends(ctx context.Context, userID uuid.UUID) ([]string, error) {
	const q = `
SELECT u.username
FROM friendships f
JOIN users u ON u.id = f.friend_id
WHERE f.user_id = $1
ORDER BY u.username`
	rows, err := s.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*model.FriendRequest, error) {
	var fr model.FriendRequest
	err := row.Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &fr, nil
}
