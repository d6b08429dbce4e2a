package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
)

// FriendStore implements store.FriendStore using SQLite.
type FriendStore struct{ db *DB }

// NewFriendStore constructs a friend store.
func NewFriendStore(db *DB) *FriendStore { return &FriendStore{db: db} }

type requestRow struct {
	ID         uuid.UUID `db:"id"`
	FromUserID uuid.UUID `db:"from_user_id"`
	ToUserID   uuid.UUID `db:"to_user_id"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r requestRow) toModel() *model.FriendRequest {
	return &model.FriendRequest{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Status:     model.FriendRequestStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const requestColumns = `id, from_user_id, to_user_id, status, created_at, updated_at`

// CreateRequest inserts a pending request; duplicates are silently ignored.
func (s *FriendStore) CreateRequest(ctx context.Context, fr *model.FriendRequest) error {
	const q = `
INSERT OR IGNORE INTO friend_requests (id, from_user_id, to_user_id, status)
VALUES (?, ?, ?, 'pending')`
	_, err := s.db.sq.ExecContext(ctx, q, fr.ID, fr.FromUserID, fr.ToUserID)
	return err
}

// PendingRequest returns the pending request for the ordered (from, to) pair.
func (s *FriendStore) PendingRequest(ctx context.Context, from, to uuid.UUID) (*model.FriendRequest, error) {
	const q = `
SELECT ` + requestColumns + `
FROM friend_requests
WHERE from_user_id = ? AND to_user_id = ? AND status = 'pending'`
	return s.getOne(ctx, q, from, to)
}

// RequestByID returns a pending request by ID.
func (s *FriendStore) RequestByID(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	const q = `
SELECT ` + requestColumns + `
FROM friend_requests
WHERE id = ? AND status = 'pending'`
	return s.getOne(ctx, q, id)
}

// IncomingRequests lists pending requests addressed to the user, newest first.
func (s *FriendStore) IncomingRequests(ctx context.Context, userID uuid.UUID) ([]model.IncomingRequest, error) {
	const q = `
SELECT fr.id, u.username AS from_username, fr.created_at
FROM friend_requests fr
JOIN users u ON u.id = fr.from_user_id
WHERE fr.to_user_id = ? AND fr.status = 'pending'
ORDER BY fr.created_at DESC, fr.id DESC`
	var rows []struct {
		ID           uuid.UUID `db:"id"`
		FromUsername string    `db:"from_username"`
		CreatedAt    time.Time `db:"created_at"`
	}
	if err := s.db.sq.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	var out []model.IncomingRequest
	for _, r := range rows {
		out = append(out, model.IncomingRequest{ID: r.ID, FromUsername: r.FromUsername, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// Accept deletes the request and inserts both directed friendship rows in one
// transaction.
func (s *FriendStore) Accept(ctx context.Context, requestID, a, b uuid.UUID) (err error) {
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

	const ins = `
INSERT OR IGNORE INTO friendships (user_id, friend_id)
VALUES (?, ?), (?, ?)`
	if _, err = tx.ExecContext(ctx, ins, a, b, b, a); err != nil {
		return err
	}

	const del = `DELETE FROM friend_requests WHERE id = ?`
	_, err = tx.ExecContext(ctx, del, requestID)
	return err
}

// DeleteRequest removes a request row without creating a friendship.
func (s *FriendStore) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	const q = `DELETE FROM friend_requests WHERE id = ?`
	_, err := s.db.sq.ExecContext(ctx, q, requestID)
	return err
}

// Friends lists usernames related to the user, ordered alphabetically.
func (s *FriendStore) Friends(ctx context.Context, userID uuid.UUID) ([]string, error) {
	const q = `
SELECT u.username
FROM friendships f
JOIN users u ON u.id = f.friend_id
WHERE f.user_id = ?
ORDER BY u.username`
	var out []string
	if err := s.db.sq.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FriendStore) getOne(ctx context.Context, query string, args ...any) (*model.FriendRequest, error) {
	var r requestRow
	if err := s.db.sq.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return r.toModel(), nil
}
