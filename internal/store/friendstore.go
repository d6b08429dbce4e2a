package store

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/model"
)

// FriendStore manages directed friend requests and the symmetric friendship
// relation they resolve into.
type FriendStore interface {
	// CreateRequest inserts a pending request. A duplicate (from, to) pair is
	// silently ignored, not an error.
	CreateRequest(ctx context.Context, fr *model.FriendRequest) error
	// PendingRequest returns the pending request from one user to another, or
	// errs.ErrNotFound.
	PendingRequest(ctx context.Context, from, to uuid.UUID) (*model.FriendRequest, error)
	// RequestByID returns a pending request by its ID, or errs.ErrNotFound.
	RequestByID(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error)
	// IncomingRequests lists pending requests addressed to the user, most
	// recent first.
	IncomingRequests(ctx context.Context, userID uuid.UUID) ([]model.IncomingRequest, error)
	// Accept deletes the request and inserts both directed friendship rows
	// (a->b and b->a) in a single transaction.
	Accept(ctx context.Context, requestID, a, b uuid.UUID) error
	// DeleteRequest removes a request without creating a friendship.
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error
	// Friends lists usernames related to the user, ordered alphabetically.
	Friends(ctx context.Context, userID uuid.UUID) ([]string, error)
}
