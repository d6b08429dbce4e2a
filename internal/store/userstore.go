// Package store defines storage interfaces implemented by concrete backends.
package store

import (
	"context"
	"encoding/json"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/model"
)

// UserStore provides access to account identity rows.
type UserStore interface {
	// Create inserts a new user together with its initial skill-state document
	// in a single transaction. Returns errs.ErrAlreadyExists when the email or
	// username is taken (case-insensitively).
	Create(ctx context.Context, u *model.User, initialState json.RawMessage) error
	// ByID loads a user by ID.
	ByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// ByEmail loads a user by normalized email.
	ByEmail(ctx context.Context, email string) (*model.User, error)
	// ByUsername loads a user by username, matched case-insensitively.
	ByUsername(ctx context.Context, username string) (*model.User, error)
	// Search returns up to limit users whose username contains q
	// (case-insensitive), excluding one user, ordered by username ascending.
	Search(ctx context.Context, q string, exclude uuid.UUID, limit int) ([]model.UserRef, error)
}
