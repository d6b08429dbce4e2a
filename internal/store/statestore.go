package store

import (
	"context"
	"encoding/json"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/model"
)

// StateStore persists one opaque skill-state document per user.
type StateStore interface {
	// Get returns the stored document, or errs.ErrNotFound when the user has
	// no row yet.
	Get(ctx context.Context, userID uuid.UUID) (json.RawMessage, error)
	// Replace overwrites the document wholesale (insert-or-update) and bumps
	// the owning user's updated_at. Last write wins.
	Replace(ctx context.Context, userID uuid.UUID, doc json.RawMessage) error
	// All returns every user's username and document, in stable scan order.
	// Used by the ranking aggregator.
	All(ctx context.Context) ([]model.UserState, error)
}
