package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/store"
)

// StateService defines access to the per-user skill-state document. The
// document is opaque to the server beyond being a JSON object.
type StateService interface {
	// Get returns the stored document, or a fresh default one when the user
	// has no row yet.
	Get(ctx context.Context, userID uuid.UUID) (json.RawMessage, error)
	// Replace overwrites the document wholesale. Last write wins.
	Replace(ctx context.Context, userID uuid.UUID, doc json.RawMessage) error
}

type StateServiceImpl struct {
	states store.StateStore
}

// NewStateService constructs StateService.
func NewStateService(states store.StateStore) *StateServiceImpl {
	return &StateServiceImpl{states: states}
}

// Get returns the persisted document, falling back to the default.
func (s *StateServiceImpl) Get(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	doc, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.DefaultStateJSON(time.Now())
		}
		return nil, err
	}
	return doc, nil
}

// Replace validates that doc is a JSON object and stores it wholesale.
// The server performs no validation of XP/level arithmetic; the client owns
// the progression rules.
func (s *StateServiceImpl) Replace(ctx context.Context, userID uuid.UUID, doc json.RawMessage) error {
	if !isJSONObject(doc) {
		return fmt.Errorf("%w: state must be an object", errs.ErrInvalid)
	}
	return s.states.Replace(ctx, userID, doc)
}

// isJSONObject reports whether raw parses as a JSON object (not null, array,
// or scalar).
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(trimmed, &obj) == nil
}
