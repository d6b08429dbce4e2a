package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/leveluplife/server/internal/errs"
)

func TestStateStore_GetMissing(t *testing.T) {
	db := openTestDB(t)
	s := NewStateStore(db)

	_, err := s.Get(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStateStore_ReplaceRoundTrip(t *testing.T) {
	db := openTestDB(t)
	s := NewStateStore(db)
	ctx := context.Background()

	u := mustCreateUser(t, db, "alice@example.com", "alice")

	doc := json.RawMessage(`{"skills":{"foco":{"level":3,"xp":12}},"log":[]}`)
	require.NoError(t, s.Replace(ctx, u.ID, doc))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.JSONEq(t, string(doc), string(got))

	// the last write wins wholesale
	doc2 := json.RawMessage(`{"skills":{}}`)
	require.NoError(t, s.Replace(ctx, u.ID, doc2))
	got, err = s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.JSONEq(t, `{"skills":{}}`, string(got))
}

func TestStateStore_All(t *testing.T) {
	db := openTestDB(t)
	s := NewStateStore(db)
	ctx := context.Background()

	a := mustCreateUser(t, db, "a@example.com", "alice")
	b := mustCreateUser(t, db, "b@example.com", "bob")
	require.NoError(t, s.Replace(ctx, a.ID, json.RawMessage(`{"skills":{"foco":{"level":5,"xp":0}}}`)))
	require.NoError(t, s.Replace(ctx, b.ID, json.RawMessage(`{"skills":{"foco":{"level":2,"xp":0}}}`)))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byName := map[string]string{}
	for _, us := range all {
		byName[us.Username] = string(us.Doc)
	}
	require.JSONEq(t, `{"skills":{"foco":{"level":5,"xp":0}}}`, byName["alice"])
	require.JSONEq(t, `{"skills":{"foco":{"level":2,"xp":0}}}`, byName["bob"])
}
