package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/leveluplife/server/internal/model"
)

// openTestDB opens a throwaway on-disk database. A file (not ":memory:") is
// used because database/sql pools connections and each in-memory connection
// would see its own empty database.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreateUser(t *testing.T, db *DB, email, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$10$hash",
	}
	require.NoError(t, NewUserStore(db).Create(context.Background(), u, json.RawMessage(`{"skills":{}}`)))
	return u
}
