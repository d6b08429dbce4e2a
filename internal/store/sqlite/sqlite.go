// Package sqlite contains SQLite implementations of store interfaces,
// intended for single-node deployments and tests.
package sqlite

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// DB wraps an sqlx handle over mattn/go-sqlite3.
type DB struct{ sq *sqlx.DB }

// schema is applied on every open; all statements are idempotent.
// Case-insensitive uniqueness uses COLLATE NOCASE, mirroring what the
// Postgres backend does with lower() indexes.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key
    ON users (email COLLATE NOCASE);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key
    ON users (username COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS states (
    user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    state      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS friend_requests (
    id           TEXT PRIMARY KEY,
    from_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    to_user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status       TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (from_user_id, to_user_id)
);

CREATE INDEX IF NOT EXISTS friend_requests_to_idx
    ON friend_requests (to_user_id, status);

CREATE TABLE IF NOT EXISTS friendships (
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    friend_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, friend_id)
);
`

// Open opens (creating if necessary) the database at path and bootstraps the
// schema. path may be ":memory:" for tests.
func Open(ctx context.Context, path string) (*DB, error) {
	sq, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := sq.PingContext(ctx); err != nil {
		sq.Close()
		return nil, err
	}
	if _, err := sq.ExecContext(ctx, schema); err != nil {
		sq.Close()
		return nil, err
	}
	return &DB{sq: sq}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.sq.Close() }

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
