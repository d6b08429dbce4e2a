// Package service contains application services for accounts, sessions,
// skill state, the social graph, and ranking.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/leveluplife/server/internal/crypto"
	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/store"
)

// AccountService defines registration, authentication and identity lookup.
type AccountService interface {
	// Register creates a new user with a hashed password and a default skill
	// state, atomically.
	Register(ctx context.Context, email, username, password string) (*model.User, error)
	// Authenticate verifies credentials. Unknown email and wrong password
	// fail identically to avoid user enumeration.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	// ByEmail resolves the account a verified token is bound to.
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{2,20}$`)

// minPasswordLen matches what the web client enforces.
const minPasswordLen = 4

type AccountServiceImpl struct {
	users      store.UserStore
	bcryptCost int
}

// NewAccountService constructs AccountService with required dependencies.
func NewAccountService(users store.UserStore, bcryptCost int) *AccountServiceImpl {
	return &AccountServiceImpl{users: users, bcryptCost: bcryptCost}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates and normalizes the triple, hashes the password, and
// persists the user together with its initial skill state.
func (s *AccountServiceImpl) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", errs.ErrInvalid)
	}
	if !usernameRe.MatchString(username) {
		return nil, fmt.Errorf("%w: invalid username", errs.ErrInvalid)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password too short (min %d)", errs.ErrInvalid, minPasswordLen)
	}

	// Early existence check for a friendly error; the unique indexes remain
	// the source of truth under concurrent registrations.
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, errs.ErrAlreadyExists
	}
	if _, err := s.users.ByUsername(ctx, username); err == nil {
		return nil, errs.ErrAlreadyExists
	}

	hash, err := pkgcrypto.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	initial, err := model.DefaultStateJSON(time.Now())
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uid,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u, initial); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate looks up the user and verifies the password hash.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// same failure as a wrong password
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	if !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}

// ByEmail resolves a user by normalized email.
func (s *AccountServiceImpl) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.ByEmail(ctx, NormalizeEmail(email))
}
