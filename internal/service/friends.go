package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/store"
)

// Friend respond actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// searchMinLen is the minimum query length before search returns anything.
const searchMinLen = 2

// searchLimit caps username search results.
const searchLimit = 10

// FriendService manages user search, friend requests and friendships.
type FriendService interface {
	// Search finds users by username substring, excluding the requester.
	// Queries shorter than two characters yield an empty result.
	Search(ctx context.Context, q string, requester uuid.UUID) ([]model.UserRef, error)
	// Request sends a friend request to targetUsername. When a reciprocal
	// pending request exists, it is accepted instead and the resulting status
	// is FriendRequestAccepted; otherwise FriendRequestPending.
	Request(ctx context.Context, from uuid.UUID, targetUsername string) (model.FriendRequestStatus, error)
	// Incoming lists pending requests addressed to the user, newest first.
	Incoming(ctx context.Context, userID uuid.UUID) ([]model.IncomingRequest, error)
	// Respond accepts or rejects a pending request addressed to the user.
	Respond(ctx context.Context, userID uuid.UUID, requestID, action string) error
	// Friends lists the user's friends' usernames, alphabetically.
	Friends(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type FriendServiceImpl struct {
	users   store.UserStore
	friends store.FriendStore
}

// NewFriendService constructs FriendService.
func NewFriendService(users store.UserStore, friends store.FriendStore) *FriendServiceImpl {
	return &FriendServiceImpl{users: users, friends: friends}
}

// Search returns up to ten username matches, alphabetically.
func (s *FriendServiceImpl) Search(ctx context.Context, q string, requester uuid.UUID) ([]model.UserRef, error) {
	q = strings.TrimSpace(q)
	if len(q) < searchMinLen {
		return nil, nil
	}
	return s.users.Search(ctx, q, requester, searchLimit)
}

// Request resolves the target and either auto-accepts a reciprocal pending
// request or creates a new pending one. Duplicate requests are no-ops.
func (s *FriendServiceImpl) Request(ctx context.Context, from uuid.UUID, targetUsername string) (model.FriendRequestStatus, error) {
	target, err := s.users.ByUsername(ctx, strings.TrimSpace(targetUsername))
	if err != nil {
		return "", err
	}
	if target.ID == from {
		return "", fmt.Errorf("%w: cannot befriend yourself", errs.ErrInvalid)
	}

	// Mutual-request auto-accept: the target already asked us.
	opposite, err := s.friends.PendingRequest(ctx, target.ID, from)
	switch {
	case err == nil:
		if err := s.friends.Accept(ctx, opposite.ID, from, target.ID); err != nil {
			return "", err
		}
		return model.FriendRequestAccepted, nil
	case !errors.Is(err, errs.ErrNotFound):
		return "", err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	fr := &model.FriendRequest{
		ID:         id,
		FromUserID: from,
		ToUserID:   target.ID,
		Status:     model.FriendRequestPending,
	}
	if err := s.friends.CreateRequest(ctx, fr); err != nil {
		return "", err
	}
	return model.FriendRequestPending, nil
}

// Incoming lists pending requests addressed to the user.
func (s *FriendServiceImpl) Incoming(ctx context.Context, userID uuid.UUID) ([]model.IncomingRequest, error) {
	return s.friends.IncomingRequests(ctx, userID)
}

// Respond accepts or rejects a pending request. The responder must be the
// request's recipient; anything else is reported as not found.
func (s *FriendServiceImpl) Respond(ctx context.Context, userID uuid.UUID, requestID, action string) error {
	reqID, err := uuid.FromString(requestID)
	if err != nil {
		return fmt.Errorf("%w: invalid request id", errs.ErrInvalid)
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != ActionAccept && action != ActionReject {
		return fmt.Errorf("%w: invalid action", errs.ErrInvalid)
	}

	fr, err := s.friends.RequestByID(ctx, reqID)
	if err != nil {
		return err
	}
	if fr.ToUserID != userID {
		return errs.ErrNotFound
	}

	if action == ActionAccept {
		return s.friends.Accept(ctx, fr.ID, fr.FromUserID, fr.ToUserID)
	}
	return s.friends.DeleteRequest(ctx, fr.ID)
}

// Friends lists the user's friends.
func (s *FriendServiceImpl) Friends(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.friends.Friends(ctx, userID)
}
