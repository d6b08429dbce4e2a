package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/store"
)

// In-memory fakes shared by the service tests.

type fakeUserStore struct {
	users map[uuid.UUID]*model.User

	// states, when set, records the initial document written by Create so
	// tests can assert user+state atomicity.
	states *fakeStateStore

	createErr error
	getErr    error
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User, initialState json.RawMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, ex := range f.users {
		if strings.EqualFold(ex.Email, u.Email) || strings.EqualFold(ex.Username, u.Username) {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *u
	f.users[u.ID] = &cpy
	if f.states != nil {
		f.states.put(u.ID, u.Username, initialState)
	}
	return nil
}

func (f *fakeUserStore) ByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserStore) ByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserStore) Search(_ context.Context, q string, exclude uuid.UUID, limit int) ([]model.UserRef, error) {
	var out []model.UserRef
	for _, u := range f.users {
		if u.ID == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(q)) {
			out = append(out, model.UserRef{ID: u.ID, Username: u.Username})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStateStore struct {
	docs  map[uuid.UUID]json.RawMessage
	names map[uuid.UUID]string
	order []uuid.UUID

	getErr     error
	replaceErr error
	allErr     error
}

var _ store.StateStore = (*fakeStateStore)(nil)

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		docs:  map[uuid.UUID]json.RawMessage{},
		names: map[uuid.UUID]string{},
	}
}

func (f *fakeStateStore) put(id uuid.UUID, username string, doc json.RawMessage) {
	if _, ok := f.docs[id]; !ok {
		f.order = append(f.order, id)
	}
	f.docs[id] = append(json.RawMessage(nil), doc...)
	f.names[id] = username
}

func (f *fakeStateStore) Get(_ context.Context, userID uuid.UUID) (json.RawMessage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return doc, nil
}

func (f *fakeStateStore) Replace(_ context.Context, userID uuid.UUID, doc json.RawMessage) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.put(userID, f.names[userID], doc)
	return nil
}

func (f *fakeStateStore) All(_ context.Context) ([]model.UserState, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var out []model.UserState
	for _, id := range f.order {
		out = append(out, model.UserState{Username: f.names[id], Doc: f.docs[id]})
	}
	return out, nil
}

type fakeFriendStore struct {
	requests    map[uuid.UUID]*model.FriendRequest
	friendships map[uuid.UUID]map[uuid.UUID]bool
	names       map[uuid.UUID]string

	seq int // drives CreatedAt ordering for incoming requests
}

var _ store.FriendStore = (*fakeFriendStore)(nil)

func newFakeFriendStore(names map[uuid.UUID]string) *fakeFriendStore {
	return &fakeFriendStore{
		requests:    map[uuid.UUID]*model.FriendRequest{},
		friendships: map[uuid.UUID]map[uuid.UUID]bool{},
		names:       names,
	}
}

func (f *fakeFriendStore) CreateRequest(_ context.Context, fr *model.FriendRequest) error {
	for _, ex := range f.requests {
		if ex.FromUserID == fr.FromUserID && ex.ToUserID == fr.ToUserID {
			return nil // silently deduplicated
		}
	}
	cpy := *fr
	f.seq++
	cpy.CreatedAt = time.Unix(int64(f.seq), 0)
	f.requests[fr.ID] = &cpy
	return nil
}

func (f *fakeFriendStore) PendingRequest(_ context.Context, from, to uuid.UUID) (*model.FriendRequest, error) {
	for _, fr := range f.requests {
		if fr.FromUserID == from && fr.ToUserID == to {
			c := *fr
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeFriendStore) RequestByID(_ context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	if fr, ok := f.requests[id]; ok {
		c := *fr
		return &c, nil
	}
	return nil, errs.ErrNotFound
}

func (f *fakeFriendStore) IncomingRequests(_ context.Context, userID uuid.UUID) ([]model.IncomingRequest, error) {
	var out []model.IncomingRequest
	for _, fr := range f.requests {
		if fr.ToUserID == userID {
			out = append(out, model.IncomingRequest{
				ID:           fr.ID,
				FromUsername: f.names[fr.FromUserID],
				CreatedAt:    fr.CreatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeFriendStore) Accept(_ context.Context, requestID, a, b uuid.UUID) error {
	f.link(a, b)
	f.link(b, a)
	delete(f.requests, requestID)
	return nil
}

func (f *fakeFriendStore) DeleteRequest(_ context.Context, requestID uuid.UUID) error {
	delete(f.requests, requestID)
	return nil
}

func (f *fakeFriendStore) Friends(_ context.Context, userID uuid.UUID) ([]string, error) {
	var out []string
	for id := range f.friendships[userID] {
		out = append(out, f.names[id])
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeFriendStore) link(a, b uuid.UUID) {
	if f.friendships[a] == nil {
		f.friendships[a] = map[uuid.UUID]bool{}
	}
	f.friendships[a][b] = true
}

func (f *fakeFriendStore) pendingCount() int { return len(f.requests) }
