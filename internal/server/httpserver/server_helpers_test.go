package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/service"
)

type fakeAccounts struct {
	user        *model.User
	registerErr error
	authErr     error
	byEmailErr  error
}

func (f *fakeAccounts) Register(_ context.Context, email, username, _ string) (*model.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.User{ID: f.user.ID, Email: email, Username: username}, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, _ string) (*model.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.user == nil || f.user.Email != email {
		return nil, errs.ErrUnauthorized
	}
	return f.user, nil
}

func (f *fakeAccounts) ByEmail(_ context.Context, email string) (*model.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	if f.user == nil || f.user.Email != email {
		return nil, errs.ErrNotFound
	}
	return f.user, nil
}

type fakeStates struct {
	doc        json.RawMessage
	replaced   json.RawMessage
	getErr     error
	replaceErr error
}

func (f *fakeStates) Get(context.Context, uuid.UUID) (json.RawMessage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *fakeStates) Replace(_ context.Context, _ uuid.UUID, doc json.RawMessage) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = doc
	return nil
}

type fakeFriends struct {
	searchQ    string
	searchOut  []model.UserRef
	requestOut model.FriendRequestStatus
	requestErr error
	incoming   []model.IncomingRequest
	respondErr error
	friends    []string
}

func (f *fakeFriends) Search(_ context.Context, q string, _ uuid.UUID) ([]model.UserRef, error) {
	f.searchQ = q
	return f.searchOut, nil
}

func (f *fakeFriends) Request(context.Context, uuid.UUID, string) (model.FriendRequestStatus, error) {
	if f.requestErr != nil {
		return "", f.requestErr
	}
	return f.requestOut, nil
}

func (f *fakeFriends) Incoming(context.Context, uuid.UUID) ([]model.IncomingRequest, error) {
	return f.incoming, nil
}

func (f *fakeFriends) Respond(context.Context, uuid.UUID, string, string) error {
	return f.respondErr
}

func (f *fakeFriends) Friends(context.Context, uuid.UUID) ([]string, error) {
	return f.friends, nil
}

type fakeRank struct {
	skills map[string][]model.RankEntry
	err    error
}

func (f *fakeRank) TopSkills(context.Context) (map[string][]model.RankEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.skills, nil
}

type testEnv struct {
	handler  http.Handler
	sessions *service.Sessions
	accounts *fakeAccounts
	states   *fakeStates
	friends  *fakeFriends
	rank     *fakeRank
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		sessions: service.NewSessions([]byte("test-key"), time.Hour),
		accounts: &fakeAccounts{user: &model.User{
			ID:       uuid.Must(uuid.NewV4()),
			Email:    "alice@example.com",
			Username: "alice",
		}},
		states:  &fakeStates{doc: json.RawMessage(`{"skills":{}}`)},
		friends: &fakeFriends{},
		rank:    &fakeRank{},
	}
	srv := New(zaptest.NewLogger(t), env.accounts, env.sessions, env.states, env.friends, env.rank)
	env.handler = srv.Handler(nil)
	return env
}

// do performs a request against the handler, optionally authenticated as the
// fake account.
func (env *testEnv) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if auth {
		tok, _, err := env.sessions.Issue(env.accounts.user.Email)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, code, w.Body.String())
	}
}

func wantErrorBody(t *testing.T, w *httptest.ResponseRecorder, msg string) {
	t.Helper()
	var body map[string]string
	decodeBody(t, w, &body)
	if body["error"] != msg {
		t.Fatalf("error = %q, want %q", body["error"], msg)
	}
}
