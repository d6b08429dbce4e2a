package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/leveluplife/server/internal/model"
)

// tokenResponse is returned by both register and login.
type tokenResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := s.accounts.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	token, _, err := s.sessions.Issue(u.Email)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{Token: token, Email: u.Email, Username: u.Username})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := s.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	token, _, err := s.sessions.Issue(u.Email)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{Token: token, Email: u.Email, Username: u.Username})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	respond(w, http.StatusOK, map[string]string{
		"id":       u.ID.String(),
		"email":    u.Email,
		"username": u.Username,
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	doc, err := s.states.Get(r.Context(), u.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]json.RawMessage{"state": doc})
}

func (s *Server) putState(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	var req struct {
		State json.RawMessage `json:"state"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.states.Replace(r.Context(), u.ID, req.State); err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	users, err := s.friends.Search(r.Context(), r.URL.Query().Get("q"), u.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if users == nil {
		users = []model.UserRef{}
	}
	respond(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) friendRequest(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	var req struct {
		Username string `json:"username"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	status, err := s.friends.Request(r.Context(), u.ID, req.Username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]model.FriendRequestStatus{"status": status})
}

func (s *Server) friendRequests(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	reqs, err := s.friends.Incoming(r.Context(), u.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []model.IncomingRequest{}
	}
	respond(w, http.StatusOK, map[string]any{"requests": reqs})
}

func (s *Server) friendRespond(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	var req struct {
		RequestID string `json:"requestId"`
		Action    string `json:"action"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.friends.Respond(r.Context(), u.ID, req.RequestID, req.Action); err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromCtx(r.Context())
	names, err := s.friends.Friends(r.Context(), u.ID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respond(w, http.StatusOK, map[string]any{"friends": names})
}

func (s *Server) rankSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.rank.TopSkills(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"skills": skills})
}
