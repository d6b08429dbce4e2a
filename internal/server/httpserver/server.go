// Package httpserver exposes the LevelUpLife JSON REST API.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/leveluplife/server/internal/errs"
	"github.com/leveluplife/server/internal/service"
)

// maxBodyBytes caps JSON request bodies. State documents are the largest
// payload and the web client keeps them well under this.
const maxBodyBytes = 2 << 20

// Server wires services into HTTP handlers.
type Server struct {
	log      *zap.Logger
	accounts service.AccountService
	sessions *service.Sessions
	states   service.StateService
	friends  service.FriendService
	rank     service.RankService
}

// New constructs a Server with injected services.
func New(log *zap.Logger, accounts service.AccountService, sessions *service.Sessions,
	states service.StateService, friends service.FriendService, rank service.RankService) *Server {
	return &Server{
		log:      log,
		accounts: accounts,
		sessions: sessions,
		states:   states,
		friends:  friends,
		rank:     rank,
	}
}

// Handler builds the full middleware-wrapped handler. An empty origins list
// allows any origin.
func (s *Server) Handler(origins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.requireAuth(s.me)).Methods(http.MethodGet)

	r.HandleFunc("/api/state", s.requireAuth(s.getState)).Methods(http.MethodGet)
	r.HandleFunc("/api/state", s.requireAuth(s.putState)).Methods(http.MethodPut)

	r.HandleFunc("/api/users/search", s.requireAuth(s.searchUsers)).Methods(http.MethodGet)
	r.HandleFunc("/api/friends/request", s.requireAuth(s.friendRequest)).Methods(http.MethodPost)
	r.HandleFunc("/api/friends/requests", s.requireAuth(s.friendRequests)).Methods(http.MethodGet)
	r.HandleFunc("/api/friends/respond", s.requireAuth(s.friendRespond)).Methods(http.MethodPost)
	r.HandleFunc("/api/friends", s.requireAuth(s.listFriends)).Methods(http.MethodGet)

	r.HandleFunc("/api/rank/skills", s.requireAuth(s.rankSkills)).Methods(http.MethodGet)

	var c *cors.Cors
	if len(origins) == 0 {
		c = cors.AllowAll()
	} else {
		c = cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		})
	}

	return s.recoverPanics(s.logRequests(c.Handler(r)))
}

// respond writes v as JSON with the given status code.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the standard {"error": msg} body.
func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

// decode parses the request body into v, enforcing the body size cap.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeErr maps service errors onto status codes. Internal errors are logged
// and never leak storage details to the caller.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, errs.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "user already exists")
	default:
		s.log.Error("internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "server error")
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}
