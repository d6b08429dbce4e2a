// Package model defines domain entities used by services and stores.
package model

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account. The password hash is never exposed over the API.
type User struct {
	ID           uuid.UUID
	Email        string // normalized: trimmed, lowercase
	Username     string // unique case-insensitively
	PasswordHash string // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the public projection of a user used in search results.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// FriendRequestStatus enumerates the lifecycle of a directed friend request.
// Accepted/rejected requests are deleted rather than kept in a closed state,
// so only pending rows are ever observable.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is a directed edge from one user to another.
// At most one pending request exists per ordered (from, to) pair.
type FriendRequest struct {
	ID         uuid.UUID
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Status     FriendRequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IncomingRequest is a pending request as shown to its recipient.
type IncomingRequest struct {
	ID           uuid.UUID `json:"id"`
	FromUsername string    `json:"from_username"`
	CreatedAt    time.Time `json:"-"`
}

// UserState pairs a username with that user's raw skill-state document.
// The ranking aggregator scans these.
type UserState struct {
	Username string
	Doc      json.RawMessage
}

// RankEntry is one leaderboard row for a single skill.
type RankEntry struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
}

// DefaultSkillIDs is the fixed skill set every new account starts with.
var DefaultSkillIDs = []string{
	"determinacao",
	"inteligencia",
	"disciplina",
	"organizacao",
	"saude",
	"energia",
	"criatividade",
	"social",
}

// Skill is the one piece of the state document the server reads structurally.
type Skill struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// StateDoc mirrors the client's document shape. Only Skills is interpreted
// server-side (by the ranking aggregator); everything else is opaque.
type StateDoc struct {
	CreatedAt   int64                      `json:"createdAt"` // epoch ms
	Skills      map[string]Skill           `json:"skills"`
	DailyEarned map[string]json.RawMessage `json:"dailyEarned"`
	QuestsByDay map[string]json.RawMessage `json:"questsByDay"`
	Log         []json.RawMessage          `json:"log"`
}

// DefaultState builds the skill-state document a freshly registered user gets:
// every default skill at level 1 / xp 0, empty quest and log containers.
func DefaultState(now time.Time) StateDoc {
	skills := make(map[string]Skill, len(DefaultSkillIDs))
	for _, id := range DefaultSkillIDs {
		skills[id] = Skill{Level: 1, XP: 0}
	}
	return StateDoc{
		CreatedAt:   now.UnixMilli(),
		Skills:      skills,
		DailyEarned: map[string]json.RawMessage{},
		QuestsByDay: map[string]json.RawMessage{},
		Log:         []json.RawMessage{},
	}
}

// DefaultStateJSON is DefaultState serialized for storage.
func DefaultStateJSON(now time.Time) (json.RawMessage, error) {
	return json.Marshal(DefaultState(now))
}
