package service

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/leveluplife/server/internal/model"
	"github.com/leveluplife/server/internal/store"
)

// rankTopN is how many entries each per-skill leaderboard keeps.
const rankTopN = 10

// RankService derives a read-only leaderboard view by scanning all users'
// skill states. A full scan per call; acceptable at the intended scale.
type RankService interface {
	// TopSkills groups every user's skill levels by skill id, sorted
	// descending by level and truncated to the top ten. Ties keep scan order.
	TopSkills(ctx context.Context) (map[string][]model.RankEntry, error)
}

type RankServiceImpl struct {
	states store.StateStore
}

// NewRankService constructs RankService.
func NewRankService(states store.StateStore) *RankServiceImpl {
	return &RankServiceImpl{states: states}
}

// rankedDoc is the only structural view the server takes of a state document.
type rankedDoc struct {
	Skills map[string]struct {
		Level int `json:"level"`
	} `json:"skills"`
}

// TopSkills scans every stored document, ignoring any without a well-formed
// skills map rather than failing the whole aggregation.
func (s *RankServiceImpl) TopSkills(ctx context.Context) (map[string][]model.RankEntry, error) {
	all, err := s.states.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]model.RankEntry)
	for _, us := range all {
		var doc rankedDoc
		if err := json.Unmarshal(us.Doc, &doc); err != nil || doc.Skills == nil {
			continue
		}
		// Deterministic per-user skill order keeps the tie-break stable.
		ids := make([]string, 0, len(doc.Skills))
		for id := range doc.Skills {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			out[id] = append(out[id], model.RankEntry{
				Username: us.Username,
				Level:    doc.Skills[id].Level,
			})
		}
	}

	for id, entries := range out {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Level > entries[j].Level
		})
		if len(entries) > rankTopN {
			entries = entries[:rankTopN]
		}
		out[id] = entries
	}
	return out, nil
}
