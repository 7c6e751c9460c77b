// Package matching computes mutual final-choice pairs.
package matching

import (
	"sort"
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// Service computes matches from a session's final choices
type Service struct{}

// NewService creates a new matching service
func NewService() *Service {
	return &Service{}
}

// Compute returns the mutual pairs among the given final choices. A pair
// matches when each side picked the other; no-choice entries never match.
// Output pairs are canonical (lower id first) and sorted for determinism.
func (s *Service) Compute(sessionID model.SessionID, choices []*model.FinalChoice, at time.Time) []model.Match {
	picks := make(map[model.ParticipantID]model.ParticipantID, len(choices))
	for _, c := range choices {
		if c.Chose() {
			picks[c.VoterID] = c.TargetID
		}
	}

	matches := make([]model.Match, 0)
	for voter, target := range picks {
		if voter >= target {
			// Each mutual pair is visited twice; emit it from the lower id
			continue
		}
		if picks[target] == voter {
			matches = append(matches, model.NewMatch(sessionID, voter, target, at))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].FirstID != matches[j].FirstID {
			return matches[i].FirstID < matches[j].FirstID
		}
		return matches[i].SecondID < matches[j].SecondID
	})
	return matches
}
