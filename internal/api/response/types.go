// Package response defines the JSON response types for the API
package response

import (
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// Participant is a participant in API responses
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Category    string `json:"category,omitempty"`
}

// NewParticipant converts a model participant to a response participant
func NewParticipant(p *model.Participant) Participant {
	return Participant{
		ID:          string(p.ID),
		DisplayName: p.Profile.DisplayName,
		Username:    p.Profile.Username,
		PhotoURL:    p.Profile.PhotoURL,
		Category:    string(p.Category),
	}
}

// Player is a session roster entry
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Category    string `json:"category"`
}

// Prompt is a prompt as shown in a snapshot
type Prompt struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	Ordinal  int    `json:"ordinal"`
}

// Answer is a recorded response as shown in a snapshot
type Answer struct {
	PromptID    string `json:"prompt_id"`
	ResponderID string `json:"responder_id"`
	Text        string `json:"text"`
}

// Choice is a recorded final choice as shown in a snapshot
type Choice struct {
	VoterID  string `json:"voter_id"`
	TargetID string `json:"target_id"`
}

// Snapshot is the full session state as shown to clients
type Snapshot struct {
	SessionID        string   `json:"session_id"`
	Phase            string   `json:"phase"`
	TotalItems       int      `json:"total_items"`
	Males            []Player `json:"males"`
	Females          []Player `json:"females"`
	Prompts          []Prompt `json:"prompts,omitempty"`
	Answers          []Answer `json:"answers,omitempty"`
	Choices          []Choice `json:"choices,omitempty"`
	SecondsRemaining *int     `json:"seconds_remaining,omitempty"`
}

// NewSnapshot converts a model snapshot to a response snapshot
func NewSnapshot(s *model.Snapshot) Snapshot {
	out := Snapshot{
		SessionID:        string(s.SessionID),
		Phase:            string(s.Phase),
		TotalItems:       s.TotalItems,
		Males:            make([]Player, 0, len(s.Males)),
		Females:          make([]Player, 0, len(s.Females)),
		SecondsRemaining: s.SecondsRemaining,
	}
	for _, p := range s.Males {
		out.Males = append(out.Males, newPlayer(p))
	}
	for _, p := range s.Females {
		out.Females = append(out.Females, newPlayer(p))
	}
	for _, p := range s.Prompts {
		out.Prompts = append(out.Prompts, Prompt{
			ID:       string(p.ID),
			AuthorID: string(p.AuthorID),
			Text:     p.Text,
			Ordinal:  p.Ordinal,
		})
	}
	for _, r := range s.Responses {
		out.Answers = append(out.Answers, Answer{
			PromptID:    string(r.PromptID),
			ResponderID: string(r.ResponderID),
			Text:        r.Text,
		})
	}
	for _, c := range s.FinalChoices {
		out.Choices = append(out.Choices, Choice{
			VoterID:  string(c.VoterID),
			TargetID: string(c.TargetID),
		})
	}
	return out
}

func newPlayer(p model.SnapshotPlayer) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Username:    p.Username,
		PhotoURL:    p.PhotoURL,
		Category:    string(p.Category),
	}
}

// JoinResult is the response to a join request
type JoinResult struct {
	SessionID string   `json:"session_id"`
	Snapshot  Snapshot `json:"snapshot"`
}

// Match is a mutual pair in API responses
type Match struct {
	FirstID  string `json:"first_id"`
	SecondID string `json:"second_id"`
}

// MatchList is the response to a matches request
type MatchList struct {
	SessionID string  `json:"session_id"`
	Matches   []Match `json:"matches"`
}

// NewMatchList converts model matches to a response match list
func NewMatchList(sessionID model.SessionID, matches []model.Match) MatchList {
	out := MatchList{
		SessionID: string(sessionID),
		Matches:   make([]Match, 0, len(matches)),
	}
	for _, m := range matches {
		out.Matches = append(out.Matches, Match{
			FirstID:  string(m.FirstID),
			SecondID: string(m.SecondID),
		})
	}
	return out
}

// CountdownTick is the payload of a countdown-tick event
type CountdownTick struct {
	Phase            string `json:"phase"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

// SessionClosed is the payload of a session-closed event
type SessionClosed struct {
	Reason string `json:"reason"`
}

// Health is the health check response
type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// OK is a minimal acknowledgment response
type OK struct {
	OK bool `json:"ok"`
}
