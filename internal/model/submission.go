package model

import "time"

// PromptID uniquely identifies a prompt
type PromptID string

// Prompt is a question authored by one participant at join time,
// answered by the opposite category. Immutable after creation; the
// ordinal is used only for display ordering.
type Prompt struct {
	ID        PromptID
	SessionID SessionID
	AuthorID  ParticipantID
	Text      string
	Ordinal   int
	CreatedAt time.Time
}

// Response is an answer to a prompt, unique per (prompt, responder).
// Later submissions for the same key overwrite the text.
type Response struct {
	SessionID   SessionID
	PromptID    PromptID
	ResponderID ParticipantID
	Text        string
	UpdatedAt   time.Time
}

// FinalChoice is a participant's single end-of-game pick, unique per
// (session, voter). An empty TargetID is the explicit "no choice" sentinel.
type FinalChoice struct {
	SessionID SessionID
	VoterID   ParticipantID
	TargetID  ParticipantID // empty means no choice
	UpdatedAt time.Time
}

// Chose reports whether the voter picked somebody
func (f FinalChoice) Chose() bool {
	return f.TargetID != ""
}

// Match is a mutual final-choice pair, canonicalized with the lower id first
type Match struct {
	SessionID  SessionID
	FirstID    ParticipantID
	SecondID   ParticipantID
	ComputedAt time.Time
}

// NewMatch builds a canonical match pair from two participant ids
func NewMatch(sessionID SessionID, a, b ParticipantID, at time.Time) Match {
	if b < a {
		a, b = b, a
	}
	return Match{
		SessionID:  sessionID,
		FirstID:    a,
		SecondID:   b,
		ComputedAt: at,
	}
}

// AbuseReport records one participant reporting another. Stored as-is,
// not gated by session phase.
type AbuseReport struct {
	ReporterID ParticipantID
	ReportedID ParticipantID
	Reason     string
	ContentRef string
	CreatedAt  time.Time
}
