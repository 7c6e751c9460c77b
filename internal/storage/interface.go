package storage

import (
	"context"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// Store defines the interface for data persistence. It is the single
// source of truth after a process restart; only timers live in memory.
type Store interface {
	// Participant operations
	SaveParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	GetParticipantByExternalID(ctx context.Context, externalID string) (*model.Participant, error)

	// Session operations
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// ListOpenSessions returns sessions in the lobby phase, oldest first
	ListOpenSessions(ctx context.Context) ([]*model.Session, error)
	// ListActiveSessions returns all non-terminal sessions, oldest first
	ListActiveSessions(ctx context.Context) ([]*model.Session, error)

	// Participation operations
	AddParticipation(ctx context.Context, p *model.Participation) error
	GetParticipations(ctx context.Context, sessionID model.SessionID) ([]*model.Participation, error)
	// ActiveSessionFor returns the non-terminal session the participant is
	// attached to, if any
	ActiveSessionFor(ctx context.Context, id model.ParticipantID) (model.SessionID, bool, error)

	// Prompt operations
	SavePrompt(ctx context.Context, p *model.Prompt) error
	GetPrompt(ctx context.Context, id model.PromptID) (*model.Prompt, error)
	// GetPrompts returns a session's prompts ordered by ordinal
	GetPrompts(ctx context.Context, sessionID model.SessionID) ([]*model.Prompt, error)

	// Response operations: at most one record per (prompt, responder)
	UpsertResponse(ctx context.Context, r *model.Response) error
	GetResponses(ctx context.Context, sessionID model.SessionID) ([]*model.Response, error)

	// Final choice operations: at most one record per (session, voter)
	UpsertFinalChoice(ctx context.Context, c *model.FinalChoice) error
	GetFinalChoices(ctx context.Context, sessionID model.SessionID) ([]*model.FinalChoice, error)

	// Match operations
	SaveMatches(ctx context.Context, sessionID model.SessionID, matches []model.Match) error
	GetMatches(ctx context.Context, sessionID model.SessionID) ([]model.Match, error)

	// Report operations
	SaveReport(ctx context.Context, r *model.AbuseReport) error
}
