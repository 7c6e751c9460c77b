package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

//go:embed schema.sql
var embeddedSchema embed.FS

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and initializes the schema
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s := New(db)
	if err := s.InitSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a SQLite storage over an existing connection
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// InitSchema applies the embedded schema
func (s *Storage) InitSchema() error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return err
	}

	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return err
	}

	schema := strings.TrimSpace(string(b))
	_, err = s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO participants(id, external_id, display_name, username, photo_url, category, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    display_name = excluded.display_name,
    username = excluded.username,
    photo_url = excluded.photo_url,
    category = excluded.category,
    updated_at = excluded.updated_at
`, p.ID, nullable(p.ExternalID), p.Profile.DisplayName, p.Profile.Username, p.Profile.PhotoURL,
		string(p.Category), p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, IFNULL(external_id, ''), display_name, username, photo_url, category, created_at, updated_at
FROM participants WHERE id = ?
`, id)
	return scanParticipant(row)
}

func (s *Storage) GetParticipantByExternalID(ctx context.Context, externalID string) (*model.Participant, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, IFNULL(external_id, ''), display_name, username, photo_url, category, created_at, updated_at
FROM participants WHERE external_id = ?
`, externalID)
	return scanParticipant(row)
}

func scanParticipant(row *sql.Row) (*model.Participant, error) {
	var p model.Participant
	var category string
	err := row.Scan(&p.ID, &p.ExternalID, &p.Profile.DisplayName, &p.Profile.Username,
		&p.Profile.PhotoURL, &category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}
	p.Category = model.Category(category)
	return &p, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, sess *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions(id, phase, total_items, created_at, started_at, ended_at, phase_changed_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    phase = excluded.phase,
    total_items = excluded.total_items,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at,
    phase_changed_at = excluded.phase_changed_at,
    updated_at = excluded.updated_at
`, sess.ID, string(sess.Phase), sess.TotalItems, sess.CreatedAt,
		nullTime(sess.StartedAt), nullTime(sess.EndedAt), sess.PhaseChangedAt, sess.UpdatedAt)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, phase, total_items, created_at, started_at, ended_at, phase_changed_at, updated_at
FROM sessions WHERE id = ?
`, id)

	sess, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *Storage) ListOpenSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listSessions(ctx, `
SELECT id, phase, total_items, created_at, started_at, ended_at, phase_changed_at, updated_at
FROM sessions WHERE phase = ? ORDER BY created_at, id
`, string(model.PhaseLobby))
}

func (s *Storage) ListActiveSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listSessions(ctx, `
SELECT id, phase, total_items, created_at, started_at, ended_at, phase_changed_at, updated_at
FROM sessions WHERE phase NOT IN (?, ?) ORDER BY created_at, id
`, string(model.PhaseResults), string(model.PhaseClosed))
}

func (s *Storage) listSessions(ctx context.Context, query string, args ...any) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func scanSession(scan func(...any) error) (*model.Session, error) {
	var sess model.Session
	var phase string
	var startedAt, endedAt sql.NullTime
	err := scan(&sess.ID, &phase, &sess.TotalItems, &sess.CreatedAt,
		&startedAt, &endedAt, &sess.PhaseChangedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sess.Phase = model.Phase(phase)
	if startedAt.Valid {
		t := startedAt.Time
		sess.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		sess.EndedAt = &t
	}
	return &sess, nil
}

// Participation operations

func (s *Storage) AddParticipation(ctx context.Context, p *model.Participation) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO participations(session_id, participant_id, joined_at) VALUES (?, ?, ?)
`, p.SessionID, p.ParticipantID, p.JoinedAt)
	return err
}

func (s *Storage) GetParticipations(ctx context.Context, sessionID model.SessionID) ([]*model.Participation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, participant_id, joined_at
FROM participations WHERE session_id = ? ORDER BY joined_at, participant_id
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.SessionID, &p.ParticipantID, &p.JoinedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) ActiveSessionFor(ctx context.Context, id model.ParticipantID) (model.SessionID, bool, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
SELECT p.session_id
FROM participations p
JOIN sessions s ON s.id = p.session_id
WHERE p.participant_id = ? AND s.phase NOT IN (?, ?)
LIMIT 1
`, id, string(model.PhaseResults), string(model.PhaseClosed)).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.SessionID(sessionID), true, nil
}

// Prompt operations

func (s *Storage) SavePrompt(ctx context.Context, p *model.Prompt) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO prompts(id, session_id, author_id, text, ordinal, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    text = excluded.text,
    ordinal = excluded.ordinal
`, p.ID, p.SessionID, p.AuthorID, p.Text, p.Ordinal, p.CreatedAt)
	return err
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.Prompt, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, session_id, author_id, text, ordinal, created_at FROM prompts WHERE id = ?
`, id)

	var p model.Prompt
	err := row.Scan(&p.ID, &p.SessionID, &p.AuthorID, &p.Text, &p.Ordinal, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPromptNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetPrompts(ctx context.Context, sessionID model.SessionID) ([]*model.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, author_id, text, ordinal, created_at
FROM prompts WHERE session_id = ? ORDER BY ordinal, created_at, id
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.Prompt
	for rows.Next() {
		var p model.Prompt
		if err := rows.Scan(&p.ID, &p.SessionID, &p.AuthorID, &p.Text, &p.Ordinal, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Response operations

func (s *Storage) UpsertResponse(ctx context.Context, r *model.Response) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO responses(session_id, prompt_id, responder_id, text, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(prompt_id, responder_id) DO UPDATE SET
    text = excluded.text,
    updated_at = excluded.updated_at
`, r.SessionID, r.PromptID, r.ResponderID, r.Text, r.UpdatedAt)
	return err
}

func (s *Storage) GetResponses(ctx context.Context, sessionID model.SessionID) ([]*model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, prompt_id, responder_id, text, updated_at
FROM responses WHERE session_id = ? ORDER BY prompt_id, responder_id
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.Response
	for rows.Next() {
		var r model.Response
		if err := rows.Scan(&r.SessionID, &r.PromptID, &r.ResponderID, &r.Text, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Final choice operations

func (s *Storage) UpsertFinalChoice(ctx context.Context, c *model.FinalChoice) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO final_choices(session_id, voter_id, target_id, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(session_id, voter_id) DO UPDATE SET
    target_id = excluded.target_id,
    updated_at = excluded.updated_at
`, c.SessionID, c.VoterID, c.TargetID, c.UpdatedAt)
	return err
}

func (s *Storage) GetFinalChoices(ctx context.Context, sessionID model.SessionID) ([]*model.FinalChoice, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, voter_id, target_id, updated_at
FROM final_choices WHERE session_id = ? ORDER BY voter_id
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*model.FinalChoice
	for rows.Next() {
		var c model.FinalChoice
		if err := rows.Scan(&c.SessionID, &c.VoterID, &c.TargetID, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Match operations

func (s *Storage) SaveMatches(ctx context.Context, sessionID model.SessionID, matches []model.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO matches(session_id, first_id, second_id, computed_at) VALUES (?, ?, ?, ?)
`, m.SessionID, m.FirstID, m.SecondID, m.ComputedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) GetMatches(ctx context.Context, sessionID model.SessionID) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, first_id, second_id, computed_at
FROM matches WHERE session_id = ? ORDER BY first_id, second_id
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.SessionID, &m.FirstID, &m.SecondID, &m.ComputedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Report operations

func (s *Storage) SaveReport(ctx context.Context, r *model.AbuseReport) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO reports(reporter_id, reported_id, reason, content_ref, created_at)
VALUES (?, ?, ?, ?, ?)
`, r.ReporterID, r.ReportedID, r.Reason, r.ContentRef, r.CreatedAt)
	return err
}

// nullable converts an empty string to NULL so the UNIQUE index on
// external_id ignores participants without one
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a nil *time.Time to NULL
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
