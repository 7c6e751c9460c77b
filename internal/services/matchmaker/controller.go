// Package matchmaker places joining participants into open sessions.
package matchmaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/clock"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/random"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/moderation"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

const (
	// IDLength is the length of generated session and prompt ids
	IDLength = 12
	// IDAlphabet is the characters used in generated ids
	IDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// MinPromptRunes is the minimum length of a sanitized prompt
	MinPromptRunes = 3
)

// Controller assigns participants to sessions. Joins serialize on a
// single mutex so the FIFO scan, the one-active-session rule and
// session creation cannot race each other.
type Controller struct {
	storage  storage.Store
	sessions *session.Controller
	clock    clock.Clock
	random   random.Random
	cfg      config.Config
	logger   *slog.Logger

	mu sync.Mutex
}

// NewController creates a matchmaker controller
func NewController(
	storage storage.Store,
	sessions *session.Controller,
	clock clock.Clock,
	random random.Random,
	cfg config.Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		sessions: sessions,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "matchmaker")),
	}
}

// Join attaches the participant to the oldest open session with room
// for their category, creating a session when none fits. The prompt
// text is recorded alongside the join; all validation happens before
// any side effect. Reaching capacity (or minimum capacity with
// auto-start enabled) starts the session.
func (c *Controller) Join(ctx context.Context, participantID model.ParticipantID, promptText string) (model.SessionID, *model.Snapshot, error) {
	p, err := c.storage.GetParticipant(ctx, participantID)
	if err != nil {
		return "", nil, err
	}
	if !p.HasCategory() {
		return "", nil, model.ErrCategoryRequired
	}

	promptText = moderation.Sanitize(promptText)
	if utf8.RuneCountInString(promptText) < MinPromptRunes {
		return "", nil, model.ErrPromptTooShort
	}
	if moderation.ContainsBlockedContent(promptText) {
		return "", nil, model.ErrPromptRejected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, active, err := c.storage.ActiveSessionFor(ctx, participantID); err != nil {
		return "", nil, err
	} else if active {
		return "", nil, model.ErrAlreadyInSession
	}

	sessionID, counts, err := c.placeParticipant(ctx, p, promptText)
	if err != nil {
		return "", nil, err
	}

	if c.shouldStart(counts) {
		// A racing lobby deadline may have started or closed it already
		if err := c.sessions.Start(ctx, sessionID); err != nil && !errors.Is(err, model.ErrPhaseConflict) {
			return "", nil, err
		}
	} else {
		c.sessions.BroadcastSnapshot(ctx, sessionID)
	}

	snapshot, err := c.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	return sessionID, snapshot, nil
}

// placeParticipant scans open sessions oldest-first and attaches to the
// first with capacity, creating a fresh lobby when none fits. Returns
// the category counts after the join.
func (c *Controller) placeParticipant(ctx context.Context, p *model.Participant, promptText string) (model.SessionID, model.CategoryCounts, error) {
	open, err := c.storage.ListOpenSessions(ctx)
	if err != nil {
		return "", model.CategoryCounts{}, err
	}

	for _, candidate := range open {
		sessionID, counts, ok, err := c.tryAttach(ctx, candidate.ID, p, promptText)
		if err != nil {
			return "", model.CategoryCounts{}, err
		}
		if ok {
			return sessionID, counts, nil
		}
	}

	return c.createAndAttach(ctx, p, promptText)
}

// tryAttach re-checks the candidate under its session lock; the open
// list is read without it and may be stale
func (c *Controller) tryAttach(ctx context.Context, sessionID model.SessionID, p *model.Participant, promptText string) (model.SessionID, model.CategoryCounts, bool, error) {
	unlock := c.sessions.Lock(sessionID)
	defer unlock()

	sess, err := c.storage.GetSession(ctx, sessionID)
	if errors.Is(err, model.ErrSessionNotFound) {
		return "", model.CategoryCounts{}, false, nil
	}
	if err != nil {
		return "", model.CategoryCounts{}, false, err
	}
	if !sess.AcceptsJoins() {
		return "", model.CategoryCounts{}, false, nil
	}

	counts, err := session.CountCategories(ctx, c.storage, sessionID)
	if err != nil {
		return "", model.CategoryCounts{}, false, err
	}
	if counts.Of(p.Category) >= c.cfg.MaxPerCategory {
		return "", model.CategoryCounts{}, false, nil
	}

	counts, err = c.attach(ctx, sessionID, p, promptText, counts)
	if err != nil {
		return "", model.CategoryCounts{}, false, err
	}
	return sessionID, counts, true, nil
}

func (c *Controller) createAndAttach(ctx context.Context, p *model.Participant, promptText string) (model.SessionID, model.CategoryCounts, error) {
	now := c.clock.Now()
	sess := &model.Session{
		ID:             model.SessionID(c.random.String(IDLength, IDAlphabet)),
		Phase:          model.PhaseLobby,
		CreatedAt:      now,
		PhaseChangedAt: now,
		UpdatedAt:      now,
	}
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return "", model.CategoryCounts{}, err
	}
	c.sessions.ArmLobbyDeadline(sess.ID)

	c.logger.Info("session created",
		slog.String("session_id", string(sess.ID)))

	unlock := c.sessions.Lock(sess.ID)
	defer unlock()
	counts, err := c.attach(ctx, sess.ID, p, promptText, model.CategoryCounts{})
	if err != nil {
		return "", model.CategoryCounts{}, err
	}
	return sess.ID, counts, nil
}

// attach records the participation and the joiner's prompt. Must be
// called with the session lock held. The ordinal is provisional until
// the lobby closes and renumbers densely.
func (c *Controller) attach(ctx context.Context, sessionID model.SessionID, p *model.Participant, promptText string, counts model.CategoryCounts) (model.CategoryCounts, error) {
	now := c.clock.Now()

	if err := c.storage.AddParticipation(ctx, &model.Participation{
		SessionID:     sessionID,
		ParticipantID: p.ID,
		JoinedAt:      now,
	}); err != nil {
		return counts, err
	}

	if err := c.storage.SavePrompt(ctx, &model.Prompt{
		ID:        model.PromptID(c.random.String(IDLength, IDAlphabet)),
		SessionID: sessionID,
		AuthorID:  p.ID,
		Text:      promptText,
		Ordinal:   counts.Of(p.Category) + 1,
		CreatedAt: now,
	}); err != nil {
		return counts, err
	}

	if p.Category == model.CategoryMale {
		counts.Male++
	} else {
		counts.Female++
	}

	c.logger.Info("participant joined",
		slog.String("session_id", string(sessionID)),
		slog.String("participant_id", string(p.ID)),
		slog.String("category", string(p.Category)))
	return counts, nil
}

func (c *Controller) shouldStart(counts model.CategoryCounts) bool {
	if counts.BothAtLeast(c.cfg.MaxPerCategory) {
		return true
	}
	return c.cfg.AutoStartOnMin && counts.BothAtLeast(c.cfg.MinPerCategory)
}
