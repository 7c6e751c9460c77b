// Package submission records answers and final choices, and detects
// when a phase's collection is complete.
package submission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/clock"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/moderation"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

// Controller validates and stores submissions for the active phase
type Controller struct {
	storage  storage.Store
	sessions *session.Controller
	clock    clock.Clock
	logger   *slog.Logger
}

// NewController creates a submission controller
func NewController(
	storage storage.Store,
	sessions *session.Controller,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		sessions: sessions,
		clock:    clock,
		logger:   logger.With(slog.String("component", "submission")),
	}
}

// RecordResponse stores an answer to a prompt. Accepted only during
// collecting, from a session member of the category opposite the
// prompt's author. Resubmitting overwrites the previous text. When
// every prompt has enough answers the session advances to deciding.
func (c *Controller) RecordResponse(
	ctx context.Context,
	sessionID model.SessionID,
	responderID model.ParticipantID,
	promptID model.PromptID,
	text string,
) error {
	text = moderation.Sanitize(text)
	if text == "" {
		return model.ErrResponseEmpty
	}
	if moderation.ContainsBlockedContent(text) {
		return model.ErrResponseRejected
	}

	complete := false
	err := func() error {
		unlock := c.sessions.Lock(sessionID)
		defer unlock()

		sess, err := c.storage.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Phase != model.PhaseCollecting {
			return model.ErrWrongPhase
		}

		if err := c.requireMember(ctx, sessionID, responderID); err != nil {
			return err
		}
		responder, err := c.storage.GetParticipant(ctx, responderID)
		if err != nil {
			return err
		}

		prompt, err := c.storage.GetPrompt(ctx, promptID)
		if err != nil {
			return err
		}
		if prompt.SessionID != sessionID {
			return model.ErrPromptNotFound
		}
		author, err := c.storage.GetParticipant(ctx, prompt.AuthorID)
		if err != nil {
			return err
		}
		if responder.Category == author.Category {
			return model.ErrSameCategory
		}

		if err := c.storage.UpsertResponse(ctx, &model.Response{
			SessionID:   sessionID,
			PromptID:    promptID,
			ResponderID: responderID,
			Text:        text,
			UpdatedAt:   c.clock.Now(),
		}); err != nil {
			return err
		}

		complete, err = c.responsesComplete(ctx, sessionID)
		return err
	}()
	if err != nil {
		return err
	}

	if complete {
		// A concurrent deadline may have advanced the session already
		if err := c.sessions.BeginDeciding(ctx, sessionID); err != nil && !errors.Is(err, model.ErrPhaseConflict) {
			return err
		}
		return nil
	}

	c.sessions.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// RecordFinalChoice stores a participant's end-of-game pick, or the
// explicit no-choice sentinel (empty target). Accepted only during
// deciding; the target must be an opposite-category session member.
// When every member has a recorded choice the session finishes.
func (c *Controller) RecordFinalChoice(
	ctx context.Context,
	sessionID model.SessionID,
	voterID model.ParticipantID,
	targetID model.ParticipantID,
) error {
	complete := false
	err := func() error {
		unlock := c.sessions.Lock(sessionID)
		defer unlock()

		sess, err := c.storage.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Phase != model.PhaseDeciding {
			return model.ErrWrongPhase
		}

		if err := c.requireMember(ctx, sessionID, voterID); err != nil {
			return err
		}

		if targetID != "" {
			voter, err := c.storage.GetParticipant(ctx, voterID)
			if err != nil {
				return err
			}
			if err := c.requireMember(ctx, sessionID, targetID); err != nil {
				return err
			}
			target, err := c.storage.GetParticipant(ctx, targetID)
			if err != nil {
				return err
			}
			if target.Category == voter.Category {
				return model.ErrSameCategory
			}
		}

		if err := c.storage.UpsertFinalChoice(ctx, &model.FinalChoice{
			SessionID: sessionID,
			VoterID:   voterID,
			TargetID:  targetID,
			UpdatedAt: c.clock.Now(),
		}); err != nil {
			return err
		}

		choices, err := c.storage.GetFinalChoices(ctx, sessionID)
		if err != nil {
			return err
		}
		participations, err := c.storage.GetParticipations(ctx, sessionID)
		if err != nil {
			return err
		}
		complete = len(choices) >= len(participations)
		return nil
	}()
	if err != nil {
		return err
	}

	if complete {
		if err := c.sessions.Finish(ctx, sessionID); err != nil && !errors.Is(err, model.ErrPhaseConflict) {
			return err
		}
		return nil
	}

	c.sessions.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// responsesComplete reports whether every prompt has at least as many
// answers as there are members of the author's opposite category. The
// whole collecting phase completes at once; there is no per-prompt
// progression.
func (c *Controller) responsesComplete(ctx context.Context, sessionID model.SessionID) (bool, error) {
	prompts, err := c.storage.GetPrompts(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if len(prompts) == 0 {
		return false, nil
	}

	counts, err := session.CountCategories(ctx, c.storage, sessionID)
	if err != nil {
		return false, err
	}

	responses, err := c.storage.GetResponses(ctx, sessionID)
	if err != nil {
		return false, err
	}
	perPrompt := make(map[model.PromptID]int, len(prompts))
	for _, r := range responses {
		perPrompt[r.PromptID]++
	}

	for _, p := range prompts {
		author, err := c.storage.GetParticipant(ctx, p.AuthorID)
		if err != nil {
			return false, err
		}
		needed := counts.Of(author.Category.Opposite())
		if perPrompt[p.ID] < needed {
			return false, nil
		}
	}
	return true, nil
}

func (c *Controller) requireMember(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) error {
	participations, err := c.storage.GetParticipations(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, p := range participations {
		if p.ParticipantID == participantID {
			return nil
		}
	}
	return model.ErrNotInSession
}
