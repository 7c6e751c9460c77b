// Package session implements the phase state machine that drives a
// session from lobby to results. All state-mutating entry points
// serialize on a per-session mutex, and every transition names its
// expected source phase so racing triggers resolve to exactly one
// winner.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/clock"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matching"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/view"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/timer"
)

// ClosedBelowMinimum is the reason reported when a lobby times out
// without reaching minimum capacity
const ClosedBelowMinimum = "not-enough-players"

// Broadcaster fans session events out to connected clients
type Broadcaster interface {
	BroadcastSnapshot(snapshot *model.Snapshot)
	BroadcastCountdownTick(sessionID model.SessionID, phase model.Phase, secondsRemaining int)
	BroadcastSessionClosed(sessionID model.SessionID, reason string)
}

// Controller owns session phase transitions and their deadlines
type Controller struct {
	storage storage.Store
	matcher *matching.Service
	view    *view.Builder
	events  Broadcaster
	clock   clock.Clock
	cfg     config.Config
	logger  *slog.Logger

	timers *timer.Scheduler
	locks  keyedMutex
}

// NewController creates a session controller and its deadline scheduler
func NewController(
	storage storage.Store,
	matcher *matching.Service,
	viewBuilder *view.Builder,
	events Broadcaster,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		storage: storage,
		matcher: matcher,
		view:    viewBuilder,
		events:  events,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "session")),
	}
	c.timers = timer.NewScheduler(logger, c.handleExpire, c.handleTick)
	return c
}

// keyedMutex hands out one mutex per session id
type keyedMutex struct {
	mu    sync.Mutex
	locks map[model.SessionID]*sync.Mutex
}

func (k *keyedMutex) get(id model.SessionID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[model.SessionID]*sync.Mutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	return m
}

// Lock acquires the session's critical section and returns the release
// function. Matchmaking and submission handling share this lock with
// phase transitions.
func (c *Controller) Lock(sessionID model.SessionID) (unlock func()) {
	m := c.locks.get(sessionID)
	m.Lock()
	return m.Unlock
}

// ArmLobbyDeadline starts the lobby countdown for a newly created session
func (c *Controller) ArmLobbyDeadline(sessionID model.SessionID) {
	c.timers.Arm(sessionID, model.PhaseLobby, c.cfg.LobbyDeadline())
}

// Start moves lobby -> roster: prompt ordinals are renumbered densely,
// the item count freezes, and the lobby deadline is cancelled. The
// roster pause has no deadline; it waits for an acknowledgment.
func (c *Controller) Start(ctx context.Context, sessionID model.SessionID) error {
	err := c.transition(ctx, sessionID, model.PhaseLobby, model.PhaseRoster,
		func(ctx context.Context, sess *model.Session) error {
			prompts, err := c.storage.GetPrompts(ctx, sessionID)
			if err != nil {
				return err
			}
			for i, p := range prompts {
				if p.Ordinal != i+1 {
					p.Ordinal = i + 1
					if err := c.storage.SavePrompt(ctx, p); err != nil {
						return err
					}
				}
			}
			now := c.clock.Now()
			sess.TotalItems = len(prompts)
			sess.StartedAt = &now
			return nil
		})
	if err != nil {
		return err
	}

	c.timers.Cancel(sessionID)
	c.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// AcknowledgeRoster moves roster -> collecting and arms the response
// deadline. Any session member may acknowledge.
func (c *Controller) AcknowledgeRoster(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) error {
	if err := c.requireMember(ctx, sessionID, participantID); err != nil {
		return err
	}

	err := c.transition(ctx, sessionID, model.PhaseRoster, model.PhaseCollecting, nil)
	if err != nil {
		return err
	}

	c.timers.Arm(sessionID, model.PhaseCollecting, c.cfg.CollectingDeadline())
	c.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// BeginDeciding moves collecting -> deciding and arms the decision
// deadline. Triggered by response completion or the collecting deadline.
func (c *Controller) BeginDeciding(ctx context.Context, sessionID model.SessionID) error {
	err := c.transition(ctx, sessionID, model.PhaseCollecting, model.PhaseDeciding, nil)
	if err != nil {
		return err
	}

	c.timers.Arm(sessionID, model.PhaseDeciding, c.cfg.DecidingDeadline())
	c.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// Finish moves deciding -> results: members without a recorded choice
// are defaulted to no-choice, matches are computed and persisted, and
// the session is stamped ended.
func (c *Controller) Finish(ctx context.Context, sessionID model.SessionID) error {
	err := c.transition(ctx, sessionID, model.PhaseDeciding, model.PhaseResults,
		func(ctx context.Context, sess *model.Session) error {
			now := c.clock.Now()

			participations, err := c.storage.GetParticipations(ctx, sessionID)
			if err != nil {
				return err
			}
			choices, err := c.storage.GetFinalChoices(ctx, sessionID)
			if err != nil {
				return err
			}

			voted := make(map[model.ParticipantID]bool, len(choices))
			for _, ch := range choices {
				voted[ch.VoterID] = true
			}
			for _, part := range participations {
				if voted[part.ParticipantID] {
					continue
				}
				defaulted := &model.FinalChoice{
					SessionID: sessionID,
					VoterID:   part.ParticipantID,
					UpdatedAt: now,
				}
				if err := c.storage.UpsertFinalChoice(ctx, defaulted); err != nil {
					return err
				}
				choices = append(choices, defaulted)
			}

			matches := c.matcher.Compute(sessionID, choices, now)
			if err := c.storage.SaveMatches(ctx, sessionID, matches); err != nil {
				return err
			}

			sess.EndedAt = &now
			c.logger.Info("matches computed",
				slog.String("session_id", string(sessionID)),
				slog.Int("matches", len(matches)))
			return nil
		})
	if err != nil {
		return err
	}

	c.timers.Cancel(sessionID)
	c.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// CloseLobby moves lobby -> closed when the lobby deadline fires below
// minimum capacity
func (c *Controller) CloseLobby(ctx context.Context, sessionID model.SessionID) error {
	err := c.transition(ctx, sessionID, model.PhaseLobby, model.PhaseClosed,
		func(ctx context.Context, sess *model.Session) error {
			now := c.clock.Now()
			sess.EndedAt = &now
			return nil
		})
	if err != nil {
		return err
	}

	c.timers.Cancel(sessionID)
	c.events.BroadcastSessionClosed(sessionID, ClosedBelowMinimum)
	c.BroadcastSnapshot(ctx, sessionID)
	return nil
}

// Snapshot builds the client view with the live countdown injected
func (c *Controller) Snapshot(ctx context.Context, sessionID model.SessionID) (*model.Snapshot, error) {
	snapshot, err := c.view.BuildSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if remaining, armed := c.timers.Remaining(sessionID); armed {
		snapshot.SecondsRemaining = &remaining
	}
	return snapshot, nil
}

// Matches returns the computed pairs once the session has results
func (c *Controller) Matches(ctx context.Context, sessionID model.SessionID) ([]model.Match, error) {
	sess, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Phase != model.PhaseResults {
		return nil, model.ErrWrongPhase
	}
	return c.storage.GetMatches(ctx, sessionID)
}

// BroadcastSnapshot pushes the current snapshot to the session's clients
func (c *Controller) BroadcastSnapshot(ctx context.Context, sessionID model.SessionID) {
	snapshot, err := c.Snapshot(ctx, sessionID)
	if err != nil {
		c.logger.Error("snapshot broadcast failed",
			slog.String("session_id", string(sessionID)),
			slog.Any("error", err))
		return
	}
	c.events.BroadcastSnapshot(snapshot)
}

// RecoverTimers re-derives deadlines for non-terminal sessions after a
// restart. Deadlines that elapsed while the process was down fire
// promptly.
func (c *Controller) RecoverTimers(ctx context.Context) error {
	sessions, err := c.storage.ListActiveSessions(ctx)
	if err != nil {
		return err
	}

	recovered := 0
	for _, sess := range sessions {
		var deadline model.Phase
		var total time.Duration
		switch sess.Phase {
		case model.PhaseLobby:
			deadline, total = model.PhaseLobby, c.cfg.LobbyDeadline()
		case model.PhaseCollecting:
			deadline, total = model.PhaseCollecting, c.cfg.CollectingDeadline()
		case model.PhaseDeciding:
			deadline, total = model.PhaseDeciding, c.cfg.DecidingDeadline()
		default:
			// The roster pause has no deadline
			continue
		}

		remaining := sess.PhaseChangedAt.Add(total).Sub(c.clock.Now())
		c.timers.Arm(sess.ID, deadline, remaining)
		recovered++
	}

	if recovered > 0 {
		c.logger.Info("session deadlines recovered", slog.Int("count", recovered))
	}
	return nil
}

// Shutdown cancels all armed deadlines
func (c *Controller) Shutdown() {
	c.timers.Shutdown()
}

// transition applies from -> to under the session lock. A source-phase
// mismatch returns ErrPhaseConflict, which racing callers treat as
// success.
func (c *Controller) transition(
	ctx context.Context,
	sessionID model.SessionID,
	from, to model.Phase,
	apply func(ctx context.Context, sess *model.Session) error,
) error {
	unlock := c.Lock(sessionID)
	defer unlock()

	sess, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Phase != from {
		return model.ErrPhaseConflict
	}

	now := c.clock.Now()
	sess.Phase = to
	sess.PhaseChangedAt = now
	sess.UpdatedAt = now

	if apply != nil {
		if err := apply(ctx, sess); err != nil {
			return err
		}
	}

	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return err
	}

	c.logger.Info("phase transition",
		slog.String("session_id", string(sessionID)),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return nil
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

// handleExpire runs the timeout transition for the phase whose deadline
// fired. A phase conflict means another trigger won the race; that is a
// success for the timer.
func (c *Controller) handleExpire(sessionID model.SessionID, phase model.Phase) error {
	ctx := context.Background()

	var err error
	switch phase {
	case model.PhaseLobby:
		var counts model.CategoryCounts
		counts, err = CountCategories(ctx, c.storage, sessionID)
		if err != nil {
			break
		}
		if counts.BothAtLeast(c.cfg.MinPerCategory) {
			err = c.Start(ctx, sessionID)
		} else {
			err = c.CloseLobby(ctx, sessionID)
		}
	case model.PhaseCollecting:
		err = c.BeginDeciding(ctx, sessionID)
	case model.PhaseDeciding:
		err = c.Finish(ctx, sessionID)
	}

	if errors.Is(err, model.ErrPhaseConflict) {
		return nil
	}
	return err
}

func (c *Controller) handleTick(sessionID model.SessionID, phase model.Phase, secondsRemaining int) {
	c.events.BroadcastCountdownTick(sessionID, phase, secondsRemaining)
}

// CountCategories tallies a session's members per category
func CountCategories(ctx context.Context, store storage.Store, sessionID model.SessionID) (model.CategoryCounts, error) {
	var counts model.CategoryCounts

	participations, err := store.GetParticipations(ctx, sessionID)
	if err != nil {
		return counts, err
	}
	for _, part := range participations {
		p, err := store.GetParticipant(ctx, part.ParticipantID)
		if err != nil {
			return counts, err
		}
		switch p.Category {
		case model.CategoryMale:
			counts.Male++
		case model.CategoryFemale:
			counts.Female++
		}
	}
	return counts, nil
}
