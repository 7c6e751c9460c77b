// Package timer runs the per-session deadline scheduler. At most one
// deadline is armed per session; arming replaces any prior deadline and
// its countdown tick.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// ExpireFunc is invoked once when a deadline fires. A non-nil error
// means the transition could not run; the scheduler retries on the
// next tick.
type ExpireFunc func(sessionID model.SessionID, phase model.Phase) error

// TickFunc is invoked once per second while a deadline is armed,
// including immediately on arming. Cosmetic only.
type TickFunc func(sessionID model.SessionID, phase model.Phase, secondsRemaining int)

// Scheduler owns all armed session deadlines
type Scheduler struct {
	mu      sync.Mutex
	entries map[model.SessionID]*entry
	logger  *slog.Logger

	onExpire ExpireFunc
	onTick   TickFunc

	// tickEvery is the countdown granularity; overridden in tests
	tickEvery time.Duration
}

type entry struct {
	phase    model.Phase
	deadline time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func (e *entry) cancel() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// NewScheduler creates a scheduler delivering deadline events to the
// given callbacks
func NewScheduler(logger *slog.Logger, onExpire ExpireFunc, onTick TickFunc) *Scheduler {
	return &Scheduler{
		entries:   make(map[model.SessionID]*entry),
		logger:    logger.With(slog.String("component", "timer")),
		onExpire:  onExpire,
		onTick:    onTick,
		tickEvery: time.Second,
	}
}

// Arm schedules a deadline for the session, replacing any armed one.
// The phase tags which timeout transition fires on expiry.
func (s *Scheduler) Arm(sessionID model.SessionID, phase model.Phase, d time.Duration) {
	if d < 0 {
		d = 0
	}

	e := &entry{
		phase:    phase,
		deadline: time.Now().Add(d),
		stop:     make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.entries[sessionID]; ok {
		prev.cancel()
	}
	s.entries[sessionID] = e
	s.mu.Unlock()

	s.logger.Debug("deadline armed",
		slog.String("session_id", string(sessionID)),
		slog.String("phase", string(phase)),
		slog.Duration("in", d))

	go s.run(sessionID, e)
}

// Cancel drops the session's armed deadline and its tick, if any
func (s *Scheduler) Cancel(sessionID model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sessionID]; ok {
		e.cancel()
		delete(s.entries, sessionID)
	}
}

// Remaining reports the whole seconds left on the session's armed
// deadline. ok is false when nothing is armed.
func (s *Scheduler) Remaining(sessionID model.SessionID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return 0, false
	}
	return secondsUntil(e.deadline), true
}

// Shutdown cancels every armed deadline
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.cancel()
		delete(s.entries, id)
	}
}

func (s *Scheduler) run(sessionID model.SessionID, e *entry) {
	s.tick(sessionID, e)

	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	expire := time.NewTimer(time.Until(e.deadline))
	defer expire.Stop()

	fired := false
	for {
		select {
		case <-e.stop:
			return

		case <-ticker.C:
			if fired {
				// Expiry failed earlier; retry the transition
				if s.fire(sessionID, e) {
					return
				}
				continue
			}
			s.tick(sessionID, e)

		case <-expire.C:
			fired = true
			if s.fire(sessionID, e) {
				return
			}
		}
	}
}

// fire runs the expiry callback; returns true once the deadline is done
func (s *Scheduler) fire(sessionID model.SessionID, e *entry) bool {
	if err := s.onExpire(sessionID, e.phase); err != nil {
		s.logger.Error("deadline transition failed, will retry",
			slog.String("session_id", string(sessionID)),
			slog.String("phase", string(e.phase)),
			slog.Any("error", err))
		return false
	}

	s.mu.Lock()
	if cur, ok := s.entries[sessionID]; ok && cur == e {
		delete(s.entries, sessionID)
	}
	s.mu.Unlock()
	return true
}

func (s *Scheduler) tick(sessionID model.SessionID, e *entry) {
	if s.onTick == nil {
		return
	}
	remaining := secondsUntil(e.deadline)
	if remaining < 0 {
		remaining = 0
	}
	s.onTick(sessionID, e.phase, remaining)
}

func secondsUntil(deadline time.Time) int {
	remaining := int(time.Until(deadline).Round(time.Second) / time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}
