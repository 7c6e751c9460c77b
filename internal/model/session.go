package model

import "time"

// SessionID uniquely identifies a session
type SessionID string

// Phase represents the current phase of a session
type Phase string

const (
	PhaseLobby      Phase = "lobby"      // Accepting joins
	PhaseRoster     Phase = "roster"     // Roster reveal pause
	PhaseCollecting Phase = "collecting" // Collecting responses to all prompts
	PhaseDeciding   Phase = "deciding"   // Collecting final choices
	PhaseResults    Phase = "results"    // Matches computed, terminal
	PhaseClosed     Phase = "closed"     // Lobby timed out below minimum, terminal
)

// phaseOrder assigns each phase a monotonic index. Closed sits alongside
// results so that both terminal phases compare after every live phase.
var phaseOrder = map[Phase]int{
	PhaseLobby:      0,
	PhaseRoster:     1,
	PhaseCollecting: 2,
	PhaseDeciding:   3,
	PhaseResults:    4,
	PhaseClosed:     4,
}

// Index returns the phase's position in the forward ordering
func (p Phase) Index() int {
	return phaseOrder[p]
}

// Terminal reports whether the phase is an end state
func (p Phase) Terminal() bool {
	return p == PhaseResults || p == PhaseClosed
}

// Session represents a single playgroup
type Session struct {
	ID    SessionID
	Phase Phase

	// TotalItems is the number of prompts collected during matchmaking,
	// frozen when the lobby closes
	TotalItems int

	CreatedAt      time.Time
	StartedAt      *time.Time
	EndedAt        *time.Time
	PhaseChangedAt time.Time // used to re-derive deadlines after a restart
	UpdatedAt      time.Time
}

// AcceptsJoins reports whether new participants may attach
func (s *Session) AcceptsJoins() bool {
	return s.Phase == PhaseLobby
}

// CategoryCounts tallies participants per category
type CategoryCounts struct {
	Male   int
	Female int
}

// Of returns the count for the given category
func (c CategoryCounts) Of(cat Category) int {
	if cat == CategoryMale {
		return c.Male
	}
	return c.Female
}

// Total returns the total participant count
func (c CategoryCounts) Total() int {
	return c.Male + c.Female
}

// BothAtLeast reports whether both categories have reached n
func (c CategoryCounts) BothAtLeast(n int) bool {
	return c.Male >= n && c.Female >= n
}
