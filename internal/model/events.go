package model

import "time"

// EventType identifies the type of push event
type EventType string

const (
	// EventSnapshotChanged carries a fresh snapshot after every phase
	// transition and every accepted submission
	EventSnapshotChanged EventType = "snapshot-changed"

	// EventCountdownTick fires once per second while a deadline is armed
	EventCountdownTick EventType = "countdown-tick"

	// EventSessionClosed fires when a lobby times out below minimum capacity
	EventSessionClosed EventType = "session-closed"
)

// Event is the base structure for all push events fanned out to
// the connected clients of a session
type Event struct {
	Type      EventType
	SessionID SessionID
	Timestamp time.Time
	Payload   any
}

// SnapshotChangedPayload contains data for snapshot-changed events
type SnapshotChangedPayload struct {
	Snapshot Snapshot
}

// CountdownTickPayload contains data for countdown-tick events
type CountdownTickPayload struct {
	Phase            Phase
	SecondsRemaining int
}

// SessionClosedPayload contains data for session-closed events
type SessionClosedPayload struct {
	Reason string
}
