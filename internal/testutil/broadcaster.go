package testutil

import (
	"sync"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// TickRecord is one recorded countdown tick
type TickRecord struct {
	SessionID        model.SessionID
	Phase            model.Phase
	SecondsRemaining int
}

// CloseRecord is one recorded session-closed event
type CloseRecord struct {
	SessionID model.SessionID
	Reason    string
}

// RecordingBroadcaster captures broadcast events for assertions
type RecordingBroadcaster struct {
	mu        sync.Mutex
	Snapshots []*model.Snapshot
	Ticks     []TickRecord
	Closes    []CloseRecord
}

// NewRecordingBroadcaster creates an empty recording broadcaster
func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

// BroadcastSnapshot records a snapshot broadcast
func (b *RecordingBroadcaster) BroadcastSnapshot(snapshot *model.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Snapshots = append(b.Snapshots, snapshot)
}

// BroadcastCountdownTick records a countdown tick
func (b *RecordingBroadcaster) BroadcastCountdownTick(sessionID model.SessionID, phase model.Phase, secondsRemaining int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Ticks = append(b.Ticks, TickRecord{sessionID, phase, secondsRemaining})
}

// BroadcastSessionClosed records a session-closed event
func (b *RecordingBroadcaster) BroadcastSessionClosed(sessionID model.SessionID, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closes = append(b.Closes, CloseRecord{sessionID, reason})
}

// LastSnapshot returns the most recently broadcast snapshot, or nil
func (b *RecordingBroadcaster) LastSnapshot() *model.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Snapshots) == 0 {
		return nil
	}
	return b.Snapshots[len(b.Snapshots)-1]
}

// SnapshotCount returns how many snapshots were broadcast
func (b *RecordingBroadcaster) SnapshotCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Snapshots)
}

// ClosedReasons returns the reasons of all recorded session-closed events
func (b *RecordingBroadcaster) ClosedReasons() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	reasons := make([]string, 0, len(b.Closes))
	for _, c := range b.Closes {
		reasons = append(reasons, c.Reason)
	}
	return reasons
}
