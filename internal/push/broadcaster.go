package push

import (
	"encoding/json"
	"log/slog"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/response"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// Broadcaster renders session events as JSON and fans them out to
// the session's hub. Sessions with no connected clients are skipped.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "push-broadcaster")),
	}
}

// BroadcastSnapshot sends a snapshot-changed event to all session clients
func (b *Broadcaster) BroadcastSnapshot(snapshot *model.Snapshot) {
	hub := b.hubManager.GetHub(snapshot.SessionID)
	if hub == nil {
		return
	}

	b.send(hub, snapshot.SessionID, model.EventSnapshotChanged, response.NewSnapshot(snapshot))
}

// BroadcastCountdownTick sends a countdown-tick event to all session clients
func (b *Broadcaster) BroadcastCountdownTick(sessionID model.SessionID, phase model.Phase, secondsRemaining int) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}

	b.send(hub, sessionID, model.EventCountdownTick, response.CountdownTick{
		Phase:            string(phase),
		SecondsRemaining: secondsRemaining,
	})
}

// BroadcastSessionClosed sends a session-closed event to all session clients
func (b *Broadcaster) BroadcastSessionClosed(sessionID model.SessionID, reason string) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}

	b.send(hub, sessionID, model.EventSessionClosed, response.SessionClosed{Reason: reason})
}

func (b *Broadcaster) send(hub *Hub, sessionID model.SessionID, eventType model.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("push failed to encode event",
			slog.String("session_id", string(sessionID)),
			slog.String("event", string(eventType)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(eventType), string(data))
}
