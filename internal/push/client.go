package push

import (
	"net/http"
	"time"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected event-stream client
type Client struct {
	hub           *Hub
	participantID model.ParticipantID
	send          chan []byte
	connectedAt   time.Time
}

// NewClient creates a new client for a hub
func NewClient(hub *Hub, participantID model.ParticipantID) *Client {
	return &Client{
		hub:           hub,
		participantID: participantID,
		send:          make(chan []byte, sendBufferSize),
		connectedAt:   time.Now(),
	}
}

// ServeSSE handles the SSE connection for a client, blocking until the
// client disconnects or the hub shuts down
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, participantID model.ParticipantID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(hub, participantID)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
