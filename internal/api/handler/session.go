package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/middleware"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/request"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/response"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/push"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matchmaker"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
)

// SessionHandler handles session-related endpoints
type SessionHandler struct {
	matchmaker *matchmaker.Controller
	sessions   *session.Controller
	hubManager *push.HubManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(matchmaker *matchmaker.Controller, sessions *session.Controller, hubManager *push.HubManager) *SessionHandler {
	return &SessionHandler{
		matchmaker: matchmaker,
		sessions:   sessions,
		hubManager: hubManager,
	}
}

// Join handles POST /api/v1/sessions/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())

	var req request.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	sessionID, snapshot, err := h.matchmaker.Join(r.Context(), p.ID, req.Prompt)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinResult{
		SessionID: string(sessionID),
		Snapshot:  response.NewSnapshot(snapshot),
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["id"])

	snapshot, err := h.sessions.Snapshot(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewSnapshot(snapshot))
}

// RosterAck handles POST /api/v1/sessions/{id}/roster-ack
func (h *SessionHandler) RosterAck(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	if err := h.sessions.AcknowledgeRoster(r.Context(), sessionID, p.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK{OK: true})
}

// Matches handles GET /api/v1/sessions/{id}/matches
func (h *SessionHandler) Matches(w http.ResponseWriter, r *http.Request) {
	sessionID := model.SessionID(mux.Vars(r)["id"])

	matches, err := h.sessions.Matches(r.Context(), sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewMatchList(sessionID, matches))
}

// Events handles GET /api/v1/sessions/{id}/events (SSE)
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	// Reject streams for sessions that do not exist
	if _, err := h.sessions.Snapshot(r.Context(), sessionID); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sessionID)
	push.ServeSSE(w, r, hub, p.ID)
}
