package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/middleware"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/request"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/response"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/registry"
)

// ParticipantHandler handles participant-related endpoints
type ParticipantHandler struct {
	registry *registry.Controller
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(registry *registry.Controller) *ParticipantHandler {
	return &ParticipantHandler{registry: registry}
}

// Resolve handles POST /api/v1/participants/resolve
// The front door calls this on first contact; no identity header needed.
func (h *ParticipantHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req request.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.ExternalID == "" {
		WriteError(w, NewInvalidRequestError("external_id is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	p, err := h.registry.Resolve(r.Context(), req.ExternalID, model.Profile{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewParticipant(p))
}

// Me handles GET /api/v1/participants/me
func (h *ParticipantHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())
	response.JSON(w, http.StatusOK, response.NewParticipant(p))
}

// SetCategory handles POST /api/v1/participants/me/category
func (h *ParticipantHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())

	var req request.SetCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	updated, err := h.registry.SetCategory(r.Context(), p.ID, model.Category(req.Category))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewParticipant(updated))
}
