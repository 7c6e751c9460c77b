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

// ReportHandler handles abuse report endpoints
type ReportHandler struct {
	registry *registry.Controller
}

// NewReportHandler creates a new report handler
func NewReportHandler(registry *registry.Controller) *ReportHandler {
	return &ReportHandler{registry: registry}
}

// Create handles POST /api/v1/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())

	var req request.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.ReportedID == "" {
		WriteError(w, NewInvalidRequestError("reported_id is required"))
		return
	}

	err := h.registry.FileReport(r.Context(), p.ID, model.ParticipantID(req.ReportedID), req.Reason, req.ContentRef)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.OK{OK: true})
}
