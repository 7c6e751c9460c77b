package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/middleware"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/request"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/response"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/submission"
)

// SubmissionHandler handles answer and final-choice endpoints
type SubmissionHandler struct {
	submissions *submission.Controller
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions *submission.Controller) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Respond handles POST /api/v1/sessions/{id}/responses
func (h *SubmissionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	var req request.ResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.PromptID == "" {
		WriteError(w, NewInvalidRequestError("prompt_id is required"))
		return
	}

	err := h.submissions.RecordResponse(r.Context(), sessionID, p.ID, model.PromptID(req.PromptID), req.Text)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK{OK: true})
}

// Choose handles POST /api/v1/sessions/{id}/choices
func (h *SubmissionHandler) Choose(w http.ResponseWriter, r *http.Request) {
	p := middleware.MustGetParticipant(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["id"])

	var req request.ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	err := h.submissions.RecordFinalChoice(r.Context(), sessionID, p.ID, model.ParticipantID(req.TargetID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK{OK: true})
}
