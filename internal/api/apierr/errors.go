package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodePromptTooShort      = "PROMPT_TOO_SHORT"
	CodePromptRejected      = "PROMPT_REJECTED"
	CodeResponseEmpty       = "RESPONSE_EMPTY"
	CodeResponseRejected    = "RESPONSE_REJECTED"
	CodeReasonTooShort      = "REASON_TOO_SHORT"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeCategoryRequired    = "CATEGORY_REQUIRED"
	CodeCategoryLocked      = "CATEGORY_LOCKED"
	CodeAlreadyInSession    = "ALREADY_IN_SESSION"
	CodeNotInSession        = "NOT_IN_SESSION"
	CodeWrongPhase          = "WRONG_PHASE"
	CodeSameCategory        = "SAME_CATEGORY"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodePromptNotFound      = "PROMPT_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPromptTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodePromptTooShort, "Prompt text is too short"}}
	case errors.Is(err, model.ErrPromptRejected):
		return &httpError{http.StatusBadRequest, APIError{CodePromptRejected, "Prompt contains blocked content"}}
	case errors.Is(err, model.ErrResponseEmpty):
		return &httpError{http.StatusBadRequest, APIError{CodeResponseEmpty, "Answer text is empty"}}
	case errors.Is(err, model.ErrResponseRejected):
		return &httpError{http.StatusBadRequest, APIError{CodeResponseRejected, "Answer contains blocked content"}}
	case errors.Is(err, model.ErrReasonTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeReasonTooShort, "Report reason is too short"}}
	case errors.Is(err, model.ErrInvalidCategory):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCategory, "Category must be male or female"}}
	case errors.Is(err, model.ErrSameCategory):
		return &httpError{http.StatusBadRequest, APIError{CodeSameCategory, "Target must be of the opposite category"}}

	case errors.Is(err, model.ErrCategoryRequired):
		return &httpError{http.StatusConflict, APIError{CodeCategoryRequired, "Declare a category before joining"}}
	case errors.Is(err, model.ErrCategoryLocked):
		return &httpError{http.StatusConflict, APIError{CodeCategoryLocked, "Category cannot change during an active session"}}
	case errors.Is(err, model.ErrAlreadyInSession):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInSession, "Already in an active session"}}
	case errors.Is(err, model.ErrWrongPhase):
		return &httpError{http.StatusConflict, APIError{CodeWrongPhase, "Session does not accept this operation right now"}}
	case errors.Is(err, model.ErrPhaseConflict):
		return &httpError{http.StatusConflict, APIError{CodeWrongPhase, "Session does not accept this operation right now"}}
	case errors.Is(err, model.ErrNotInSession):
		return &httpError{http.StatusForbidden, APIError{CodeNotInSession, "Not a member of this session"}}

	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPromptNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePromptNotFound, "Prompt not found"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Participant identity required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
