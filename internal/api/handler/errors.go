package handler

import (
	"net/http"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeUnauthorized        = apierr.CodeUnauthorized
	CodePromptTooShort      = apierr.CodePromptTooShort
	CodePromptRejected      = apierr.CodePromptRejected
	CodeResponseEmpty       = apierr.CodeResponseEmpty
	CodeResponseRejected    = apierr.CodeResponseRejected
	CodeReasonTooShort      = apierr.CodeReasonTooShort
	CodeInvalidCategory     = apierr.CodeInvalidCategory
	CodeCategoryRequired    = apierr.CodeCategoryRequired
	CodeCategoryLocked      = apierr.CodeCategoryLocked
	CodeAlreadyInSession    = apierr.CodeAlreadyInSession
	CodeNotInSession        = apierr.CodeNotInSession
	CodeWrongPhase          = apierr.CodeWrongPhase
	CodeSameCategory        = apierr.CodeSameCategory
	CodeParticipantNotFound = apierr.CodeParticipantNotFound
	CodeSessionNotFound     = apierr.CodeSessionNotFound
	CodePromptNotFound      = apierr.CodePromptNotFound
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
