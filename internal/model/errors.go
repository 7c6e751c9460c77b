package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrPromptTooShort   = errors.New("prompt text is too short")
	ErrPromptRejected   = errors.New("prompt contains blocked content")
	ErrResponseEmpty    = errors.New("response text is empty")
	ErrResponseRejected = errors.New("response contains blocked content")
	ErrReasonTooShort   = errors.New("report reason is too short")
	ErrInvalidCategory  = errors.New("invalid category value")

	// Policy errors
	ErrCategoryRequired = errors.New("participant must declare a category first")
	ErrCategoryLocked   = errors.New("category cannot change during an active session")
	ErrAlreadyInSession = errors.New("participant is already in an active session")
	ErrNotInSession     = errors.New("participant is not in this session")
	ErrWrongPhase       = errors.New("session is not in a phase that accepts this operation")
	ErrSameCategory     = errors.New("target must be of the opposite category")

	// Not-found errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrPromptNotFound      = errors.New("prompt not found")

	// ErrPhaseConflict means a transition's expected source phase no longer
	// matches. Racing triggers (aggregator vs. timer) treat it as a no-op,
	// never as a failure.
	ErrPhaseConflict = errors.New("session phase changed concurrently")
)
