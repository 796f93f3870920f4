package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Project lifecycle errors
	ErrProjectActive   = errors.New("a project is already active")
	ErrNoActiveProject = errors.New("no active project")
	ErrNotInReview     = errors.New("project is not in review")
	ErrEmptyPrompt     = errors.New("prompt must not be empty")

	// Wallet errors
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInsufficientFunds = errors.New("insufficient available balance")

	// Backend errors
	ErrBackendUnavailable = errors.New("backend API is not available")
	ErrMalformedResponse  = errors.New("invalid response format from backend")

	// Chat errors
	ErrEmptyMessage         = errors.New("message must not be empty")
	ErrConversationNotReady = errors.New("conversation not ready for execution")

	// History errors
	ErrHistoryNotFound = errors.New("history entry not found")
)
