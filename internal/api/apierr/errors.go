// Package apierr converts service errors into the uniform failure body
// the game client consumes. Domain failures are signaled only in the
// body ({success:false, message}) and keep HTTP 200; only unexpected
// faults surface as HTTP 500.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/auth"
	"github.com/dmarquez/idlempire/internal/services/challenge"
)

// FailureResponse is the uniform failure body
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// domainError carries a client-facing message for a known failure
type domainError struct {
	message string
}

// Error implements error interface
func (e *domainError) Error() string {
	return e.message
}

// WriteError writes the failure body for an error
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusOK
	message, known := messageFor(err)
	if !known {
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(FailureResponse{Success: false, Message: message})
}

// messageFor maps known errors to their client-facing message
func messageFor(err error) (string, bool) {
	var de *domainError
	if errors.As(err, &de) {
		return de.message, true
	}

	switch {
	// Model errors
	case errors.Is(err, model.ErrUsernameExists):
		return "Username already exists", true
	case errors.Is(err, model.ErrAccountNotFound):
		return "User not found", true
	case errors.Is(err, model.ErrNoSaveFound):
		return "No saved game found", true
	case errors.Is(err, model.ErrCorruptSave):
		return "Error loading game", true
	case errors.Is(err, model.ErrStatsNotFound):
		return "Stats not found", true
	case errors.Is(err, model.ErrChallengeNotFound):
		return "Challenge not found", true
	case errors.Is(err, model.ErrUnknownCharacter):
		return "Unknown character", true
	case errors.Is(err, model.ErrMissingStateField),
		errors.Is(err, model.ErrInvalidStateField):
		return "Invalid game state", true

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password", true
	case errors.Is(err, auth.ErrInvalidSession):
		return "Invalid or expired session", true

	// Challenge errors
	case errors.Is(err, challenge.ErrOpponentNotFound):
		return "Opponent not found", true
	case errors.Is(err, challenge.ErrPlayerNotFound):
		return "Player not found", true
	case errors.Is(err, challenge.ErrChallengePending):
		return "Challenge already pending", true
	case errors.Is(err, challenge.ErrChallengeNotPending):
		return "Challenge is not pending", true
	case errors.Is(err, challenge.ErrChallengeNotAccepted):
		return "Challenge not found or not accepted", true
	case errors.Is(err, challenge.ErrNotParticipant):
		return "You are not part of this challenge", true
	case errors.Is(err, challenge.ErrOpponentHasNoSave):
		return "Opponent has no saved game", true
	case errors.Is(err, challenge.ErrNoBattleResult):
		return "Battle result not found", true

	default:
		return "", false
	}
}

// NewValidationError creates a failure for a request rejected before any
// store access
func NewValidationError(message string) error {
	return &domainError{message: message}
}
