package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameExists  = errors.New("username already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Save errors
	ErrNoSaveFound = errors.New("no saved game found")
	ErrCorruptSave = errors.New("saved game failed to deserialize")

	// Stats errors
	ErrStatsNotFound = errors.New("pvp stats not found")

	// Challenge errors
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeConflict = errors.New("challenge is not in the required status")

	// Game state errors
	ErrUnknownCharacter  = errors.New("unknown character")
	ErrMissingStateField = errors.New("game state is missing field")
	ErrInvalidStateField = errors.New("game state field has wrong type")
)
