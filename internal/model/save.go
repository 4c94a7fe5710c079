package model

import (
	"fmt"
	"time"
)

// SaveID uniquely identifies a saved game
type SaveID string

// GameState is the client-owned game document. The server round-trips it
// opaquely; only battle resolution reads (and writes back) known fields,
// through the typed accessors below.
type GameState map[string]any

// Save is the single persisted snapshot of an account's game progress.
// At most one Save exists per account: the first save creates the row,
// later saves overwrite GameState in place and keep ID, Name and CreatedAt.
type Save struct {
	ID        SaveID
	AccountID AccountID
	Name      string
	GameState GameState
	CreatedAt time.Time
}

// SaveInfo is a listing entry for a saved game
type SaveInfo struct {
	ID        SaveID
	Name      string
	CreatedAt time.Time
}

// Float returns a numeric field. JSON numbers decode as float64, so any
// number the client submitted is reachable through this accessor.
func (g GameState) Float(field string) (float64, error) {
	v, ok := g[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingStateField, field)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidStateField, field)
	}
	return f, nil
}

// Bool returns a boolean field
func (g GameState) Bool(field string) (bool, error) {
	v, ok := g[field]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingStateField, field)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrInvalidStateField, field)
	}
	return b, nil
}

// Text returns a string field
func (g GameState) Text(field string) (string, error) {
	v, ok := g[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingStateField, field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidStateField, field)
	}
	return s, nil
}

// Count returns the length of an array field
func (g GameState) Count(field string) (int, error) {
	v, ok := g[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingStateField, field)
	}
	arr, ok := v.([]any)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidStateField, field)
	}
	return len(arr), nil
}

// SetFloat overwrites a numeric field
func (g GameState) SetFloat(field string, value float64) {
	g[field] = value
}
