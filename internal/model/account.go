package model

import "time"

// AccountID uniquely identifies an account across the system
type AccountID string

// Account represents a registered player account
type Account struct {
	ID           AccountID
	Username     string // login username (immutable, unique)
	PasswordHash string // bcrypt hash, never the plaintext
	CreatedAt    time.Time
}

// Session is a persisted bearer credential proving a prior login.
// An account may hold multiple concurrent sessions. Expired rows are
// never allowed to authenticate but are only removed on explicit logout.
type Session struct {
	ID        string
	AccountID AccountID
	Token     string // cryptographically random, exact-match lookup
	CreatedAt time.Time
	ExpiresAt time.Time
}
