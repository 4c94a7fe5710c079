package model

import "time"

// DefaultReputation is the reputation every new account starts with
const DefaultReputation = 100

// PvPStats tracks an account's battle record. Wins and losses only grow;
// reputation is floored at zero.
type PvPStats struct {
	AccountID  AccountID
	Wins       int
	Losses     int
	Reputation int
}

// Opponent is a listing entry for the opponent picker
type Opponent struct {
	Username   string
	Reputation int
}

// ChallengeID uniquely identifies a PvP challenge
type ChallengeID string

// ChallengeStatus is the lifecycle state of a challenge
type ChallengeStatus string

// Challenge lifecycle: pending -> accepted -> completed, or
// pending -> rejected. Rejected and completed are terminal.
const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeRejected  ChallengeStatus = "rejected"
	ChallengeCompleted ChallengeStatus = "completed"
)

// Challenge is an asynchronous PvP request from one account to another.
// It is jointly referenced by both participants but owned by neither.
type Challenge struct {
	ID           ChallengeID
	ChallengerID AccountID
	OpponentID   AccountID
	Status       ChallengeStatus
	CreatedAt    time.Time
	BattleResult *BattleResult // set exactly once, at accepted -> completed
}

// BattleResult is the stored outcome of a resolved challenge. Field names
// match the wire format the polling client consumes.
type BattleResult struct {
	Player           string    `json:"player"`
	Opponent         string    `json:"opponent"`
	PlayerStrength   float64   `json:"playerStrength"`
	OpponentStrength float64   `json:"opponentStrength"`
	PlayerWon        bool      `json:"playerWon"`
	Reward           int       `json:"reward"`
	Loss             int       `json:"loss"`
	Timestamp        time.Time `json:"timestamp"`
}
