package request

import "github.com/dmarquez/idlempire/internal/model"

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SaveGameRequest is the request body for saving a game
type SaveGameRequest struct {
	Username  string          `json:"username"`
	SaveName  string          `json:"saveName,omitempty"`
	GameState model.GameState `json:"gameState"`
}

// CreateChallengeRequest is the request body for issuing a PvP challenge
type CreateChallengeRequest struct {
	Username string `json:"username"`
	Opponent string `json:"opponent"`
}

// RespondToChallengeRequest is the request body for accepting or
// rejecting a challenge
type RespondToChallengeRequest struct {
	Username    string `json:"username"`
	ChallengeID string `json:"challengeId"`
	Accept      bool   `json:"accept"`
}

// BattleRequest is the request body for resolving an accepted challenge
type BattleRequest struct {
	Username    string          `json:"username"`
	ChallengeID string          `json:"challengeId"`
	GameState   model.GameState `json:"gameState"`
}
