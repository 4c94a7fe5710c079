package redis

import (
	"fmt"

	"github.com/dmarquez/idlempire/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "empire"

// Key generation functions for each entity type

// accountKey returns the Redis key for an Account
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> account_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session, keyed by token
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// saveKey returns the Redis key for an account's single Save slot
func saveKey(accountID model.AccountID) string {
	return fmt.Sprintf("%s:save:%s", keyPrefix, accountID)
}

// statsKey returns the Redis key for an account's PvP stats
func statsKey(accountID model.AccountID) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, accountID)
}

// reputationIndexKey returns the Redis key for the reputation sorted set
// (member = account id, score = reputation)
func reputationIndexKey() string {
	return fmt.Sprintf("%s:idx:reputation", keyPrefix)
}

// challengeKey returns the Redis key for a Challenge
func challengeKey(id model.ChallengeID) string {
	return fmt.Sprintf("%s:challenge:%s", keyPrefix, id)
}

// challengesForAccountIndexKey returns the Redis key for the SET of
// challenge keys an account participates in, on either side
func challengesForAccountIndexKey(accountID model.AccountID) string {
	return fmt.Sprintf("%s:idx:challenges_for:%s", keyPrefix, accountID)
}
