package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	clock  clock.Clock
}

// New creates a new Redis storage instance
func New(cfg Config, clk clock.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
		clock:  clk,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		clock:  clk,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account, stats *model.PvPStats) error {
	accountData, err := json.Marshal(account)
	if err != nil {
		return err
	}
	statsData, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	indexKey := usernameIndexKey(account.Username)

	// WATCH the username index so a concurrent signup for the same name
	// aborts the transaction instead of overwriting the winner.
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.Get(ctx, indexKey).Result()
		if err == nil {
			return model.ErrUsernameExists
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, accountKey(account.ID), accountData, 0)
			pipe.Set(ctx, indexKey, string(account.ID), 0)
			pipe.Set(ctx, statsKey(stats.AccountID), statsData, 0)
			pipe.ZAdd(ctx, reputationIndexKey(), redis.Z{
				Score:  float64(stats.Reputation),
				Member: string(account.ID),
			})
			return nil
		})
		return err
	}, indexKey)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrUsernameExists
	}
	return err
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	accountIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, model.AccountID(accountIDStr))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Let Redis expire the row alongside the session itself. The TTL comes
	// from the injected clock so it agrees with the auth service's expiry.
	ttl := session.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, ttl).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Save operations

func (s *Storage) PutSave(ctx context.Context, save *model.Save) error {
	data, err := json.Marshal(save)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, saveKey(save.AccountID), data, 0).Err()
}

func (s *Storage) GetSave(ctx context.Context, accountID model.AccountID) (*model.Save, error) {
	data, err := s.client.Get(ctx, saveKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoSaveFound
		}
		return nil, err
	}

	var save model.Save
	if err := json.Unmarshal(data, &save); err != nil {
		return nil, model.ErrCorruptSave
	}
	return &save, nil
}

// Stats operations

func (s *Storage) GetStats(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	data, err := s.client.Get(ctx, statsKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrStatsNotFound
		}
		return nil, err
	}

	var stats model.PvPStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Storage) SaveStats(ctx context.Context, stats *model.PvPStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	// Keep the reputation index in sync with the stats document
	pipe := s.client.Pipeline()
	pipe.Set(ctx, statsKey(stats.AccountID), data, 0)
	pipe.ZAdd(ctx, reputationIndexKey(), redis.Z{
		Score:  float64(stats.Reputation),
		Member: string(stats.AccountID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListOpponents(ctx context.Context, excluding model.AccountID) ([]model.Opponent, error) {
	// Highest reputation first
	entries, err := s.client.ZRevRangeWithScores(ctx, reputationIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	opponents := make([]model.Opponent, 0, len(entries))
	for _, entry := range entries {
		id := model.AccountID(entry.Member.(string))
		if id == excluding {
			continue
		}
		account, err := s.GetAccount(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		opponents = append(opponents, model.Opponent{
			Username:   account.Username,
			Reputation: int(entry.Score),
		})
	}

	return opponents, nil
}

// Challenge operations

func (s *Storage) CreateChallenge(ctx context.Context, challenge *model.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	key := challengeKey(challenge.ID)

	// Use pipeline for atomic save + per-participant index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, challengesForAccountIndexKey(challenge.ChallengerID), key)
	pipe.SAdd(ctx, challengesForAccountIndexKey(challenge.OpponentID), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	data, err := s.client.Get(ctx, challengeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrChallengeNotFound
		}
		return nil, err
	}

	var challenge model.Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *Storage) TransitionChallenge(ctx context.Context, id model.ChallengeID, from, to model.ChallengeStatus, result *model.BattleResult) error {
	key := challengeKey(id)

	// WATCH-based check-and-set: of two concurrent transitions only one
	// commits; the loser's transaction fails and surfaces as a conflict.
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.ErrChallengeNotFound
		}
		if err != nil {
			return err
		}

		var challenge model.Challenge
		if err := json.Unmarshal(data, &challenge); err != nil {
			return err
		}
		if challenge.Status != from {
			return model.ErrChallengeConflict
		}

		challenge.Status = to
		if result != nil {
			challenge.BattleResult = result
		}

		updated, err := json.Marshal(&challenge)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrChallengeConflict
	}
	return err
}

func (s *Storage) ListChallengesForAccount(ctx context.Context, accountID model.AccountID) ([]*model.Challenge, error) {
	indexKey := challengesForAccountIndexKey(accountID)

	challengeKeys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(challengeKeys) == 0 {
		return []*model.Challenge{}, nil
	}

	values, err := s.client.MGet(ctx, challengeKeys...).Result()
	if err != nil {
		return nil, err
	}

	challenges := make([]*model.Challenge, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var challenge model.Challenge
		if err := json.Unmarshal([]byte(val.(string)), &challenge); err != nil {
			continue // Skip invalid data
		}
		challenges = append(challenges, &challenge)
	}

	return challenges, nil
}
