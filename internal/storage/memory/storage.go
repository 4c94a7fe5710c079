package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
	sessions      map[string]*model.Session
	saves         map[model.AccountID]*model.Save
	stats         map[model.AccountID]*model.PvPStats
	challenges    map[model.ChallengeID]*model.Challenge
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
		sessions:      make(map[string]*model.Session),
		saves:         make(map[model.AccountID]*model.Save),
		stats:         make(map[model.AccountID]*model.PvPStats),
		challenges:    make(map[model.ChallengeID]*model.Challenge),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account, stats *model.PvPStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[account.Username]; taken {
		return model.ErrUsernameExists
	}
	s.accounts[account.ID] = account
	s.usernameIndex[account.Username] = account.ID
	s.stats[stats.AccountID] = stats
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Save operations

// Saves are deep-copied in both directions. Callers mutate the game
// state document in place (battle resolution writes money back while
// other requests may be loading the same save), so handing out the
// stored map would let a reader and a writer share it.

func (s *Storage) PutSave(ctx context.Context, save *model.Save) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[save.AccountID] = cloneSave(save)
	return nil
}

func (s *Storage) GetSave(ctx context.Context, accountID model.AccountID) (*model.Save, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	save, ok := s.saves[accountID]
	if !ok {
		return nil, model.ErrNoSaveFound
	}
	return cloneSave(save), nil
}

func cloneSave(save *model.Save) *model.Save {
	clone := *save
	clone.GameState = cloneState(save.GameState)
	return &clone
}

func cloneState(state model.GameState) model.GameState {
	if state == nil {
		return nil
	}
	clone := make(model.GameState, len(state))
	for field, value := range state {
		clone[field] = cloneValue(value)
	}
	return clone
}

// cloneValue copies the JSON value shapes a decoded game state can hold
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for key, item := range v {
			m[key] = cloneValue(item)
		}
		return m
	case []any:
		arr := make([]any, len(v))
		for i, item := range v {
			arr[i] = cloneValue(item)
		}
		return arr
	default:
		return v
	}
}

// Stats operations

func (s *Storage) GetStats(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[accountID]
	if !ok {
		return nil, model.ErrStatsNotFound
	}
	return stats, nil
}

func (s *Storage) SaveStats(ctx context.Context, stats *model.PvPStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.AccountID] = stats
	return nil
}

func (s *Storage) ListOpponents(ctx context.Context, excluding model.AccountID) ([]model.Opponent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opponents := make([]model.Opponent, 0, len(s.stats))
	for id, stats := range s.stats {
		if id == excluding {
			continue
		}
		account, ok := s.accounts[id]
		if !ok {
			continue
		}
		opponents = append(opponents, model.Opponent{
			Username:   account.Username,
			Reputation: stats.Reputation,
		})
	}

	sort.Slice(opponents, func(i, j int) bool {
		if opponents[i].Reputation != opponents[j].Reputation {
			return opponents[i].Reputation > opponents[j].Reputation
		}
		return opponents[i].Username < opponents[j].Username
	})

	return opponents, nil
}

// Challenge operations

func (s *Storage) CreateChallenge(ctx context.Context, challenge *model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = challenge
	return nil
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, model.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *Storage) TransitionChallenge(ctx context.Context, id model.ChallengeID, from, to model.ChallengeStatus, result *model.BattleResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return model.ErrChallengeNotFound
	}
	if challenge.Status != from {
		return model.ErrChallengeConflict
	}
	challenge.Status = to
	if result != nil {
		challenge.BattleResult = result
	}
	return nil
}

func (s *Storage) ListChallengesForAccount(ctx context.Context, accountID model.AccountID) ([]*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var challenges []*model.Challenge
	for _, challenge := range s.challenges {
		if challenge.ChallengerID == accountID || challenge.OpponentID == accountID {
			challenges = append(challenges, challenge)
		}
	}
	return challenges, nil
}
