package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dmarquez/idlempire/internal/model"
)

type StoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	store, err := Open(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *StoreSuite) createAccount(id model.AccountID, username string, reputation int) {
	s.Require().NoError(s.store.CreateAccount(s.ctx, &model.Account{
		ID:           id,
		Username:     username,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}, &model.PvPStats{
		AccountID:  id,
		Reputation: reputation,
	}))
}

func (s *StoreSuite) TestOpenRequiresPath() {
	_, err := Open("  ")
	s.Error(err)
}

func (s *StoreSuite) TestOpenIdempotentSchema() {
	path := filepath.Join(s.T().TempDir(), "reopen.db")

	store, err := Open(path)
	s.Require().NoError(err)
	s.Require().NoError(store.CreateAccount(s.ctx, &model.Account{
		ID:       "u_1",
		Username: "heisenberg",
	}, &model.PvPStats{AccountID: "u_1"}))
	s.Require().NoError(store.Close())

	// Reopening an existing database keeps its data
	store, err = Open(path)
	s.Require().NoError(err)
	defer store.Close()

	account, err := store.GetAccountByUsername(s.ctx, "heisenberg")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u_1"), account.ID)
}

// Account tests

func (s *StoreSuite) TestCreateAndGetAccount() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	account, err := s.store.GetAccount(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal("heisenberg", account.Username)
	s.Equal("$2a$10$hash", account.PasswordHash)

	byName, err := s.store.GetAccountByUsername(s.ctx, "heisenberg")
	s.Require().NoError(err)
	s.Equal(account.ID, byName.ID)
}

func (s *StoreSuite) TestCreateAccountDuplicateUsername() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	err := s.store.CreateAccount(s.ctx, &model.Account{
		ID:       "u_2",
		Username: "heisenberg",
	}, &model.PvPStats{AccountID: "u_2"})
	s.ErrorIs(err, model.ErrUsernameExists)

	// The failed signup must not leave a stats row behind
	_, err = s.store.GetStats(s.ctx, "u_2")
	s.ErrorIs(err, model.ErrStatsNotFound)
}

func (s *StoreSuite) TestCreateAccountInitializesStats() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	stats, err := s.store.GetStats(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(0, stats.Wins)
	s.Equal(0, stats.Losses)
	s.Equal(model.DefaultReputation, stats.Reputation)
}

func (s *StoreSuite) TestGetAccountNotFound() {
	_, err := s.store.GetAccount(s.ctx, "u_missing")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.store.GetAccountByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Session tests

func (s *StoreSuite) TestSessionLifecycle() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	now := time.Now().UTC().Truncate(time.Millisecond)
	session := &model.Session{
		ID:        "s_1",
		AccountID: "u_1",
		Token:     "tok123",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	s.Require().NoError(s.store.SaveSession(s.ctx, session))

	retrieved, err := s.store.GetSession(s.ctx, "tok123")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u_1"), retrieved.AccountID)
	s.Equal(session.ExpiresAt, retrieved.ExpiresAt)

	s.Require().NoError(s.store.DeleteSession(s.ctx, "tok123"))
	_, err = s.store.GetSession(s.ctx, "tok123")
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Deleting an unknown token is a no-op
	s.NoError(s.store.DeleteSession(s.ctx, "tok123"))
}

// Save tests

func (s *StoreSuite) TestPutAndGetSave() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	now := time.Now().UTC().Truncate(time.Millisecond)
	save := &model.Save{
		ID:        "sv_1",
		AccountID: "u_1",
		Name:      "AutoSave",
		GameState: model.GameState{"character": "Walter", "money": 100.0},
		CreatedAt: now,
	}
	s.Require().NoError(s.store.PutSave(s.ctx, save))

	retrieved, err := s.store.GetSave(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(save.ID, retrieved.ID)
	s.Equal("AutoSave", retrieved.Name)
	s.Equal("Walter", retrieved.GameState["character"])
	s.Equal(100.0, retrieved.GameState["money"])
	s.Equal(now, retrieved.CreatedAt)
}

func (s *StoreSuite) TestPutSaveReplacesStateOnly() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	first := &model.Save{
		ID:        "sv_1",
		AccountID: "u_1",
		Name:      "AutoSave",
		GameState: model.GameState{"money": 100.0},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(s.store.PutSave(s.ctx, first))

	// A later put with a different ID and name only replaces the state
	s.Require().NoError(s.store.PutSave(s.ctx, &model.Save{
		ID:        "sv_other",
		AccountID: "u_1",
		Name:      "Renamed",
		GameState: model.GameState{"money": 500.0},
		CreatedAt: time.Now().UTC(),
	}))

	retrieved, err := s.store.GetSave(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(first.ID, retrieved.ID)
	s.Equal(first.Name, retrieved.Name)
	s.Equal(first.CreatedAt, retrieved.CreatedAt)
	s.Equal(500.0, retrieved.GameState["money"])
}

func (s *StoreSuite) TestGetSaveNotFound() {
	_, err := s.store.GetSave(s.ctx, "u_missing")
	s.ErrorIs(err, model.ErrNoSaveFound)
}

func (s *StoreSuite) TestGetSaveCorrupt() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)
	s.Require().NoError(s.store.PutSave(s.ctx, &model.Save{
		ID:        "sv_1",
		AccountID: "u_1",
		GameState: model.GameState{"money": 100.0},
	}))

	_, err := s.store.sqlDB.Exec(`UPDATE saved_games SET game_state = '{not json' WHERE account_id = ?`, "u_1")
	s.Require().NoError(err)

	_, err = s.store.GetSave(s.ctx, "u_1")
	s.ErrorIs(err, model.ErrCorruptSave)
}

// Stats tests

func (s *StoreSuite) TestSaveAndGetStats() {
	s.createAccount("u_1", "heisenberg", model.DefaultReputation)

	stats, err := s.store.GetStats(s.ctx, "u_1")
	s.Require().NoError(err)
	stats.Wins = 3
	stats.Losses = 1
	stats.Reputation = 125
	s.Require().NoError(s.store.SaveStats(s.ctx, stats))

	retrieved, err := s.store.GetStats(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(3, retrieved.Wins)
	s.Equal(1, retrieved.Losses)
	s.Equal(125, retrieved.Reputation)
}

func (s *StoreSuite) TestListOpponents() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 150)
	s.createAccount("u_3", "gus", 50)
	s.createAccount("u_4", "mike", 150)

	opponents, err := s.store.ListOpponents(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Require().Len(opponents, 3)

	// Reputation descending, username ascending on ties
	s.Equal("jesse", opponents[0].Username)
	s.Equal("mike", opponents[1].Username)
	s.Equal("gus", opponents[2].Username)
}

// Challenge tests

func (s *StoreSuite) createChallenge(id model.ChallengeID, status model.ChallengeStatus) {
	s.Require().NoError(s.store.CreateChallenge(s.ctx, &model.Challenge{
		ID:           id,
		ChallengerID: "u_1",
		OpponentID:   "u_2",
		Status:       status,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}))
}

func (s *StoreSuite) TestCreateAndGetChallenge() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 100)
	s.createChallenge("ch_1", model.ChallengePending)

	challenge, err := s.store.GetChallenge(s.ctx, "ch_1")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u_1"), challenge.ChallengerID)
	s.Equal(model.ChallengePending, challenge.Status)
	s.Nil(challenge.BattleResult)
}

func (s *StoreSuite) TestTransitionChallenge() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 100)
	s.createChallenge("ch_1", model.ChallengePending)

	err := s.store.TransitionChallenge(s.ctx, "ch_1", model.ChallengePending, model.ChallengeAccepted, nil)
	s.Require().NoError(err)

	result := &model.BattleResult{
		Player:    "walter",
		Opponent:  "jesse",
		PlayerWon: true,
		Reward:    1000,
		Loss:      775,
	}
	err = s.store.TransitionChallenge(s.ctx, "ch_1", model.ChallengeAccepted, model.ChallengeCompleted, result)
	s.Require().NoError(err)

	challenge, err := s.store.GetChallenge(s.ctx, "ch_1")
	s.Require().NoError(err)
	s.Equal(model.ChallengeCompleted, challenge.Status)
	s.Require().NotNil(challenge.BattleResult)
	s.Equal(1000, challenge.BattleResult.Reward)
	s.Equal(775, challenge.BattleResult.Loss)
}

func (s *StoreSuite) TestTransitionChallengeConflict() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 100)
	s.createChallenge("ch_1", model.ChallengeRejected)

	err := s.store.TransitionChallenge(s.ctx, "ch_1", model.ChallengePending, model.ChallengeAccepted, nil)
	s.ErrorIs(err, model.ErrChallengeConflict)

	challenge, err := s.store.GetChallenge(s.ctx, "ch_1")
	s.Require().NoError(err)
	s.Equal(model.ChallengeRejected, challenge.Status)
}

func (s *StoreSuite) TestTransitionChallengeNotFound() {
	err := s.store.TransitionChallenge(s.ctx, "ch_missing", model.ChallengePending, model.ChallengeAccepted, nil)
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *StoreSuite) TestListChallengesForAccount() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 100)
	s.createAccount("u_3", "gus", 100)
	s.createChallenge("ch_1", model.ChallengePending)
	s.Require().NoError(s.store.CreateChallenge(s.ctx, &model.Challenge{
		ID:           "ch_2",
		ChallengerID: "u_3",
		OpponentID:   "u_1",
		Status:       model.ChallengePending,
		CreatedAt:    time.Now().UTC(),
	}))

	challenges, err := s.store.ListChallengesForAccount(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Len(challenges, 2)

	challenges, err = s.store.ListChallengesForAccount(s.ctx, "u_2")
	s.Require().NoError(err)
	s.Len(challenges, 1)

	challenges, err = s.store.ListChallengesForAccount(s.ctx, "u_3")
	s.Require().NoError(err)
	s.Len(challenges, 1)
}
