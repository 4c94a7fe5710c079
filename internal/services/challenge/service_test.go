package challenge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dmarquez/idlempire/internal/dependencies/mocks"
	"github.com/dmarquez/idlempire/internal/dependencies/random"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/reputation"
	"github.com/dmarquez/idlempire/internal/services/save"
	"github.com/dmarquez/idlempire/internal/storage/memory"
	"github.com/dmarquez/idlempire/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     random.Random
	reputation *reputation.Service
	saves      *save.Service
	service    *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = random.New()
	s.reputation = reputation.New(s.storage)
	s.saves = save.New(s.storage, s.clock, s.random)
	s.service = New(s.storage, s.clock, s.random, s.reputation, s.saves, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAccount(id model.AccountID, username string) {
	account := &model.Account{ID: id, Username: username, CreatedAt: s.clock.Now()}
	stats := &model.PvPStats{AccountID: id, Reputation: model.DefaultReputation}
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account, stats))
}

// acceptedChallenge sets up walter challenging jesse, accepted, with
// jesse holding a save of the given state.
func (s *ServiceSuite) acceptedChallenge(opponentState model.GameState) model.ChallengeID {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	if opponentState != nil {
		_, err := s.saves.Save(s.ctx, "u_jesse", "", opponentState)
		s.Require().NoError(err)
	}

	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, true))
	return ch.ID
}

// Create tests

func (s *ServiceSuite) TestCreateSucceeds() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")

	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)
	s.Equal(model.AccountID("u_walter"), ch.ChallengerID)
	s.Equal(model.AccountID("u_jesse"), ch.OpponentID)
	s.Equal(model.ChallengePending, ch.Status)
}

func (s *ServiceSuite) TestCreateUnknownOpponent() {
	s.createAccount("u_walter", "walter")

	_, err := s.service.Create(s.ctx, "u_walter", "gus")
	s.ErrorIs(err, ErrOpponentNotFound)
}

func (s *ServiceSuite) TestCreateDuplicatePendingRejected() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")

	_, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	_, err = s.service.Create(s.ctx, "u_walter", "jesse")
	s.ErrorIs(err, ErrChallengePending)
}

func (s *ServiceSuite) TestCreateReverseDirectionAllowed() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")

	_, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	// The pair constraint is ordered, not symmetric
	_, err = s.service.Create(s.ctx, "u_jesse", "walter")
	s.NoError(err)
}

func (s *ServiceSuite) TestCreateAllowedAfterResponse() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")

	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, false))

	_, err = s.service.Create(s.ctx, "u_walter", "jesse")
	s.NoError(err)
}

// Respond tests

func (s *ServiceSuite) TestRespondAccept() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, true))

	status, err := s.service.Status(s.ctx, ch.ID)
	s.Require().NoError(err)
	s.Equal(model.ChallengeAccepted, status)
}

func (s *ServiceSuite) TestRespondReject() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, false))

	status, err := s.service.Status(s.ctx, ch.ID)
	s.Require().NoError(err)
	s.Equal(model.ChallengeRejected, status)
}

func (s *ServiceSuite) TestRespondTwiceFails() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, false))
	s.ErrorIs(s.service.Respond(s.ctx, ch.ID, true), ErrChallengeNotPending)
}

func (s *ServiceSuite) TestRespondUnknownChallenge() {
	s.ErrorIs(s.service.Respond(s.ctx, "ch_missing", true), model.ErrChallengeNotFound)
}

// Resolve tests

func (s *ServiceSuite) TestResolveActingPlayerWins() {
	// Counterpart strength: 2000*0.001 + 5*0.8*2 = 10.0
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	// Acting strength 15.5 beats 10.0
	actingState := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	result, err := s.service.Resolve(s.ctx, chID, "walter", actingState)
	s.Require().NoError(err)

	s.Equal("walter", result.Player)
	s.Equal("jesse", result.Opponent)
	s.InDelta(15.5, result.PlayerStrength, 1e-9)
	s.InDelta(10.0, result.OpponentStrength, 1e-9)
	s.True(result.PlayerWon)
	s.Equal(1000, result.Reward)
	s.Equal(775, result.Loss)
	s.Equal(s.clock.CurrentTime, result.Timestamp)

	// Winner gains the reward on the submitted state
	s.Equal(2000.0, actingState["money"])

	// Loser's save drops by the loss, floored at zero
	loaded, err := s.saves.Load(s.ctx, "u_jesse")
	s.Require().NoError(err)
	s.Equal(1225.0, loaded.GameState["money"])
}

func (s *ServiceSuite) TestResolveTieFavorsCounterpart() {
	state := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	chID := s.acceptedChallenge(state)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	result, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)
	s.False(result.PlayerWon)
}

func (s *ServiceSuite) TestResolveUpdatesReputation() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)

	winner, err := s.reputation.Get(s.ctx, "u_walter")
	s.Require().NoError(err)
	s.Equal(1, winner.Wins)
	s.Equal(110, winner.Reputation)

	loser, err := s.reputation.Get(s.ctx, "u_jesse")
	s.Require().NoError(err)
	s.Equal(1, loser.Losses)
	s.Equal(95, loser.Reputation)
}

// statsDownStorage fails stat writes, simulating a backend fault after
// the battle has already committed.
type statsDownStorage struct {
	*memory.Storage
	failWrites bool
}

func (f *statsDownStorage) SaveStats(ctx context.Context, stats *model.PvPStats) error {
	if f.failWrites {
		return errors.New("stats backend down")
	}
	return f.Storage.SaveStats(ctx, stats)
}

func (s *ServiceSuite) TestResolveSurvivesStatWriteFailure() {
	store := &statsDownStorage{Storage: s.storage}
	rep := reputation.New(store)
	saves := save.New(store, s.clock, s.random)
	svc := New(store, s.clock, s.random, rep, saves, testutil.NopLogger())

	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	store.failWrites = true
	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	result, err := svc.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.True(result.PlayerWon)

	// The battle is durably completed with its result stored
	status, err := svc.Status(s.ctx, chID)
	s.Require().NoError(err)
	s.Equal(model.ChallengeCompleted, status)
	stored, err := svc.Result(s.ctx, chID)
	s.Require().NoError(err)
	s.Equal(result.Reward, stored.Reward)

	// Stats kept their pre-battle values; the failed write was dropped
	winner, err := s.reputation.Get(s.ctx, "u_walter")
	s.Require().NoError(err)
	s.Equal(0, winner.Wins)
	s.Equal(model.DefaultReputation, winner.Reputation)

	// The save write-back still went through
	loaded, err := s.saves.Load(s.ctx, "u_jesse")
	s.Require().NoError(err)
	s.Equal(1225.0, loaded.GameState["money"])
}

func (s *ServiceSuite) TestResolveLoserMoneyFloorsAtZero() {
	// Counterpart is weak and nearly broke
	opponentState := fullState("Jesse", 100, 0, 0, 0, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 20, 1.0, 10, 5, true, true, 4)
	result, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)
	s.True(result.PlayerWon)

	loaded, err := s.saves.Load(s.ctx, "u_jesse")
	s.Require().NoError(err)
	s.Equal(0.0, loaded.GameState["money"])
}

func (s *ServiceSuite) TestResolveAsOpponent() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	// jesse resolves against walter's stored save; walter has none
	_, err := s.service.Resolve(s.ctx, chID, "jesse", opponentState)
	s.ErrorIs(err, ErrOpponentHasNoSave)
}

func (s *ServiceSuite) TestResolveDoesNotCreateMissingSave() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)

	// walter never saved; the resolution must not create a slot
	_, err = s.saves.Load(s.ctx, "u_walter")
	s.ErrorIs(err, model.ErrNoSaveFound)
}

func (s *ServiceSuite) TestResolvePendingChallengeFails() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err = s.service.Resolve(s.ctx, ch.ID, "walter", acting)
	s.ErrorIs(err, ErrChallengeNotAccepted)
}

func (s *ServiceSuite) TestResolveRejectedChallengeFails() {
	s.createAccount("u_walter", "walter")
	s.createAccount("u_jesse", "jesse")
	ch, err := s.service.Create(s.ctx, "u_walter", "jesse")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Respond(s.ctx, ch.ID, false))

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err = s.service.Resolve(s.ctx, ch.ID, "walter", acting)
	s.ErrorIs(err, ErrChallengeNotAccepted)
}

func (s *ServiceSuite) TestResolveTwiceFails() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)

	_, err = s.service.Resolve(s.ctx, chID, "walter", acting)
	s.ErrorIs(err, ErrChallengeNotAccepted)
}

func (s *ServiceSuite) TestResolveUnknownChallenge() {
	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, "ch_missing", "walter", acting)
	s.ErrorIs(err, ErrChallengeNotAccepted)
}

func (s *ServiceSuite) TestResolveUnknownActingPlayer() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, chID, "gus", acting)
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *ServiceSuite) TestResolveNonParticipant() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)
	s.createAccount("u_gus", "gus")

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	_, err := s.service.Resolve(s.ctx, chID, "gus", acting)
	s.ErrorIs(err, ErrNotParticipant)
}

func (s *ServiceSuite) TestResolveConcurrentlyCompletesOnce() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
			_, errs[i] = s.service.Resolve(s.ctx, chID, "walter", acting)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, ErrChallengeNotAccepted)
		}
	}
	s.Equal(1, succeeded)

	// Stats applied exactly once
	winner, err := s.reputation.Get(s.ctx, "u_walter")
	s.Require().NoError(err)
	s.Equal(1, winner.Wins)
	s.Equal(110, winner.Reputation)
}

// Status / Result tests

func (s *ServiceSuite) TestStatusUnknownChallenge() {
	_, err := s.service.Status(s.ctx, "ch_missing")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *ServiceSuite) TestResultBeforeCompletion() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	_, err := s.service.Result(s.ctx, chID)
	s.ErrorIs(err, ErrNoBattleResult)
}

func (s *ServiceSuite) TestResultAfterCompletion() {
	opponentState := fullState("Walter", 2000, 0, 0, 5, 0, false, false, 0)
	chID := s.acceptedChallenge(opponentState)

	acting := fullState("Walter", 1000, 10, 0.9, 5, 2, true, false, 0)
	resolved, err := s.service.Resolve(s.ctx, chID, "walter", acting)
	s.Require().NoError(err)

	stored, err := s.service.Result(s.ctx, chID)
	s.Require().NoError(err)
	s.Equal(resolved.Player, stored.Player)
	s.Equal(resolved.Reward, stored.Reward)
	s.Equal(resolved.PlayerWon, stored.PlayerWon)

	status, err := s.service.Status(s.ctx, chID)
	s.Require().NoError(err)
	s.Equal(model.ChallengeCompleted, status)
}
