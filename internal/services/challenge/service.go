// Package challenge drives the PvP challenge lifecycle and battle
// resolution.
package challenge

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/dependencies/random"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/reputation"
	"github.com/dmarquez/idlempire/internal/services/save"
	"github.com/dmarquez/idlempire/internal/storage"
)

// Errors
var (
	ErrOpponentNotFound     = errors.New("opponent not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrChallengePending     = errors.New("challenge already pending")
	ErrChallengeNotPending  = errors.New("challenge is not pending")
	ErrChallengeNotAccepted = errors.New("challenge not found or not accepted")
	ErrNotParticipant       = errors.New("not a participant in this challenge")
	ErrOpponentHasNoSave    = errors.New("opponent has no saved game")
	ErrNoBattleResult       = errors.New("battle result not found")
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 16
)

// Service manages challenges between accounts
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	random     random.Random
	reputation *reputation.Service
	saves      *save.Service
	logger     *slog.Logger
}

// New creates a new challenge Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	reputation *reputation.Service,
	saves *save.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		reputation: reputation,
		saves:      saves,
		logger:     logger,
	}
}

// Create issues a pending challenge from an account to a named opponent.
// At most one pending challenge may exist per ordered (challenger,
// opponent) pair; the reverse direction is independent.
func (s *Service) Create(ctx context.Context, challengerID model.AccountID, opponentUsername string) (*model.Challenge, error) {
	opponent, err := s.storage.GetAccountByUsername(ctx, opponentUsername)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrOpponentNotFound
		}
		return nil, err
	}

	existing, err := s.storage.ListChallengesForAccount(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	for _, ch := range existing {
		if ch.ChallengerID == challengerID && ch.OpponentID == opponent.ID && ch.Status == model.ChallengePending {
			return nil, ErrChallengePending
		}
	}

	challenge := &model.Challenge{
		ID:           model.ChallengeID("ch_" + s.random.String(idLength, idAlphabet)),
		ChallengerID: challengerID,
		OpponentID:   opponent.ID,
		Status:       model.ChallengePending,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// Respond accepts or rejects a pending challenge. Terminal states stay
// terminal: responding to anything but a pending challenge fails.
func (s *Service) Respond(ctx context.Context, id model.ChallengeID, accept bool) error {
	to := model.ChallengeRejected
	if accept {
		to = model.ChallengeAccepted
	}

	err := s.storage.TransitionChallenge(ctx, id, model.ChallengePending, to, nil)
	if errors.Is(err, model.ErrChallengeConflict) {
		return ErrChallengeNotPending
	}
	return err
}

// Resolve fights out an accepted challenge. The acting player submits its
// live game state; the counterpart fights with its stored save. The
// accepted to completed transition is a check-and-set and runs before any
// money or reputation write, so of two concurrent calls exactly one
// resolves and the other fails without double-crediting.
func (s *Service) Resolve(ctx context.Context, id model.ChallengeID, actingUsername string, submitted model.GameState) (*model.BattleResult, error) {
	ch, err := s.storage.GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrChallengeNotFound) {
			return nil, ErrChallengeNotAccepted
		}
		return nil, err
	}
	if ch.Status != model.ChallengeAccepted {
		return nil, ErrChallengeNotAccepted
	}

	acting, err := s.storage.GetAccountByUsername(ctx, actingUsername)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	var counterpartID model.AccountID
	switch acting.ID {
	case ch.ChallengerID:
		counterpartID = ch.OpponentID
	case ch.OpponentID:
		counterpartID = ch.ChallengerID
	default:
		return nil, ErrNotParticipant
	}

	counterpart, err := s.storage.GetAccount(ctx, counterpartID)
	if err != nil {
		return nil, err
	}

	counterpartSave, err := s.storage.GetSave(ctx, counterpartID)
	if err != nil {
		if errors.Is(err, model.ErrNoSaveFound) {
			return nil, ErrOpponentHasNoSave
		}
		return nil, err
	}
	counterpartState := counterpartSave.GameState

	actingStrength, err := BattleStrength(submitted)
	if err != nil {
		return nil, err
	}
	counterpartStrength, err := BattleStrength(counterpartState)
	if err != nil {
		return nil, err
	}

	// Strictly greater: a tie goes to the counterpart
	actingWon := actingStrength > counterpartStrength
	winnerStrength, loserStrength := actingStrength, counterpartStrength
	if !actingWon {
		winnerStrength, loserStrength = counterpartStrength, actingStrength
	}
	reward := int(math.Floor(loserStrength * 100))
	loss := int(math.Floor(winnerStrength * 50))

	result := &model.BattleResult{
		Player:           acting.Username,
		Opponent:         counterpart.Username,
		PlayerStrength:   actingStrength,
		OpponentStrength: counterpartStrength,
		PlayerWon:        actingWon,
		Reward:           reward,
		Loss:             loss,
		Timestamp:        s.clock.Now(),
	}

	// Claim the challenge before touching money or reputation. Losing this
	// race means another call already resolved it.
	err = s.storage.TransitionChallenge(ctx, id, model.ChallengeAccepted, model.ChallengeCompleted, result)
	if err != nil {
		if errors.Is(err, model.ErrChallengeConflict) || errors.Is(err, model.ErrChallengeNotFound) {
			return nil, ErrChallengeNotAccepted
		}
		return nil, err
	}

	winnerID, winnerState := acting.ID, submitted
	loserID, loserState := counterpartID, counterpartState
	if !actingWon {
		winnerID, winnerState = counterpartID, counterpartState
		loserID, loserState = acting.ID, submitted
	}

	applyMoney(winnerState, float64(reward))
	applyMoney(loserState, -float64(loss))

	// The transition is the point of no return: the battle is durably
	// completed and can never be retried, so failed stat and save writes
	// are logged instead of failing the resolved battle.
	if _, err := s.reputation.RecordWin(ctx, winnerID); err != nil {
		s.logger.Warn("reputation write failed after battle",
			"challenge", id, "account", winnerID, "error", err)
	}
	if _, err := s.reputation.RecordLoss(ctx, loserID); err != nil {
		s.logger.Warn("reputation write failed after battle",
			"challenge", id, "account", loserID, "error", err)
	}

	// Both save writes tolerate a missing slot; the battle never creates
	// a save for an account that has none.
	if err := s.saves.Overwrite(ctx, acting.ID, submitted); err != nil {
		s.logger.Warn("save write-back failed after battle",
			"challenge", id, "account", acting.ID, "error", err)
	}
	if err := s.saves.Overwrite(ctx, counterpartID, counterpartState); err != nil {
		s.logger.Warn("save write-back failed after battle",
			"challenge", id, "account", counterpartID, "error", err)
	}

	return result, nil
}

// Status returns a challenge's lifecycle state
func (s *Service) Status(ctx context.Context, id model.ChallengeID) (model.ChallengeStatus, error) {
	ch, err := s.storage.GetChallenge(ctx, id)
	if err != nil {
		return "", err
	}
	return ch.Status, nil
}

// Result returns the stored battle result of a completed challenge
func (s *Service) Result(ctx context.Context, id model.ChallengeID) (*model.BattleResult, error) {
	ch, err := s.storage.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.BattleResult == nil {
		return nil, ErrNoBattleResult
	}
	return ch.BattleResult, nil
}

// applyMoney shifts a state's money by delta, floored at zero. Strength
// computation has already validated the field.
func applyMoney(state model.GameState, delta float64) {
	money, err := state.Float("money")
	if err != nil {
		return
	}
	money += delta
	if money < 0 {
		money = 0
	}
	state.SetFloat("money", money)
}
