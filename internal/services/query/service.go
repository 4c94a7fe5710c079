// Package query serves the read-only listing surface the polling client
// drives: opponent pickers, challenge inboxes and recent battle history.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

const (
	// completedWindow bounds the completed-challenge poll so it never
	// scans unbounded history
	completedWindow = 5 * time.Minute

	// battleResultLimit caps the recent-results listing
	battleResultLimit = 10
)

// PendingChallenge is an inbox entry for a challenge awaiting response
type PendingChallenge struct {
	ID         model.ChallengeID
	Challenger string
	CreatedAt  time.Time
}

// CompletedChallenge is a recently resolved challenge the challenger
// polls for
type CompletedChallenge struct {
	ID       model.ChallengeID
	Opponent string
	Result   *model.BattleResult
}

// BattleRecord pairs a stored battle result with its challenge's
// creation date
type BattleRecord struct {
	Result model.BattleResult
	Date   time.Time
}

// Service composes read-only views over storage
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new query Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{storage: storage, clock: clock}
}

// Opponents lists every other account ordered by reputation, best first
func (s *Service) Opponents(ctx context.Context, accountID model.AccountID) ([]model.Opponent, error) {
	return s.storage.ListOpponents(ctx, accountID)
}

// PendingChallenges lists incoming challenges awaiting the account's
// response, oldest first
func (s *Service) PendingChallenges(ctx context.Context, accountID model.AccountID) ([]PendingChallenge, error) {
	challenges, err := s.storage.ListChallengesForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	pending := []PendingChallenge{}
	for _, ch := range challenges {
		if ch.OpponentID != accountID || ch.Status != model.ChallengePending {
			continue
		}
		challenger, err := s.storage.GetAccount(ctx, ch.ChallengerID)
		if err != nil {
			return nil, err
		}
		pending = append(pending, PendingChallenge{
			ID:         ch.ID,
			Challenger: challenger.Username,
			CreatedAt:  ch.CreatedAt,
		})
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// CompletedChallenges lists the account's own recently completed
// challenges, newest first. Only challenger-initiated challenges within
// the polling window are returned.
func (s *Service) CompletedChallenges(ctx context.Context, accountID model.AccountID) ([]CompletedChallenge, error) {
	challenges, err := s.storage.ListChallengesForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cutoff := s.clock.Now().Add(-completedWindow)
	recent := []*model.Challenge{}
	for _, ch := range challenges {
		if ch.ChallengerID != accountID || ch.Status != model.ChallengeCompleted {
			continue
		}
		if ch.CreatedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, ch)
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	completed := []CompletedChallenge{}
	for _, ch := range recent {
		opponent, err := s.storage.GetAccount(ctx, ch.OpponentID)
		if err != nil {
			return nil, err
		}
		completed = append(completed, CompletedChallenge{
			ID:       ch.ID,
			Opponent: opponent.Username,
			Result:   ch.BattleResult,
		})
	}
	return completed, nil
}

// BattleResults lists the account's most recent battle outcomes on
// either side of the challenge, newest first
func (s *Service) BattleResults(ctx context.Context, accountID model.AccountID) ([]BattleRecord, error) {
	challenges, err := s.storage.ListChallengesForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	completed := []*model.Challenge{}
	for _, ch := range challenges {
		if ch.Status != model.ChallengeCompleted || ch.BattleResult == nil {
			continue
		}
		completed = append(completed, ch)
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	if len(completed) > battleResultLimit {
		completed = completed[:battleResultLimit]
	}

	records := []BattleRecord{}
	for _, ch := range completed {
		records = append(records, BattleRecord{
			Result: *ch.BattleResult,
			Date:   ch.CreatedAt,
		})
	}
	return records, nil
}
