// Package reputation tracks win/loss records and the reputation ladder.
package reputation

import (
	"context"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

const (
	winReputation  = 10
	lossReputation = 5
)

// Service maintains per-account battle stats
type Service struct {
	storage storage.Storage
}

// New creates a new reputation Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Get returns the stats for an account
func (s *Service) Get(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	return s.storage.GetStats(ctx, accountID)
}

// RecordWin adds a win and awards reputation
func (s *Service) RecordWin(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	stats, err := s.storage.GetStats(ctx, accountID)
	if err != nil {
		return nil, err
	}

	stats.Wins++
	stats.Reputation += winReputation

	if err := s.storage.SaveStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordLoss adds a loss and deducts reputation, floored at zero
func (s *Service) RecordLoss(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	stats, err := s.storage.GetStats(ctx, accountID)
	if err != nil {
		return nil, err
	}

	stats.Losses++
	stats.Reputation -= lossReputation
	if stats.Reputation < 0 {
		stats.Reputation = 0
	}

	if err := s.storage.SaveStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Opponents lists every other account ordered by reputation, best first
func (s *Service) Opponents(ctx context.Context, excluding model.AccountID) ([]model.Opponent, error) {
	return s.storage.ListOpponents(ctx, excluding)
}
