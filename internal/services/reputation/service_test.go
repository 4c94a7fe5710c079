package reputation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAccount(id model.AccountID, username string, reputation int) {
	account := &model.Account{
		ID:        id,
		Username:  username,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	stats := &model.PvPStats{AccountID: id, Reputation: reputation}
	s.Require().NoError(s.storage.CreateAccount(s.ctx, account, stats))
}

func (s *ServiceSuite) TestGetUnknownAccount() {
	_, err := s.service.Get(s.ctx, "u_missing")
	s.ErrorIs(err, model.ErrStatsNotFound)
}

func (s *ServiceSuite) TestRecordWin() {
	s.createAccount("u_1", "walter", model.DefaultReputation)

	stats, err := s.service.RecordWin(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(1, stats.Wins)
	s.Equal(0, stats.Losses)
	s.Equal(110, stats.Reputation)
}

func (s *ServiceSuite) TestRecordLoss() {
	s.createAccount("u_1", "walter", model.DefaultReputation)

	stats, err := s.service.RecordLoss(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(0, stats.Wins)
	s.Equal(1, stats.Losses)
	s.Equal(95, stats.Reputation)
}

func (s *ServiceSuite) TestReputationFloorsAtZero() {
	s.createAccount("u_1", "walter", 3)

	stats, err := s.service.RecordLoss(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(0, stats.Reputation)

	stats, err = s.service.RecordLoss(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(0, stats.Reputation)
	s.Equal(2, stats.Losses)
}

func (s *ServiceSuite) TestRecordPersists() {
	s.createAccount("u_1", "walter", model.DefaultReputation)

	_, err := s.service.RecordWin(s.ctx, "u_1")
	s.Require().NoError(err)

	stats, err := s.service.Get(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(1, stats.Wins)
	s.Equal(110, stats.Reputation)
}

func (s *ServiceSuite) TestOpponentsExcludesSelfAndOrders() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "jesse", 150)
	s.createAccount("u_3", "gus", 50)

	opponents, err := s.service.Opponents(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Require().Len(opponents, 2)
	s.Equal("jesse", opponents[0].Username)
	s.Equal(150, opponents[0].Reputation)
	s.Equal("gus", opponents[1].Username)
}

func (s *ServiceSuite) TestOpponentsTieBreaksByUsername() {
	s.createAccount("u_1", "walter", 100)
	s.createAccount("u_2", "badger", 80)
	s.createAccount("u_3", "andrea", 80)

	opponents, err := s.service.Opponents(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Require().Len(opponents, 2)
	s.Equal("andrea", opponents[0].Username)
	s.Equal("badger", opponents[1].Username)
}
