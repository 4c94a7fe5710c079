package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dmarquez/idlempire/internal/dependencies/mocks"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

// Signup tests

func (s *ServiceSuite) TestSignupSucceeds() {
	account, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	s.Equal("heisenberg", account.Username)
	s.NotEmpty(account.ID)
	s.Equal(s.clock.CurrentTime, account.CreatedAt)
}

func (s *ServiceSuite) TestSignupHashesPassword() {
	account, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	stored, err := s.storage.GetAccountByUsername(s.ctx, "heisenberg")
	s.Require().NoError(err)
	s.Equal(account.ID, stored.ID)
	s.NotEmpty(stored.PasswordHash)
	s.NotEqual("bluesky", stored.PasswordHash)
}

func (s *ServiceSuite) TestSignupInitializesStats() {
	account, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	stats, err := s.storage.GetStats(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(0, stats.Wins)
	s.Equal(0, stats.Losses)
	s.Equal(model.DefaultReputation, stats.Reputation)
}

func (s *ServiceSuite) TestSignupFailsIfUsernameExists() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	_, err = s.service.Signup(s.ctx, "heisenberg", "different")
	s.ErrorIs(err, model.ErrUsernameExists)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	created, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	account, session, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	s.Equal(created.ID, account.ID)
	s.NotEmpty(session.Token)
	s.Equal(created.ID, session.AccountID)
	s.Equal(s.clock.CurrentTime.Add(30*24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	_, _, err = s.service.Login(s.ctx, "heisenberg", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsForUnknownUsername() {
	_, _, err := s.service.Login(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginIssuesDistinctSessions() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	_, first, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	_, second, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	s.NotEqual(first.Token, second.Token)

	// Both remain usable
	_, err = s.service.ResolveSession(s.ctx, first.Token)
	s.NoError(err)
	_, err = s.service.ResolveSession(s.ctx, second.Token)
	s.NoError(err)
}

// ResolveSession tests

func (s *ServiceSuite) TestResolveSessionReturnsAccount() {
	created, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	_, session, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	account, err := s.service.ResolveSession(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(created.ID, account.ID)
	s.Equal("heisenberg", account.Username)
}

func (s *ServiceSuite) TestResolveSessionFailsForUnknownToken() {
	_, err := s.service.ResolveSession(s.ctx, "bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestResolveSessionFailsForEmptyToken() {
	_, err := s.service.ResolveSession(s.ctx, "")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestResolveSessionFailsAfterExpiry() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	_, session, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	s.clock.Advance(30*24*time.Hour + time.Second)

	_, err = s.service.ResolveSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestResolveSessionExactExpiryFails() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	_, session, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	s.clock.Advance(30 * 24 * time.Hour)

	_, err = s.service.ResolveSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

// Logout tests

func (s *ServiceSuite) TestLogoutInvalidatesSession() {
	_, err := s.service.Signup(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)
	_, session, err := s.service.Login(s.ctx, "heisenberg", "bluesky")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx, session.Token))

	_, err = s.service.ResolveSession(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogoutUnknownTokenIsNoop() {
	s.NoError(s.service.Logout(s.ctx, "bogus"))
}
