package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Service handles accounts and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	sessionTTL time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionTTL: 30 * 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		sessionTTL: cfg.SessionTTL,
	}
}

// Signup creates an account with starting battle stats. It does not log
// the account in; the client follows up with an explicit login.
func (s *Service) Signup(ctx context.Context, username, password string) (*model.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &model.Account{
		ID:           model.AccountID(generateID("u_")),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	stats := &model.PvPStats{
		AccountID:  account.ID,
		Reputation: model.DefaultReputation,
	}

	if err := s.storage.CreateAccount(ctx, account, stats); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates an account and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, session, nil
}

// ResolveSession returns the account for a session token.
// Expired sessions fail validation but are not removed here.
func (s *Service) ResolveSession(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if !session.ExpiresAt.After(s.clock.Now()) {
		return nil, ErrInvalidSession
	}

	account, err := s.storage.GetAccount(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return account, nil
}

// Logout removes the session for the given token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

// AccountByUsername looks up an account by its username
func (s *Service) AccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.storage.GetAccountByUsername(ctx, username)
}

// createSession creates and persists a new session for an account
func (s *Service) createSession(ctx context.Context, accountID model.AccountID) (*model.Session, error) {
	now := s.clock.Now()
	session := &model.Session{
		ID:        generateID("s_"),
		AccountID: accountID,
		Token:     generateToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// generateToken generates an opaque session token
func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
