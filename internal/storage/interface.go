package storage

import (
	"context"

	"github.com/dmarquez/idlempire/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Account operations. CreateAccount provisions the account and its
	// stats row as a single unit: either both exist afterwards or neither
	// does. Returns model.ErrUsernameExists on a taken username.
	CreateAccount(ctx context.Context, account *model.Account, stats *model.PvPStats) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// Session operations. DeleteSession is a no-op for an unknown token.
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Save operations. PutSave is a full-document replace keyed by the
	// save's account; GetSave returns model.ErrNoSaveFound when the
	// account has never saved, model.ErrCorruptSave when the stored
	// document fails to deserialize.
	PutSave(ctx context.Context, save *model.Save) error
	GetSave(ctx context.Context, accountID model.AccountID) (*model.Save, error)

	// Stats operations
	GetStats(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error)
	SaveStats(ctx context.Context, stats *model.PvPStats) error
	ListOpponents(ctx context.Context, excluding model.AccountID) ([]model.Opponent, error)

	// Challenge operations. TransitionChallenge is the atomic
	// check-and-set that drives the challenge state machine: the status
	// moves from `from` to `to` only if it currently equals `from`,
	// otherwise model.ErrChallengeConflict is returned and nothing
	// changes. A non-nil result is stored alongside the transition.
	CreateChallenge(ctx context.Context, challenge *model.Challenge) error
	GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error)
	TransitionChallenge(ctx context.Context, id model.ChallengeID, from, to model.ChallengeStatus, result *model.BattleResult) error
	ListChallengesForAccount(ctx context.Context, accountID model.AccountID) ([]*model.Challenge, error)
}
