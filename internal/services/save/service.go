// Package save manages the single persistent game save per account.
package save

import (
	"context"
	"errors"

	"github.com/dmarquez/idlempire/internal/dependencies/clock"
	"github.com/dmarquez/idlempire/internal/dependencies/random"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
)

const (
	// DefaultName is used when a save request does not name the slot
	DefaultName = "AutoSave"

	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 16
)

// Service handles saving and loading game state
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
}

// New creates a new save Service
func New(storage storage.Storage, clock clock.Clock, random random.Random) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
	}
}

// Save upserts the account's save slot. The first save fixes the slot's
// ID, name and creation time; later saves replace the game state only.
func (s *Service) Save(ctx context.Context, accountID model.AccountID, name string, state model.GameState) (*model.Save, error) {
	existing, err := s.storage.GetSave(ctx, accountID)
	if err != nil && !errors.Is(err, model.ErrNoSaveFound) && !errors.Is(err, model.ErrCorruptSave) {
		return nil, err
	}

	save := &model.Save{
		AccountID: accountID,
		GameState: state,
	}
	if existing != nil {
		save.ID = existing.ID
		save.Name = existing.Name
		save.CreatedAt = existing.CreatedAt
	} else {
		if name == "" {
			name = DefaultName
		}
		save.ID = model.SaveID("sv_" + s.random.String(idLength, idAlphabet))
		save.Name = name
		save.CreatedAt = s.clock.Now()
	}

	if err := s.storage.PutSave(ctx, save); err != nil {
		return nil, err
	}
	return save, nil
}

// Load returns the account's save
func (s *Service) Load(ctx context.Context, accountID model.AccountID) (*model.Save, error) {
	return s.storage.GetSave(ctx, accountID)
}

// List returns summaries of the account's saves, newest first
func (s *Service) List(ctx context.Context, accountID model.AccountID) ([]model.SaveInfo, error) {
	save, err := s.storage.GetSave(ctx, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNoSaveFound) {
			return []model.SaveInfo{}, nil
		}
		return nil, err
	}
	return []model.SaveInfo{{
		ID:        save.ID,
		Name:      save.Name,
		CreatedAt: save.CreatedAt,
	}}, nil
}

// Overwrite replaces the game state of an existing save. Accounts
// without a save are left untouched; a battle outcome never creates
// a save slot.
func (s *Service) Overwrite(ctx context.Context, accountID model.AccountID, state model.GameState) error {
	existing, err := s.storage.GetSave(ctx, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNoSaveFound) {
			return nil
		}
		return err
	}

	existing.GameState = state
	return s.storage.PutSave(ctx, existing)
}
