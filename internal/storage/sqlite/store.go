// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/storage"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES users (id),
	token      TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_games (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL UNIQUE REFERENCES users (id),
	name       TEXT NOT NULL,
	game_state TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pvp_stats (
	account_id TEXT PRIMARY KEY REFERENCES users (id),
	wins       INTEGER NOT NULL DEFAULT 0,
	losses     INTEGER NOT NULL DEFAULT 0,
	reputation INTEGER NOT NULL DEFAULT 100
);

CREATE TABLE IF NOT EXISTS pvp_challenges (
	id            TEXT PRIMARY KEY,
	challenger_id TEXT NOT NULL REFERENCES users (id),
	opponent_id   TEXT NOT NULL REFERENCES users (id),
	status        TEXT NOT NULL DEFAULT 'pending',
	created_at    INTEGER NOT NULL,
	battle_result TEXT
);
`

// Store persists game state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

func isUniqueViolation(err error) bool {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Account operations

func (s *Store) CreateAccount(ctx context.Context, account *model.Account, stats *model.PvPStats) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		string(account.ID), account.Username, account.PasswordHash, toMillis(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pvp_stats (account_id, wins, losses, reputation) VALUES (?, ?, ?, ?)`,
		string(stats.AccountID), stats.Wins, stats.Losses, stats.Reputation,
	)
	if err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, string(id))
	return scanAccount(row)
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var (
		account   model.Account
		id        string
		createdAt int64
	)
	err := row.Scan(&id, &account.Username, &account.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	account.ID = model.AccountID(id)
	account.CreatedAt = fromMillis(createdAt)
	return &account, nil
}

// Session operations

func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, account_id, token, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID, string(session.AccountID), session.Token,
		toMillis(session.CreatedAt), toMillis(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var (
		session   model.Session
		accountID string
		createdAt int64
		expiresAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, account_id, token, created_at, expires_at FROM sessions WHERE token = ?`, token).
		Scan(&session.ID, &accountID, &session.Token, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.AccountID = model.AccountID(accountID)
	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Save operations

func (s *Store) PutSave(ctx context.Context, save *model.Save) error {
	stateData, err := json.Marshal(save.GameState)
	if err != nil {
		return fmt.Errorf("marshal game state: %w", err)
	}

	// One save slot per account: a conflict on account_id replaces the
	// game state only, keeping the original id, name and creation time.
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO saved_games (id, account_id, name, game_state, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (account_id) DO UPDATE SET game_state = excluded.game_state`,
		string(save.ID), string(save.AccountID), save.Name, string(stateData), toMillis(save.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	return nil
}

func (s *Store) GetSave(ctx context.Context, accountID model.AccountID) (*model.Save, error) {
	var (
		save      model.Save
		id        string
		stateData string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, game_state, created_at FROM saved_games WHERE account_id = ?`,
		string(accountID)).
		Scan(&id, &save.Name, &stateData, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoSaveFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan save: %w", err)
	}

	if err := json.Unmarshal([]byte(stateData), &save.GameState); err != nil {
		return nil, model.ErrCorruptSave
	}
	save.ID = model.SaveID(id)
	save.AccountID = accountID
	save.CreatedAt = fromMillis(createdAt)
	return &save, nil
}

// Stats operations

func (s *Store) GetStats(ctx context.Context, accountID model.AccountID) (*model.PvPStats, error) {
	var stats model.PvPStats
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT wins, losses, reputation FROM pvp_stats WHERE account_id = ?`, string(accountID)).
		Scan(&stats.Wins, &stats.Losses, &stats.Reputation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	stats.AccountID = accountID
	return &stats, nil
}

func (s *Store) SaveStats(ctx context.Context, stats *model.PvPStats) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE pvp_stats SET wins = ?, losses = ?, reputation = ? WHERE account_id = ?`,
		stats.Wins, stats.Losses, stats.Reputation, string(stats.AccountID),
	)
	if err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return nil
}

func (s *Store) ListOpponents(ctx context.Context, excluding model.AccountID) ([]model.Opponent, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT u.username, p.reputation
		 FROM users u
		 JOIN pvp_stats p ON u.id = p.account_id
		 WHERE u.id != ?
		 ORDER BY p.reputation DESC, u.username ASC`,
		string(excluding),
	)
	if err != nil {
		return nil, fmt.Errorf("query opponents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	opponents := []model.Opponent{}
	for rows.Next() {
		var opponent model.Opponent
		if err := rows.Scan(&opponent.Username, &opponent.Reputation); err != nil {
			return nil, fmt.Errorf("scan opponent: %w", err)
		}
		opponents = append(opponents, opponent)
	}
	return opponents, rows.Err()
}

// Challenge operations

func (s *Store) CreateChallenge(ctx context.Context, challenge *model.Challenge) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO pvp_challenges (id, challenger_id, opponent_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(challenge.ID), string(challenge.ChallengerID), string(challenge.OpponentID),
		string(challenge.Status), toMillis(challenge.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, challenger_id, opponent_id, status, created_at, battle_result
		 FROM pvp_challenges WHERE id = ?`, string(id))

	challenge, err := scanChallenge(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrChallengeNotFound
	}
	return challenge, err
}

func (s *Store) TransitionChallenge(ctx context.Context, id model.ChallengeID, from, to model.ChallengeStatus, result *model.BattleResult) error {
	var resultData sql.NullString
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal battle result: %w", err)
		}
		resultData = sql.NullString{String: string(data), Valid: true}
	}

	// Conditional update: zero rows affected means the challenge either
	// does not exist or is not in the required status, which closes the
	// race between two concurrent transitions of the same challenge.
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE pvp_challenges
		 SET status = ?, battle_result = COALESCE(?, battle_result)
		 WHERE id = ? AND status = ?`,
		string(to), resultData, string(id), string(from),
	)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		err := s.sqlDB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM pvp_challenges WHERE id = ?)`, string(id)).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check challenge: %w", err)
		}
		if !exists {
			return model.ErrChallengeNotFound
		}
		return model.ErrChallengeConflict
	}
	return nil
}

func (s *Store) ListChallengesForAccount(ctx context.Context, accountID model.AccountID) ([]*model.Challenge, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, challenger_id, opponent_id, status, created_at, battle_result
		 FROM pvp_challenges
		 WHERE challenger_id = ? OR opponent_id = ?`,
		string(accountID), string(accountID),
	)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	challenges := []*model.Challenge{}
	for rows.Next() {
		challenge, err := scanChallenge(rows.Scan)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, challenge)
	}
	return challenges, rows.Err()
}

func scanChallenge(scan func(dest ...any) error) (*model.Challenge, error) {
	var (
		challenge    model.Challenge
		id           string
		challengerID string
		opponentID   string
		status       string
		createdAt    int64
		resultData   sql.NullString
	)
	err := scan(&id, &challengerID, &opponentID, &status, &createdAt, &resultData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan challenge: %w", err)
	}
	challenge.ID = model.ChallengeID(id)
	challenge.ChallengerID = model.AccountID(challengerID)
	challenge.OpponentID = model.AccountID(opponentID)
	challenge.Status = model.ChallengeStatus(status)
	challenge.CreatedAt = fromMillis(createdAt)
	if resultData.Valid {
		var result model.BattleResult
		if err := json.Unmarshal([]byte(resultData.String), &result); err != nil {
			return nil, model.ErrCorruptSave
		}
		challenge.BattleResult = &result
	}
	return &challenge, nil
}
