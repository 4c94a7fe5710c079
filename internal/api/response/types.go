package response

import (
	"time"

	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/query"
)

// Success is the minimal success body
type Success struct {
	SuccessFlag bool `json:"success"`
}

// OK is the shared plain success body
var OK = Success{SuccessFlag: true}

// Auth is the body for login and verifySession
type Auth struct {
	SuccessFlag bool   `json:"success"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
}

// AuthFromAccount builds an Auth body
func AuthFromAccount(account *model.Account) Auth {
	return Auth{
		SuccessFlag: true,
		UserID:      string(account.ID),
		Username:    account.Username,
	}
}

// SavedGameInfo is a saved-game listing entry
type SavedGameInfo struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// SavedGames is the body for the saved-games listing
type SavedGames struct {
	SuccessFlag bool            `json:"success"`
	SavedGames  []SavedGameInfo `json:"savedGames"`
}

// SavedGamesFromInfos builds a SavedGames body
func SavedGamesFromInfos(infos []model.SaveInfo) SavedGames {
	games := make([]SavedGameInfo, 0, len(infos))
	for _, info := range infos {
		games = append(games, SavedGameInfo{
			ID:   string(info.ID),
			Name: info.Name,
			Date: info.CreatedAt,
		})
	}
	return SavedGames{SuccessFlag: true, SavedGames: games}
}

// SaveGame is the body for a save operation
type SaveGame struct {
	SuccessFlag bool   `json:"success"`
	SaveID      string `json:"saveId"`
}

// LoadGame is the body for a load operation
type LoadGame struct {
	SuccessFlag bool            `json:"success"`
	SaveID      string          `json:"saveId"`
	SaveName    string          `json:"saveName"`
	GameState   model.GameState `json:"gameState"`
}

// LoadGameFromSave builds a LoadGame body
func LoadGameFromSave(save *model.Save) LoadGame {
	return LoadGame{
		SuccessFlag: true,
		SaveID:      string(save.ID),
		SaveName:    save.Name,
		GameState:   save.GameState,
	}
}

// Stats is the nested stats document
type Stats struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Reputation int `json:"reputation"`
}

// PvPStats is the body for the stats endpoint
type PvPStats struct {
	SuccessFlag bool  `json:"success"`
	Stats       Stats `json:"stats"`
}

// PvPStatsFromModel builds a PvPStats body
func PvPStatsFromModel(stats *model.PvPStats) PvPStats {
	return PvPStats{
		SuccessFlag: true,
		Stats: Stats{
			Wins:       stats.Wins,
			Losses:     stats.Losses,
			Reputation: stats.Reputation,
		},
	}
}

// Opponent is an opponent-picker entry
type Opponent struct {
	Username   string `json:"username"`
	Reputation int    `json:"reputation"`
}

// Opponents is the body for the opponent listing
type Opponents struct {
	SuccessFlag bool       `json:"success"`
	Opponents   []Opponent `json:"opponents"`
}

// OpponentsFromModel builds an Opponents body
func OpponentsFromModel(opponents []model.Opponent) Opponents {
	out := make([]Opponent, 0, len(opponents))
	for _, o := range opponents {
		out = append(out, Opponent{Username: o.Username, Reputation: o.Reputation})
	}
	return Opponents{SuccessFlag: true, Opponents: out}
}

// CreateChallenge is the body for challenge creation
type CreateChallenge struct {
	SuccessFlag bool   `json:"success"`
	ChallengeID string `json:"challengeId"`
}

// PendingChallenge is a challenge-inbox entry
type PendingChallenge struct {
	ID         string `json:"id"`
	Challenger string `json:"challenger"`
}

// PendingChallenges is the body for the challenge inbox
type PendingChallenges struct {
	SuccessFlag bool               `json:"success"`
	Challenges  []PendingChallenge `json:"challenges"`
}

// PendingChallengesFromQuery builds a PendingChallenges body
func PendingChallengesFromQuery(pending []query.PendingChallenge) PendingChallenges {
	challenges := make([]PendingChallenge, 0, len(pending))
	for _, p := range pending {
		challenges = append(challenges, PendingChallenge{
			ID:         string(p.ID),
			Challenger: p.Challenger,
		})
	}
	return PendingChallenges{SuccessFlag: true, Challenges: challenges}
}

// Respond is the body for a challenge response
type Respond struct {
	SuccessFlag bool `json:"success"`
	Accepted    bool `json:"accepted"`
}

// Battle is the body for a battle resolution
type Battle struct {
	SuccessFlag bool                `json:"success"`
	Result      *model.BattleResult `json:"result"`
}

// BattleRecord is a battle-history entry: the stored result document
// annotated with the challenge's creation date
type BattleRecord struct {
	model.BattleResult
	Date time.Time `json:"date"`
}

// BattleResults is the body for the battle history
type BattleResults struct {
	SuccessFlag bool           `json:"success"`
	Results     []BattleRecord `json:"results"`
}

// BattleResultsFromQuery builds a BattleResults body
func BattleResultsFromQuery(records []query.BattleRecord) BattleResults {
	results := make([]BattleRecord, 0, len(records))
	for _, r := range records {
		results = append(results, BattleRecord{
			BattleResult: r.Result,
			Date:         r.Date,
		})
	}
	return BattleResults{SuccessFlag: true, Results: results}
}

// CompletedChallenge is a recently resolved challenge entry
type CompletedChallenge struct {
	ID       string              `json:"id"`
	Opponent string              `json:"opponent"`
	Result   *model.BattleResult `json:"result"`
}

// CompletedChallenges is the body for the completion poll
type CompletedChallenges struct {
	SuccessFlag bool                 `json:"success"`
	Challenges  []CompletedChallenge `json:"challenges"`
}

// CompletedChallengesFromQuery builds a CompletedChallenges body
func CompletedChallengesFromQuery(completed []query.CompletedChallenge) CompletedChallenges {
	challenges := make([]CompletedChallenge, 0, len(completed))
	for _, c := range completed {
		challenges = append(challenges, CompletedChallenge{
			ID:       string(c.ID),
			Opponent: c.Opponent,
			Result:   c.Result,
		})
	}
	return CompletedChallenges{SuccessFlag: true, Challenges: challenges}
}

// ChallengeStatus is the body for the status poll
type ChallengeStatus struct {
	SuccessFlag bool   `json:"success"`
	Status      string `json:"status"`
}

// ChallengeResult is the body for the result poll
type ChallengeResult struct {
	SuccessFlag bool                `json:"success"`
	Result      *model.BattleResult `json:"result"`
}
