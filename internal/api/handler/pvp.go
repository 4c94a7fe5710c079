package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dmarquez/idlempire/internal/api/apierr"
	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/auth"
	"github.com/dmarquez/idlempire/internal/services/challenge"
	"github.com/dmarquez/idlempire/internal/services/query"
	"github.com/dmarquez/idlempire/internal/services/reputation"
)

// PvPHandler handles stats, challenge and battle endpoints
type PvPHandler struct {
	authService       *auth.Service
	reputationService *reputation.Service
	challengeService  *challenge.Service
	queryService      *query.Service
}

// NewPvPHandler creates a new PvP handler
func NewPvPHandler(
	authService *auth.Service,
	reputationService *reputation.Service,
	challengeService *challenge.Service,
	queryService *query.Service,
) *PvPHandler {
	return &PvPHandler{
		authService:       authService,
		reputationService: reputationService,
		challengeService:  challengeService,
		queryService:      queryService,
	}
}

// Stats handles GET /api/pvpStats
func (h *PvPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	stats, err := h.reputationService.Get(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PvPStatsFromModel(stats))
}

// Opponents handles GET /api/pvpOpponents
func (h *PvPHandler) Opponents(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	opponents, err := h.queryService.Opponents(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OpponentsFromModel(opponents))
}

// CreateChallenge handles POST /api/createPvPChallenge
func (h *PvPHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req request.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}
	if req.Username == "" || req.Opponent == "" {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}

	account, err := h.authService.AccountByUsername(r.Context(), req.Username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	ch, err := h.challengeService.Create(r.Context(), account.ID, req.Opponent)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CreateChallenge{
		SuccessFlag: true,
		ChallengeID: string(ch.ID),
	})
}

// PendingChallenges handles GET /api/pendingChallenges
func (h *PvPHandler) PendingChallenges(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	pending, err := h.queryService.PendingChallenges(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PendingChallengesFromQuery(pending))
}

// RespondToChallenge handles POST /api/respondToChallenge
func (h *PvPHandler) RespondToChallenge(w http.ResponseWriter, r *http.Request) {
	var req request.RespondToChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}
	if req.Username == "" || req.ChallengeID == "" {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}

	err := h.challengeService.Respond(r.Context(), model.ChallengeID(req.ChallengeID), req.Accept)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Respond{
		SuccessFlag: true,
		Accepted:    req.Accept,
	})
}

// Battle handles POST /api/pvpBattle
func (h *PvPHandler) Battle(w http.ResponseWriter, r *http.Request) {
	var req request.BattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}
	if req.Username == "" || req.ChallengeID == "" || req.GameState == nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}

	result, err := h.challengeService.Resolve(r.Context(), model.ChallengeID(req.ChallengeID), req.Username, req.GameState)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Battle{
		SuccessFlag: true,
		Result:      result,
	})
}

// BattleResults handles GET /api/battleResults
func (h *PvPHandler) BattleResults(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	records, err := h.queryService.BattleResults(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BattleResultsFromQuery(records))
}

// CompletedChallenges handles GET /api/completedChallenges
func (h *PvPHandler) CompletedChallenges(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	completed, err := h.queryService.CompletedChallenges(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CompletedChallengesFromQuery(completed))
}

// ChallengeStatus handles GET /api/challengeStatus
func (h *PvPHandler) ChallengeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeIDFromQuery(w, r)
	if !ok {
		return
	}

	status, err := h.challengeService.Status(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChallengeStatus{
		SuccessFlag: true,
		Status:      string(status),
	})
}

// ChallengeResult handles GET /api/challengeResult
func (h *PvPHandler) ChallengeResult(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeIDFromQuery(w, r)
	if !ok {
		return
	}

	result, err := h.challengeService.Result(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChallengeResult{
		SuccessFlag: true,
		Result:      result,
	})
}

// accountFromQuery resolves the username query parameter to an account,
// writing the failure response itself when it cannot
func (h *PvPHandler) accountFromQuery(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	username := r.URL.Query().Get("username")
	if username == "" {
		apierr.WriteError(w, apierr.NewValidationError("Username is required"))
		return nil, false
	}

	account, err := h.authService.AccountByUsername(r.Context(), username)
	if err != nil {
		apierr.WriteError(w, err)
		return nil, false
	}
	return account, true
}

// challengeIDFromQuery extracts the challengeId query parameter
func challengeIDFromQuery(w http.ResponseWriter, r *http.Request) (model.ChallengeID, bool) {
	id := r.URL.Query().Get("challengeId")
	if id == "" {
		apierr.WriteError(w, apierr.NewValidationError("Challenge ID is required"))
		return "", false
	}
	return model.ChallengeID(id), true
}
