package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dmarquez/idlempire/internal/api/apierr"
	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
	"github.com/dmarquez/idlempire/internal/model"
	"github.com/dmarquez/idlempire/internal/services/auth"
	"github.com/dmarquez/idlempire/internal/services/save"
)

// SaveHandler handles saved-game endpoints
type SaveHandler struct {
	authService *auth.Service
	saveService *save.Service
}

// NewSaveHandler creates a new save handler
func NewSaveHandler(authService *auth.Service, saveService *save.Service) *SaveHandler {
	return &SaveHandler{
		authService: authService,
		saveService: saveService,
	}
}

// SavedGames handles GET /api/savedGames
func (h *SaveHandler) SavedGames(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	infos, err := h.saveService.List(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SavedGamesFromInfos(infos))
}

// SaveGame handles POST /api/saveGame
func (h *SaveHandler) SaveGame(w http.ResponseWriter, r *http.Request) {
	var req request.SaveGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}
	if req.Username == "" || req.GameState == nil {
		apierr.WriteError(w, apierr.NewValidationError("Missing required fields"))
		return
	}

	account, err := h.authService.AccountByUsername(r.Context(), req.Username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	saved, err := h.saveService.Save(r.Context(), account.ID, req.SaveName, req.GameState)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SaveGame{
		SuccessFlag: true,
		SaveID:      string(saved.ID),
	})
}

// LoadGame handles GET /api/loadGame
func (h *SaveHandler) LoadGame(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountFromQuery(w, r)
	if !ok {
		return
	}

	saved, err := h.saveService.Load(r.Context(), account.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoadGameFromSave(saved))
}

// accountFromQuery resolves the username query parameter to an account,
// writing the failure response itself when it cannot
func (h *SaveHandler) accountFromQuery(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
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
