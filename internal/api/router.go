package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmarquez/idlempire/internal/api/handler"
	apimiddleware "github.com/dmarquez/idlempire/internal/api/middleware"
	"github.com/dmarquez/idlempire/internal/middleware"
	"github.com/dmarquez/idlempire/internal/services/auth"
	"github.com/dmarquez/idlempire/internal/services/challenge"
	"github.com/dmarquez/idlempire/internal/services/query"
	"github.com/dmarquez/idlempire/internal/services/reputation"
	"github.com/dmarquez/idlempire/internal/services/save"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AuthService       *auth.Service
	SaveService       *save.Service
	ReputationService *reputation.Service
	ChallengeService  *challenge.Service
	QueryService      *query.Service
	SecureCookies     bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.SecureCookies)
	saveHandler := handler.NewSaveHandler(cfg.AuthService, cfg.SaveService)
	pvpHandler := handler.NewPvPHandler(cfg.AuthService, cfg.ReputationService, cfg.ChallengeService, cfg.QueryService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(apimiddleware.CORS)

	// Account and session routes
	api.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/verifySession", authHandler.VerifySession).Methods(http.MethodGet)
	api.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Saved-game routes
	api.HandleFunc("/savedGames", saveHandler.SavedGames).Methods(http.MethodGet)
	api.HandleFunc("/saveGame", saveHandler.SaveGame).Methods(http.MethodPost)
	api.HandleFunc("/loadGame", saveHandler.LoadGame).Methods(http.MethodGet)

	// PvP routes
	api.HandleFunc("/pvpStats", pvpHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/pvpOpponents", pvpHandler.Opponents).Methods(http.MethodGet)
	api.HandleFunc("/createPvPChallenge", pvpHandler.CreateChallenge).Methods(http.MethodPost)
	api.HandleFunc("/pendingChallenges", pvpHandler.PendingChallenges).Methods(http.MethodGet)
	api.HandleFunc("/respondToChallenge", pvpHandler.RespondToChallenge).Methods(http.MethodPost)
	api.HandleFunc("/pvpBattle", pvpHandler.Battle).Methods(http.MethodPost)
	api.HandleFunc("/battleResults", pvpHandler.BattleResults).Methods(http.MethodGet)
	api.HandleFunc("/completedChallenges", pvpHandler.CompletedChallenges).Methods(http.MethodGet)
	api.HandleFunc("/challengeStatus", pvpHandler.ChallengeStatus).Methods(http.MethodGet)
	api.HandleFunc("/challengeResult", pvpHandler.ChallengeResult).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
