package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmarquez/idlempire/internal/api/apierr"
	"github.com/dmarquez/idlempire/internal/api/request"
	"github.com/dmarquez/idlempire/internal/api/response"
	"github.com/dmarquez/idlempire/internal/services/auth"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "ie_session"

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	authService   *auth.Service
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Signup handles POST /api/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Username and password are required"))
		return
	}
	if req.Username == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewValidationError("Username and password are required"))
		return
	}

	if _, err := h.authService.Signup(r.Context(), req.Username, req.Password); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewValidationError("Username and password are required"))
		return
	}
	if req.Username == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewValidationError("Username and password are required"))
		return
	}

	account, session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, http.StatusOK, response.AuthFromAccount(account))
}

// VerifySession handles GET /api/verifySession
func (h *AuthHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	account, err := h.authService.ResolveSession(r.Context(), sessionToken(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthFromAccount(account))
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			apierr.WriteError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, http.StatusOK, response.OK)
}

// sessionToken extracts the session token cookie, empty if absent
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
