package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmarquez/idlempire/internal/api/apierr"
	"github.com/dmarquez/idlempire/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Returns the uniform failure body on panic.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, errors.New("panic"))
}
