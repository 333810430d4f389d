package pages

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
)

// Routes mounts the pages and their assets behind the login redirect guard.
// Unmatched paths outside /api go through the guard too, so a browser
// without a session is sent to login instead of seeing a 404.
func Routes(r chi.Router, sessions *auth.SessionManager, log logger.Logger) error {
	h, err := NewHandler(log)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(sessions, log))
		r.Get("/", h.Index)
		r.Get("/login", h.Login)
		r.Get("/register", h.Register)
		r.Handle("/static/*", http.StripPrefix("/static", Static()))
	})

	guarded := auth.RequireLogin(sessions, log)(http.HandlerFunc(http.NotFound))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if isAPIPath(r.URL.Path) {
			httpx.JSONError(w, http.StatusNotFound, "Not found")
			return
		}
		guarded.ServeHTTP(w, r)
	})
	return nil
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
