package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/services/identity/application/handlers"
	appsvcs "github.com/ghuser/inventory/services/identity/application/services"
)

// CredentialRequestsPerMinute is the per-IP limit on login and registration.
const CredentialRequestsPerMinute = 10

// IdentityRoutes mounts registration and the authentication API.
func IdentityRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a.Sessions, a.Logger, CredentialRequestsPerMinute)
}

// Mount registers POST /register and the /auth routes on r. A non-positive
// limit disables the credential rate limit.
func Mount(r chi.Router, svcs *appsvcs.Services, sessions *auth.SessionManager, log logger.Logger, limit int) {
	var limited []func(http.Handler) http.Handler
	if limit > 0 {
		limited = append(limited, httprate.Limit(limit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			httprate.WithLimitHandler(httpx.TooManyRequests),
		))
	}

	r.With(limited...).Post("/register", handlers.NewRegisterHandler(svcs, log).Execute)

	r.Route("/auth", func(r chi.Router) {
		r.With(limited...).Post("/login", handlers.NewLoginHandler(svcs, sessions, log).Execute)
		r.Post("/logout", handlers.NewLogoutHandler(sessions, log).Execute)
		r.Get("/session", handlers.NewSessionHandler(sessions, log).Execute)
	})
}
