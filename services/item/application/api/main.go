package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/services/item/application/handlers"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a.Sessions, a.Logger)
}

// Mount registers /items behind RequireAuth. Every route answers 401 before
// any other check when the caller has no session.
func Mount(r chi.Router, svcs *appsvcs.Services, sessions *auth.SessionManager, log logger.Logger) {
	r.Route("/items", func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions, log))

		r.Get("/", handlers.NewListItemsHandler(svcs, log).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs, log).Execute)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.NewGetItemHandler(svcs, log).Execute)
			r.Put("/", handlers.NewPutItemHandler(svcs, log).Execute)
			r.Delete("/", handlers.NewDeleteItemHandler(svcs, log).Execute)
		})
	})
}
