package services

import (
	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/services/identity/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the identity context.
type Services struct {
	Identity *IdentityService
}

// New wires the identity services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	var bus postgres.TxPublisher
	if a.EventBus != nil {
		bus = a.EventBus
	}
	repo := postgres.NewUserRepository(a.Db, bus)
	return &Services{
		Identity: NewIdentityService(repo, a.Config.BcryptCost, a.Metrics, a.Logger),
	}
}
