//go:build wireinject
// +build wireinject

package di

import (
	"KPIPulse/pkg/config"
	"KPIPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideStore,
		ProvideAlertPublisher,
		ProvideCache,

		// Use case and HTTP boundary
		ProvideService,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
