//go:build wireinject
// +build wireinject

package di

import (
	"TrafficLight/pkg/config"
	"TrafficLight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideCache,

		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Repositories
		ProvideStatusStore,
		ProvideEventPublisher,
		ProvideObservationStorage,

		// Services
		ProvideClock,
		ProvideSession,
		ProvideFetcher,
		ProvideIndicator,

		// Use cases
		ProvideReporter,
		ProvideReconciler,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
