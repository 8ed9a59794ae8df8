//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"fivemon/internal"
	"fivemon/internal/analytics"
	"fivemon/internal/controllers"
	"fivemon/internal/fivem"
	"fivemon/internal/monitor"
	"fivemon/internal/notify"
	"fivemon/internal/providers"
	"fivemon/internal/services"
	"fivemon/internal/storage"
	"fivemon/internal/structures"
	"fivemon/internal/tracker"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		storage.NewStore,
		fivem.NewClient,
		tracker.NewTracker,
		analytics.NewAggregator,
		notify.NewNotifier,
		services.NewMonitorService,

		monitor.NewZstdCompressor,
		monitor.NewStateFile,
		monitor.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
