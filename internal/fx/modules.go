package fx

import (
	"slippi-ranks/internal/api"
	"slippi-ranks/internal/config"
	"slippi-ranks/internal/database"
	"slippi-ranks/internal/logger"
	"slippi-ranks/internal/metrics"
	"slippi-ranks/internal/repository"
	"slippi-ranks/internal/scheduler"
	"slippi-ranks/internal/server"
	"slippi-ranks/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	metrics.Module,
	// repos
	fx.Provide(fx.Annotate(
		repository.NewSnapshotRepository,
		fx.As(new(service.SnapshotStore)),
		fx.As(new(service.KnownPlayerLister)),
	)),
	// api client
	fx.Provide(fx.Annotate(api.NewSlippiClient, fx.As(new(service.ConnectCodeClient)))),
	// svc
	fx.Provide(fx.Annotate(service.NewProfileService, fx.As(new(service.ProfileFetcher)))),
	fx.Provide(fx.Annotate(
		service.NewLeaderboardService,
		fx.As(fx.Self()),
		fx.As(new(scheduler.Refresher)),
	)),
	fx.Provide(service.NewSearchService),
	// background + server
	fx.Provide(scheduler.NewScheduler),
	fx.Provide(server.NewServer),
)
