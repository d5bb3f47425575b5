package fx

import (
	"go.uber.org/fx"

	"royale-wrapped/internal/api"
	"royale-wrapped/internal/config"
	"royale-wrapped/internal/database"
	"royale-wrapped/internal/logger"
	"royale-wrapped/internal/repository"
	"royale-wrapped/internal/server"
	"royale-wrapped/internal/service"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewSnapshotRepository),
	fx.Provide(func(r *repository.SnapshotRepository) service.SnapshotStore { return r }),
	// api client
	fx.Provide(api.NewClient),
	fx.Provide(func(c *api.Client) service.RoyaleClient { return c }),
	// svc
	fx.Provide(service.NewWrappedService),
	fx.Provide(func(s *service.WrappedService) server.WrappedProvider { return s }),
	// server
	fx.Provide(server.NewWrappedServer),
)
