package fx

import (
	"pokerly/internal/config"
	"pokerly/internal/database"
	"pokerly/internal/logger"
	"pokerly/internal/repository"
	"pokerly/internal/server"
	"pokerly/internal/service"

	"go.uber.org/fx"
)

func provideSessionSource(r *repository.SessionRepository) service.SessionSource { return r }
func provideJournalSource(r *repository.JournalRepository) service.JournalSource { return r }
func provideVenueDirectory(r *repository.VenueRepository) service.VenueDirectory { return r }

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewSessionRepository),
	fx.Provide(repository.NewJournalRepository),
	fx.Provide(repository.NewVenueRepository),
	fx.Provide(provideSessionSource),
	fx.Provide(provideJournalSource),
	fx.Provide(provideVenueDirectory),
	// svc
	fx.Provide(service.NewMonthlyStatsService),
	fx.Provide(service.NewSessionStatsService),
	fx.Provide(service.NewVenueStatsService),
	fx.Provide(service.NewDashboardService),
	// server
	fx.Provide(server.New),
)
