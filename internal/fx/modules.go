package fx

import (
	"go.uber.org/fx"

	"contest-ranking/internal/api"
	"contest-ranking/internal/config"
	"contest-ranking/internal/database"
	"contest-ranking/internal/logger"
	"contest-ranking/internal/repository"
	"contest-ranking/internal/server"
	"contest-ranking/internal/service"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos, bound to the ports the services consume
	fx.Provide(
		fx.Annotate(repository.NewContestRepository, fx.As(new(service.ContestReader))),
		fx.Annotate(repository.NewSubmissionRepository,
			fx.As(new(service.SubmissionReader)),
			fx.As(new(service.SubmissionWriter))),
		fx.Annotate(repository.NewStandingRepository, fx.As(new(service.StandingStore))),
		fx.Annotate(repository.NewRatingRepository, fx.As(new(service.RatingStore))),
	),
	// api client
	fx.Provide(api.NewJudgeClient),
	// svc
	fx.Provide(service.NewContestLocks),
	fx.Provide(service.NewStandingService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewIngestService),
	// server
	fx.Provide(server.NewRankingServer),
)
