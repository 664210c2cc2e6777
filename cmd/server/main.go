package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"contest-ranking/internal/config"
	"contest-ranking/internal/constants"
	fxmodules "contest-ranking/internal/fx"
	"contest-ranking/internal/middleware"
	"contest-ranking/internal/server"
	"contest-ranking/internal/service"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runIngest),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	rankingServer *server.RankingServer,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	rankingServer.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(middleware.Recover(logger)(c.Handler(mux)))

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:     handler,
		ReadTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

func runIngest(
	lc fx.Lifecycle,
	ingest *service.IngestService,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	if !ingest.Enabled() {
		logger.Info().Msg("judge ingest disabled")
		return
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.IngestInterval)
				defer ticker.Stop()
				logger.Info().Dur("interval", cfg.IngestInterval).Msg("judge ingest started")
				for {
					select {
					case <-loopCtx.Done():
						return
					case <-ticker.C:
						if _, err := ingest.RunOnce(loopCtx); err != nil {
							logger.Error().Err(err).Msg("judge ingest cycle failed")
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			logger.Info().Msg("judge ingest stopped")
			return nil
		},
	})
}
