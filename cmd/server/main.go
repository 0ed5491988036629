package main

import (
	"context"
	"fmt"
	"net/http"

	"slippi-ranks/internal/config"
	"slippi-ranks/internal/constants"
	fxmodules "slippi-ranks/internal/fx"
	"slippi-ranks/internal/scheduler"
	"slippi-ranks/internal/server"
	"slippi-ranks/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(restoreLeaderboard),
		fx.Invoke(runServer),
		fx.Invoke(runScheduler),
	).Run()
}

func restoreLeaderboard(lc fx.Lifecycle, lb *service.LeaderboardService, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := lb.Restore(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to restore stored leaderboard")
			}
			return nil
		},
	})
}

func runServer(
	lc fx.Lifecycle,
	srvHandler *server.Server,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           srvHandler.Routes(),
		ReadHeaderTimeout: constants.RequestTimeout,
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

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

func runScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			if err := s.Stop(); err != nil {
				logger.Warn().Err(err).Msg("scheduler did not stop cleanly")
				return err
			}
			return nil
		},
	})
}
