package logger

import (
	"os"

	"slippi-ranks/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// ApplyLevel sets the process-wide minimum level from the loaded config.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
		return
	}
	zerolog.SetGlobalLevel(level)
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(ApplyLevel),
)
