package config

import (
	"fmt"
	"strings"
	"time"

	"slippi-ranks/internal/constants"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	SlippiAPIURL       string        `envconfig:"SLIPPI_API_URL"`
	Roster             []string      `envconfig:"ROSTER"`
	DBPath             string        `envconfig:"DB_PATH" default:"slippi.db"`
	ServerPort         string        `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	RefreshInterval    time.Duration `envconfig:"REFRESH_INTERVAL"`
	ExternalAPITimeout time.Duration `envconfig:"EXTERNAL_API_TIMEOUT"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("api_url", cfg.SlippiAPIURL).
		Strs("roster", cfg.Roster).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("configuration loaded")

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SlippiAPIURL == "" {
		c.SlippiAPIURL = constants.DefaultSlippiAPIURL
	}
	if len(c.Roster) == 0 {
		c.Roster = append([]string(nil), constants.DefaultRoster...)
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = constants.LeaderboardRefreshInterval
	}
	if c.ExternalAPITimeout == 0 {
		c.ExternalAPITimeout = constants.ExternalAPITimeout
	}

	roster := c.Roster[:0]
	for _, code := range c.Roster {
		if code = strings.TrimSpace(code); code != "" {
			roster = append(roster, code)
		}
	}
	c.Roster = roster
}

func (c *Config) Validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("ROSTER must contain at least one connect code")
	}
	seen := make(map[string]struct{}, len(c.Roster))
	for _, code := range c.Roster {
		if _, dup := seen[code]; dup {
			return fmt.Errorf("ROSTER contains duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	return nil
}

var Module = fx.Provide(Load)
