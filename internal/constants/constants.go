package constants

import "time"

const (
	DefaultSlippiAPIURL = "https://gql-gateway-dot-slippi.uc.r.appspot.com/graphql"
	SlippiOperationName = "AccountManagementPageQuery"
)

// DefaultRoster is the reference roster shown on the leaderboard.
var DefaultRoster = []string{
	"SKAHT#0",
	"EDWIN#0",
	"PETE#653",
	"EBEN#786",
	"SUPA#776",
	"NGFM#267",
	"YARN#567",
	"PAYC#938",
}

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	LeaderboardRefreshInterval = 5 * time.Minute
)

const (
	HTTPMaxConnsPerHost     = 32
	HTTPMaxIdleConnDuration = 1 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SearchSuggestionLimit = 10
	DefaultHistoryLimit   = 20
	MaxHistoryLimit       = 200
)
