// Package config defines service configuration structures and loading hooks.
package config

// Store backend names accepted by the store field.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the storage backend: "sqlite" or "memory".
	Store string `koanf:"store"`

	// DSN is the SQLite data source; empty uses a local prode.db file.
	DSN string `koanf:"dsn"`

	// FixtureCSV is the path of the fixture file loaded on first boot.
	FixtureCSV string `koanf:"fixture_csv"`

	// PoolCodeLength sets the length of generated pool join codes.
	PoolCodeLength int `koanf:"pool_code_length"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config holding the service defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Store:             StoreSQLite,
		DSN:               "",
		FixtureCSV:        "fixture_2026.csv",
		PoolCodeLength:    6,
		MaxStandingsLimit: 100,
	}
}
