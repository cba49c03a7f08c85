package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PRODE_CONFIG is set
//  3. env (prefix PRODE_)
//
// Context is accepted to satisfy the project-wide convention; loading is
// currently synchronous and local.
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PRODE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PRODE_ADDR, PRODE_POOL_CODE_LENGTH, ...
	// Map env keys like PRODE_FIXTURE_CSV -> fixture_csv (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("PRODE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "prode_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.Store != StoreSQLite && cfg.Store != StoreMemory:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, cfg.Store)
	case cfg.PoolCodeLength < 1:
		return nil, fmt.Errorf("%w: pool_code_length must be positive", ErrInvalidConfig)
	case cfg.MaxStandingsLimit < 1:
		return nil, fmt.Errorf("%w: max_standings_limit must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
