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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PMPRG_CONFIG is set
//  3. env (prefix PMPRG_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PMPRG_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PMPRG_ADDR, PMPRG_DB_PATH, ...
	// Map env keys like PMPRG_DB_PATH -> db_path (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PMPRG_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pmprg_")
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
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if cfg.StandardWeeklyHours <= 0 {
		return nil, fmt.Errorf("%w: standard_weekly_hours must be positive", ErrInvalidConfig)
	}
	switch cfg.CapacityBasis {
	case CapacityBasisStandardWeek, CapacityBasisResourceCapacity:
	default:
		return nil, fmt.Errorf("%w: unknown capacity_basis %q", ErrInvalidConfig, cfg.CapacityBasis)
	}
	return &cfg, nil
}
