// Package config loads engine configuration from environment variables (via
// a .env file, following the teacher's own convention) and command-line
// flags, with flags taking precedence. There is no package-level SETTINGS
// object: cmd/pricer holds the returned Config and passes the fields a call
// needs explicitly (e.g. DevMode into server.New and batch.Run).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the engine's explicit, immutable configuration value.
type Config struct {
	// LogLevel is a zerolog level name.
	LogLevel string
	// DefaultSeed is the configured Monte Carlo seed. No pricer subcommand
	// reads it; each takes its seed from its own --seed flag default.
	DefaultSeed uint64
	// DefaultPaths is the configured Monte Carlo path count. No pricer
	// subcommand reads it; each takes its path count from its own flag default.
	DefaultPaths int
	// HTTPPort is the port `pricer serve` binds to.
	HTTPPort int
	// DevMode relaxes validation-gate HALTs to WARNs for local iteration.
	DevMode bool
}

// Overrides carries CLI-flag values; a field is applied only if its presence
// flag is true, so an absent flag never clobbers an environment-sourced value.
type Overrides struct {
	LogLevel     *string
	DefaultSeed  *uint64
	DefaultPaths *int
	HTTPPort     *int
	DevMode      *bool
}

const (
	envLogLevel     = "ANNUITY_LOG_LEVEL"
	envDefaultSeed  = "ANNUITY_DEFAULT_SEED"
	envDefaultPaths = "ANNUITY_DEFAULT_PATHS"
	envHTTPPort     = "ANNUITY_HTTP_PORT"
	envDevMode      = "ANNUITY_DEV_MODE"
)

// Load reads a .env file (if present; a missing file is not an error — it is
// an optional convenience, exactly as the teacher's main.go treats it),
// applies environment variables, then applies any CLI overrides on top.
func Load(overrides Overrides) (Config, error) {
	_ = godotenv.Load() // optional; ignore "file not found"

	cfg := Config{
		LogLevel:     getenvDefault(envLogLevel, "info"),
		DefaultSeed:  42,
		DefaultPaths: 100_000,
		HTTPPort:     8080,
		DevMode:      false,
	}

	if v := os.Getenv(envDefaultSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", envDefaultSeed, err)
		}
		cfg.DefaultSeed = seed
	}
	if v := os.Getenv(envDefaultPaths); v != "" {
		paths, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", envDefaultPaths, err)
		}
		cfg.DefaultPaths = paths
	}
	if v := os.Getenv(envHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", envHTTPPort, err)
		}
		cfg.HTTPPort = port
	}
	if v := os.Getenv(envDevMode); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", envDevMode, err)
		}
		cfg.DevMode = dev
	}

	// CLI flags take highest priority, matching the teacher's documented
	// precedence: "CLI flag for data directory takes precedence over
	// environment variables."
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.DefaultSeed != nil {
		cfg.DefaultSeed = *overrides.DefaultSeed
	}
	if overrides.DefaultPaths != nil {
		cfg.DefaultPaths = *overrides.DefaultPaths
	}
	if overrides.HTTPPort != nil {
		cfg.HTTPPort = *overrides.HTTPPort
	}
	if overrides.DevMode != nil {
		cfg.DevMode = *overrides.DevMode
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
