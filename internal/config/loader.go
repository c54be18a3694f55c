package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the TalentFlow
// service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	Seed          bool
	FaultsEnabled bool
	FaultsSeed    int64
	LogLevel      slog.Level
}

// Load parses configuration values from a .env file (when present) and the
// current process environment. The environment takes precedence over the
// file.
//
// Defaults cover every field; invalid values are accumulated and reported
// together rather than one at a time.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:talentflow.db?_pragma=foreign_keys(1)",
		Seed:          true,
		FaultsEnabled: true,
		FaultsSeed:    0,
		LogLevel:      slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TALENTFLOW_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "TALENTFLOW_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TALENTFLOW_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if seedValue := strings.TrimSpace(os.Getenv("TALENTFLOW_SEED")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "TALENTFLOW_SEED")
		} else {
			cfg.Seed = seed
		}
	}

	if faultsValue := strings.TrimSpace(os.Getenv("TALENTFLOW_FAULTS_ENABLED")); faultsValue != "" {
		enabled, err := strconv.ParseBool(faultsValue)
		if err != nil {
			invalid = append(invalid, "TALENTFLOW_FAULTS_ENABLED")
		} else {
			cfg.FaultsEnabled = enabled
		}
	}

	if seedValue := strings.TrimSpace(os.Getenv("TALENTFLOW_FAULTS_SEED")); seedValue != "" {
		seed, err := strconv.ParseInt(seedValue, 10, 64)
		if err != nil || seed < 0 {
			invalid = append(invalid, "TALENTFLOW_FAULTS_SEED")
		} else {
			cfg.FaultsSeed = seed
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("TALENTFLOW_LOG_LEVEL")); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "TALENTFLOW_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
