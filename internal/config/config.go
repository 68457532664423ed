// Package config reads process settings from SPOTTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/seanssullivan/iss-spotter/internal/auth"
	"github.com/seanssullivan/iss-spotter/internal/lookup"
)

// Pass backends selectable with SPOTTER_PASS_BACKEND.
const (
	BackendRemote  = "remote"
	BackendPredict = "predict"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr   string
	TrustProxy bool
	LogLevel   slog.Level

	IPURL       string
	GeoURL      string
	PassURL     string
	PassBackend string

	HTTPTimeout  time.Duration
	MaxBodyBytes int64

	Predict lookup.PredictConfig
	Auth    auth.Config
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		HTTPAddr:     ":8080",
		LogLevel:     slog.LevelInfo,
		IPURL:        lookup.DefaultAddressURL,
		GeoURL:       lookup.DefaultGeoURL,
		PassURL:      lookup.DefaultPassURL,
		PassBackend:  BackendRemote,
		HTTPTimeout:  30 * time.Second,
		MaxBodyBytes: 10 << 20,
		Predict: lookup.PredictConfig{
			TLEURL:       lookup.DefaultTLEURL,
			NoradID:      lookup.ISSNoradID,
			Horizon:      72 * time.Hour,
			MinElevation: 10,
			MaxPasses:    5,
		},
	}
}

// Load reads an optional .env file from the working directory and then the
// environment. Invalid optional values log a warning and keep their default;
// invalid auth settings or an unknown pass backend are returned as errors.
func Load(logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not read .env file", "component", "config", "error", err)
	}

	cfg := Default()

	if v := os.Getenv("SPOTTER_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SPOTTER_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SPOTTER_TRUST_PROXY value, defaulting to false", "component", "config", "value", v)
		} else {
			cfg.TrustProxy = b
		}
	}
	if v := os.Getenv("SPOTTER_LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			logger.Warn("invalid SPOTTER_LOG_LEVEL value, using default", "component", "config", "value", v, "default", "info")
		} else {
			cfg.LogLevel = level
		}
	}

	if v := os.Getenv("SPOTTER_IP_URL"); v != "" {
		cfg.IPURL = v
	}
	if v := os.Getenv("SPOTTER_GEO_URL"); v != "" {
		cfg.GeoURL = v
	}
	if v := os.Getenv("SPOTTER_PASS_URL"); v != "" {
		cfg.PassURL = v
	}
	if v := os.Getenv("SPOTTER_PASS_BACKEND"); v != "" {
		switch b := strings.ToLower(strings.TrimSpace(v)); b {
		case BackendRemote, BackendPredict:
			cfg.PassBackend = b
		default:
			return cfg, fmt.Errorf("SPOTTER_PASS_BACKEND must be %q or %q, got %q", BackendRemote, BackendPredict, v)
		}
	}

	if n, ok := positiveInt(logger, "SPOTTER_HTTP_TIMEOUT", 30); ok {
		cfg.HTTPTimeout = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt(logger, "SPOTTER_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)); ok {
		cfg.MaxBodyBytes = int64(n)
	}

	if v := os.Getenv("SPOTTER_TLE_URL"); v != "" {
		cfg.Predict.TLEURL = v
	}
	if n, ok := positiveInt(logger, "SPOTTER_NORAD_ID", lookup.ISSNoradID); ok {
		cfg.Predict.NoradID = n
	}
	if n, ok := positiveInt(logger, "SPOTTER_PREDICT_HORIZON", 72); ok {
		cfg.Predict.Horizon = time.Duration(n) * time.Hour
	}
	if n, ok := positiveInt(logger, "SPOTTER_PREDICT_MAX_PASSES", 5); ok {
		cfg.Predict.MaxPasses = n
	}
	if v := os.Getenv("SPOTTER_PREDICT_MIN_ELEVATION"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 90 {
			logger.Warn("invalid SPOTTER_PREDICT_MIN_ELEVATION value, using default", "component", "config", "value", v, "default", 10)
		} else {
			cfg.Predict.MinElevation = f
		}
	}

	authCfg, err := loadAuth(logger)
	if err != nil {
		return cfg, err
	}
	cfg.Auth = authCfg

	logger.Info("config loaded",
		"component", "config",
		"http_addr", cfg.HTTPAddr,
		"pass_backend", cfg.PassBackend,
		"http_timeout_seconds", cfg.HTTPTimeout.Seconds(),
		"auth_enabled", cfg.Auth.Enabled,
	)

	return cfg, nil
}

// positiveInt reads name as an integer >= 1. ok is false when the variable
// is unset or invalid; invalid values are logged.
func positiveInt(logger *slog.Logger, name string, def int) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid "+name+" value, using default", "component", "config", "value", v, "default", def)
		return 0, false
	}
	return n, true
}

func loadAuth(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	if v := os.Getenv("SPOTTER_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("SPOTTER_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("SPOTTER_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("SPOTTER_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled", "component", "config")
	}

	return cfg, nil
}
