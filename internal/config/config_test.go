package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanssullivan/iss-spotter/internal/lookup"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(testLogger())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendRemote, cfg.PassBackend)
	assert.Equal(t, lookup.DefaultPassURL, cfg.PassURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SPOTTER_HTTP_ADDR", ":9090")
	t.Setenv("SPOTTER_IP_URL", "http://ip.local")
	t.Setenv("SPOTTER_GEO_URL", "http://geo.local")
	t.Setenv("SPOTTER_PASS_URL", "http://pass.local")
	t.Setenv("SPOTTER_PASS_BACKEND", "Predict")
	t.Setenv("SPOTTER_HTTP_TIMEOUT", "5")
	t.Setenv("SPOTTER_MAX_BODY_BYTES", "1024")
	t.Setenv("SPOTTER_NORAD_ID", "48274")
	t.Setenv("SPOTTER_PREDICT_HORIZON", "24")
	t.Setenv("SPOTTER_PREDICT_MIN_ELEVATION", "25.5")
	t.Setenv("SPOTTER_PREDICT_MAX_PASSES", "2")
	t.Setenv("SPOTTER_LOG_LEVEL", "debug")
	t.Setenv("SPOTTER_TRUST_PROXY", "true")

	cfg, err := Load(testLogger())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://ip.local", cfg.IPURL)
	assert.Equal(t, "http://geo.local", cfg.GeoURL)
	assert.Equal(t, "http://pass.local", cfg.PassURL)
	assert.Equal(t, BackendPredict, cfg.PassBackend)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, int64(1024), cfg.MaxBodyBytes)
	assert.Equal(t, 48274, cfg.Predict.NoradID)
	assert.Equal(t, 24*time.Hour, cfg.Predict.Horizon)
	assert.Equal(t, 25.5, cfg.Predict.MinElevation)
	assert.Equal(t, 2, cfg.Predict.MaxPasses)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.TrustProxy)
}

func TestLoadInvalidOptionalValuesFallBack(t *testing.T) {
	t.Setenv("SPOTTER_HTTP_TIMEOUT", "soon")
	t.Setenv("SPOTTER_MAX_BODY_BYTES", "-1")
	t.Setenv("SPOTTER_PREDICT_MIN_ELEVATION", "95")
	t.Setenv("SPOTTER_PREDICT_MAX_PASSES", "0")
	t.Setenv("SPOTTER_LOG_LEVEL", "loud")
	t.Setenv("SPOTTER_TRUST_PROXY", "maybe")

	cfg, err := Load(testLogger())
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.HTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, def.MaxBodyBytes, cfg.MaxBodyBytes)
	assert.Equal(t, def.Predict, cfg.Predict)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.TrustProxy)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"SPOTTER_PASS_BACKEND": "oracle"},
			want: "SPOTTER_PASS_BACKEND",
		},
		{
			name: "auth flag not boolean",
			env:  map[string]string{"SPOTTER_AUTH_ENABLED": "yes please"},
			want: "SPOTTER_AUTH_ENABLED",
		},
		{
			name: "auth without token",
			env:  map[string]string{"SPOTTER_AUTH_ENABLED": "true"},
			want: "SPOTTER_AUTH_TOKEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(testLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAuth(t *testing.T) {
	t.Setenv("SPOTTER_AUTH_ENABLED", "1")
	t.Setenv("SPOTTER_AUTH_TOKEN", "s3cret")

	cfg, err := Load(testLogger())
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.Token)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPOTTER_PASS_URL=http://from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("SPOTTER_PASS_URL")
	})

	cfg, err := Load(testLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://from-dotenv", cfg.PassURL)
}
