package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Secret:            "secret",
		Host:              "127.0.0.1",
		Port:              8080,
		LogLevel:          "debug",
		StateTTL:          time.Hour,
		BridgeCallTimeout: 5 * time.Second,
		SeekStep:          5,
		SpeedStep:         0.25,
		VolumeStep:        0.2,
	}
}

func TestAppConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	for name, mutate := range map[string]func(*AppConfig){
		"empty secret":     func(c *AppConfig) { c.Secret = "" },
		"zero port":        func(c *AppConfig) { c.Port = 0 },
		"zero state ttl":   func(c *AppConfig) { c.StateTTL = 0 },
		"zero bridge call": func(c *AppConfig) { c.BridgeCallTimeout = 0 },
		"negative seek":    func(c *AppConfig) { c.SeekStep = -1 },
		"zero speed":       func(c *AppConfig) { c.SpeedStep = 0 },
		"volume over one":  func(c *AppConfig) { c.VolumeStep = 1.5 },
		"bad log level":    func(c *AppConfig) { c.LogLevel = "loud" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "playerctl.log")

	logger, closer, err := newLogger(&stdout, "info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("started", "port", 8080)
	require.NoError(t, closer.Close())

	var record map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &record))
	assert.Equal(t, "started", record["msg"])
	assert.Equal(t, float64(8080), record["port"])

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), string(written))

	_, _, err = newLogger(&stdout, "loud", "")
	assert.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger, _, err := newLogger(io.Discard, "info", "")
	require.NoError(t, err)

	srv := httptest.NewServer(newHandler(rc, logger, validConfig()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/sessions/missing/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
