package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:5001/api", c.APIBaseURL)
	assert.Equal(t, DefaultProfilePath(), c.ProfilePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestDefaultProfilePath(t *testing.T) {
	p := DefaultProfilePath()
	assert.Equal(t, "stockadvisor.db", filepath.Base(p))
	assert.Equal(t, ".stockadvisor", filepath.Base(filepath.Dir(p)))
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:5001/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url":    "http://json:1/api",
		"request_timeout": "30s",
		"log_backend":     "zerolog",
	})
	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:2/api"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "zerolog", cfg.LogBackend)
}
