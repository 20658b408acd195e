package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":    "https://advisor.example/api",
		"profile_path":    "/var/lib/sa.db",
		"request_timeout": "10s",
		"log_level":       "warn",
		"log_backend":     "zerolog",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		want := &Config{
			APIBaseURL:     "https://advisor.example/api",
			ProfilePath:    "/var/lib/sa.db",
			RequestTimeout: 10 * time.Second,
			LogLevel:       "warn",
			LogBackend:     "zerolog",
		}
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("nanosecond timeout and partial file", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"request_timeout": int64(2 * time.Second),
		})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{APIBaseURL: "keep", LogLevel: "info"}
		parseJson(cfg)

		assert.Equal(t, "keep", cfg.APIBaseURL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			APIBaseURL:     "defaults:1234",
			RequestTimeout: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
