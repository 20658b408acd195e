package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// Config holds runtime settings for the stock advisor CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API, including the /api prefix.
//   - ProfilePath: SQLite file holding the client profile (the credential).
//   - RequestTimeout: upper bound for a single API request.
//   - LogLevel: debug, info, warn or error.
//   - LogBackend: slog or zerolog.
type Config struct {
	APIBaseURL     string
	ProfilePath    string
	RequestTimeout time.Duration
	LogLevel       string
	LogBackend     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:5001/api"
	c.ProfilePath = DefaultProfilePath()
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogBackend = logging.BackendSlog
}

// DefaultProfilePath is stockadvisor.db under ~/.stockadvisor, or under
// ./.stockadvisor when the home directory is unknown.
func DefaultProfilePath() string {
	dir := ".stockadvisor"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, dir)
	}
	return filepath.Join(dir, "stockadvisor.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
