package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://10.0.0.2:5001/api", "-p", "/tmp/p.db", "-t", "5", "-l", "debug", "-b", "zerolog"},
			expected: &Config{APIBaseURL: "http://10.0.0.2:5001/api", ProfilePath: "/tmp/p.db", RequestTimeout: 5 * time.Second, LogLevel: "debug", LogBackend: "zerolog"}},
		{name: "foreign flags ignored", args: []string{"cmd", "-x", "1", "-t=7", "--verbose"},
			expected: &Config{RequestTimeout: 7 * time.Second}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
