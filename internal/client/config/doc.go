// Package config loads runtime configuration for the stock advisor CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-p string   profile database path
//	-t int      request timeout (seconds)
//	-l string   log level
//	-b string   log backend
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:5001/api",
//	  "profile_path": "/home/ada/.stockadvisor/stockadvisor.db",
//	  "request_timeout": "15s",
//	  "log_level": "info",
//	  "log_backend": "slog"
//	}
package config
