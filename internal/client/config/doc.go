// Package config loads runtime configuration for the ShopSage client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file named by -c or -config. Files ending in .yaml or
//     .yml are YAML, everything else is JSON.
//  3. Environment variables prefixed with SHOPSAGE_ (SHOPSAGE_STORAGE_DRIVER,
//     SHOPSAGE_REDIS_ADDR, ...).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-s string              storage driver: sqlite, redis or memory
//	-f string              sqlite database file
//	-r string              redis host:port
//	-l string              log level
//	-log-file string       rotated log file
//	-auth-latency dur      simulated sign-in delay
//	-search-latency dur    simulated search delay
//	-secret-mode string    plain or argon2
//
// # File schema
//
// Durations can be strings like "1s" or integer nanoseconds:
//
//	{
//	  "storage_driver": "sqlite",
//	  "sqlite_path": "shopsage.db",
//	  "key_prefix": "shopsage_",
//	  "auth_latency": "1s",
//	  "search_latency": "1500ms",
//	  "secret_mode": "plain",
//	  "log_level": "info",
//	  "log_format": "slog"
//	}
//
// The merged Config is checked with go-playground/validator before it is
// returned.
package config
