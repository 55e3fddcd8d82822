package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shopsage/internal/flagx"
)

var knownFlags = []string{"-s", "-f", "-r", "-l", "-log-file", "-auth-latency", "-search-latency", "-secret-mode"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-s string              storage driver: sqlite, redis or memory
//	-f string              sqlite database file
//	-r string              redis host:port
//	-l string              log level
//	-log-file string       write logs to this file instead of stderr
//	-auth-latency dur      simulated sign-in delay
//	-search-latency dur    simulated search delay
//	-secret-mode string    plain or argon2
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and
// unknown flags are ignored here.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver (sqlite, redis, memory)")
	fs.StringVar(&cfg.SQLitePath, "f", cfg.SQLitePath, "sqlite database file")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address host:port")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path")
	fs.DurationVar(&cfg.AuthLatency, "auth-latency", cfg.AuthLatency, "simulated sign-in delay")
	fs.DurationVar(&cfg.SearchLatency, "search-latency", cfg.SearchLatency, "simulated search delay")
	fs.StringVar(&cfg.SecretMode, "secret-mode", cfg.SecretMode, "how account secrets are stored (plain, argon2)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}
