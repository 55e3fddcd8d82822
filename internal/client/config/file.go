package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/shopsage/internal/flagx"
	"github.com/dmitrijs2005/shopsage/internal/timex"
)

// FileConfig is the on-disk form of Config. Nil fields are absent from the
// file and keep their current value. Durations go through timex.Duration so
// both "1s" and integer nanoseconds are accepted.
type FileConfig struct {
	StorageDriver *string `json:"storage_driver" yaml:"storage_driver"`
	SQLitePath    *string `json:"sqlite_path" yaml:"sqlite_path"`
	RedisAddr     *string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword *string `json:"redis_password" yaml:"redis_password"`
	RedisDB       *int    `json:"redis_db" yaml:"redis_db"`
	KeyPrefix     *string `json:"key_prefix" yaml:"key_prefix"`

	AuthLatency   *timex.Duration `json:"auth_latency" yaml:"auth_latency"`
	SearchLatency *timex.Duration `json:"search_latency" yaml:"search_latency"`
	SecretMode    *string         `json:"secret_mode" yaml:"secret_mode"`

	LogLevel  *string `json:"log_level" yaml:"log_level"`
	LogFormat *string `json:"log_format" yaml:"log_format"`
	LogFile   *string `json:"log_file" yaml:"log_file"`
}

// parseFile overlays cfg with the file named by -c/-config. Without the
// flag it does nothing. The format follows the extension: .yaml and .yml
// are YAML, anything else is JSON.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.StorageDriver, fc.StorageDriver)
	set(&cfg.SQLitePath, fc.SQLitePath)
	set(&cfg.RedisAddr, fc.RedisAddr)
	set(&cfg.RedisPassword, fc.RedisPassword)
	set(&cfg.RedisDB, fc.RedisDB)
	set(&cfg.KeyPrefix, fc.KeyPrefix)
	set(&cfg.SecretMode, fc.SecretMode)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.LogFile, fc.LogFile)

	if fc.AuthLatency != nil {
		cfg.AuthLatency = fc.AuthLatency.Duration
	}
	if fc.SearchLatency != nil {
		cfg.SearchLatency = fc.SearchLatency.Duration
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
