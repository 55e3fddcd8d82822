package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "SHOPSAGE_"

// parseEnv overlays cfg with SHOPSAGE_* variables. Unset variables leave
// the field untouched.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
