package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shopsage/internal/common"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver     string
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the Store for opts.Driver.
func Open(ctx context.Context, opts Options, log logging.Logger) (Store, error) {
	switch opts.Driver {
	case DriverSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "storage opened", "driver", opts.Driver, "path", opts.SQLitePath)
		return s, nil

	case DriverRedis:
		s, err := OpenRedis(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "storage opened", "driver", opts.Driver, "addr", opts.Redis.Addr, "db", opts.Redis.DB)
		return s, nil

	case DriverMemory:
		log.Warn(ctx, "storage is in-memory, nothing survives a restart")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownStorageDriver, opts.Driver)
	}
}
