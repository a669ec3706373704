// Package storage provides ports.KeyValueStore adapters.
//
// Four drivers are available: an in-process map, a single JSON file written
// by atomic rename, a SQLite table, and Redis. Every adapter reports a missing
// key as domain.ErrNotFound and backend failures as domain.ErrUnavailable.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Store is a key-value adapter that can report health and release resources.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
	io.Closer
}

// Config selects and configures a driver.
type Config struct {
	Driver        string
	Path          string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	Logger        *slog.Logger
}

// Driver names accepted by New.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// New opens the store selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "opening storage", slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Path)
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, cfg.KeyPrefix)
	case DriverRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func notFound(key string) error {
	return domain.NewNotFoundError("key", key)
}

func unavailable(driver string, err error) error {
	return domain.NewUnavailableError(driver, err.Error())
}
