package cachestore

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/models"
	"catalog-sync/core/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrMalformed marks a persisted document that could not be decoded.
var ErrMalformed = errors.New("malformed cache document")

// Store loads and saves the whole cache document at once.
type Store interface {
	// Load returns the persisted entries. A missing document yields an empty map.
	Load(ctx context.Context) (map[string]models.Match, error)
	// Save replaces the persisted document with entries.
	Save(ctx context.Context, entries map[string]models.Match) error
	// Clear removes the persisted document.
	Clear(ctx context.Context) error
	// Location describes where the document lives, for logs and reports.
	Location() string
}

// Driver names accepted in Config.Driver.
const (
	DriverFile  = "file"
	DriverS3    = "s3"
	DriverSQL   = "sql"
	DriverRedis = "redis"
)

// Config selects and configures the cache store.
type Config struct {
	// Driver is one of file, s3, sql, redis.
	Driver string `mapstructure:"driver" default:"file" validate:"oneof=file s3 sql redis"`
	// Path is the cache file for the file driver.
	Path string `mapstructure:"path" default:".cache/sku_map.json"`
	// Key names the document for the s3, sql and redis drivers.
	Key string `mapstructure:"key" default:"catalog-sync/sku_map.json"`
}

// Deps carries the clients the non-file drivers need.
type Deps struct {
	Storage storage.Client
	Bucket  string
	DB      *gorm.DB
	Redis   redis.Cmdable
}

// New builds the store selected by cfg.Driver.
func New(cfg Config, deps Deps) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.Path), nil
	case DriverS3:
		if deps.Storage == nil {
			return nil, fmt.Errorf("cache driver %q requires a storage client", cfg.Driver)
		}
		return NewObjectStore(deps.Storage, deps.Bucket, cfg.Key), nil
	case DriverSQL:
		if deps.DB == nil {
			return nil, fmt.Errorf("cache driver %q requires a database connection", cfg.Driver)
		}
		return NewSQLStore(deps.DB, cfg.Key), nil
	case DriverRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("cache driver %q requires a redis client", cfg.Driver)
		}
		return NewRedisStore(deps.Redis, cfg.Key), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
