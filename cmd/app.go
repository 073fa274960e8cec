package cmd

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/cachestore"
	"catalog-sync/core/config"
	"catalog-sync/core/credentials"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/models"
	"catalog-sync/core/resolve"
	"catalog-sync/core/storage"
	"catalog-sync/feature/ecom"
	"catalog-sync/feature/retail"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app carries the clients shared by the commands of one process.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *apiclient.Metrics

	storage storage.Client
	closers []func()
}

// bootstrap loads configuration, builds the logger and registers metrics.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	registry := prometheus.NewRegistry()
	metrics, err := apiclient.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &app{cfg: cfg, log: logg, registry: registry, metrics: metrics}, nil
}

// close releases every client opened through the app.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.log.Sync()
}

// storageClient connects to the object storage once.
func (a *app) storageClient() (storage.Client, error) {
	if a.storage != nil {
		return a.storage, nil
	}
	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	a.storage = client
	return client, nil
}

// openStore builds the configured cache store and the client it needs.
func (a *app) openStore(ctx context.Context) (cachestore.Store, error) {
	deps := cachestore.Deps{Bucket: a.cfg.Storage.Bucket}

	switch a.cfg.Cache.Driver {
	case cachestore.DriverS3:
		client, err := a.storageClient()
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx, client, a.cfg.Storage.Bucket, a.cfg.Storage.Region); err != nil {
			return nil, err
		}
		deps.Storage = client
	case cachestore.DriverSQL:
		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
		deps.DB = db
	case cachestore.DriverRedis:
		rdb, err := cachestore.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		deps.Redis = rdb
	}

	store, err := cachestore.New(a.cfg.Cache, deps)
	if err != nil {
		return nil, err
	}
	if sqlStore, ok := store.(*cachestore.SQLStore); ok {
		if err := sqlStore.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate cache table: %w", err)
		}
	}
	return store, nil
}

// openResolver loads the identity cache behind a resolver.
func (a *app) openResolver(ctx context.Context, concurrency int) (*resolve.Resolver, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = a.cfg.Sync.Concurrency
	}
	r, err := resolve.New(ctx, store, a.log, resolve.Options{
		Concurrency: concurrency,
		StaleAfter:  time.Duration(a.cfg.Sync.StaleHours) * time.Hour,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := r.Close(context.Background()); err != nil {
			a.log.Warn("Failed to flush identity cache", zap.Error(err))
		}
	})
	return r, nil
}

// loadCredentials merges configured credentials with the token file.
// Nil means the backend is disabled for this process.
func (a *app) loadCredentials(b models.Backend, configured models.Credentials) *models.Credentials {
	creds, err := credentials.Resolve(a.cfg.Sync.CredentialsDir, b, configured)
	if err != nil {
		a.log.Warn("Unreadable credentials, backend disabled", zap.String("backend", string(b)), zap.Error(err))
		return nil
	}
	if !creds.Valid() {
		a.log.Warn("No credentials, backend disabled",
			zap.String("backend", string(b)),
			zap.String("token_file", credentials.Path(a.cfg.Sync.CredentialsDir, b)),
		)
		return nil
	}
	if creds.Expired(time.Now()) {
		a.log.Warn("Access token is expired or about to expire; refresh it with the auth tooling",
			zap.String("backend", string(b)))
	}
	return creds
}

// retailBackend returns nil when the retail backend is not usable.
func (a *app) retailBackend() *retail.Backend {
	creds := a.loadCredentials(models.BackendRetail, a.cfg.Retail.Credentials())
	if creds == nil {
		return nil
	}
	b, err := retail.NewBackend(creds, a.cfg.Retail, a.log, apiclient.WithMetrics(a.metrics))
	if err != nil {
		a.log.Warn("Retail backend disabled", zap.Error(err))
		return nil
	}
	return b
}

// ecomBackend returns nil when the eCom backend is not usable.
func (a *app) ecomBackend() *ecom.Backend {
	creds := a.loadCredentials(models.BackendEcom, a.cfg.Ecom.Credentials())
	if creds == nil {
		return nil
	}
	b, err := ecom.NewBackend(creds, a.cfg.Ecom, a.log, apiclient.WithMetrics(a.metrics))
	if err != nil {
		a.log.Warn("eCom backend disabled", zap.Error(err))
		return nil
	}
	return b
}

// lookups returns the lookups of the usable backends as untyped nils
// when a backend is missing.
func lookups(rb *retail.Backend, eb *ecom.Backend) (resolve.Lookup, resolve.Lookup) {
	var r, e resolve.Lookup
	if rb != nil {
		r = rb.Lookup()
	}
	if eb != nil {
		e = eb.Lookup()
	}
	return r, e
}
