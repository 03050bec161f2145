package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/hszk-dev/cliprelay/internal/api/handler"
	"github.com/hszk-dev/cliprelay/internal/config"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/cache"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/postgres"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/storage"
)

// cacheBackend hands out one durable document per cache store.
type cacheBackend struct {
	document func(name string) repository.DocumentStore
	checks   map[string]handler.Check
	closers  []func()
}

func (b *cacheBackend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openCacheBackend(ctx context.Context, cfg *config.Config) (*cacheBackend, error) {
	b := &cacheBackend{checks: make(map[string]handler.Check)}

	switch cfg.Cache.Backend {
	case config.BackendFile:
		fsys := afero.NewOsFs()
		if err := fsys.MkdirAll(cfg.Cache.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		b.document = func(name string) repository.DocumentStore {
			return cache.NewFileDocument(fsys, filepath.Join(cfg.Cache.Dir, name+".json"))
		}
		b.checks["cache_dir"] = func(context.Context) error {
			_, err := fsys.Stat(cfg.Cache.Dir)
			return err
		}

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.document = func(name string) repository.DocumentStore {
			return cache.NewRedisDocument(client, name)
		}
		b.checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}

	case config.BackendPostgres:
		pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pgClient.Pool()); err != nil {
			pgClient.Close()
			return nil, err
		}
		b.closers = append(b.closers, pgClient.Close)
		b.document = func(name string) repository.DocumentStore {
			return postgres.NewDocumentRepository(pgClient.Pool(), name)
		}
		b.checks["postgres"] = pgClient.Ping

	case config.BackendMinIO:
		storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:     cfg.MinIO.Endpoint,
			AccessKey:    cfg.MinIO.AccessKey,
			SecretKey:    cfg.MinIO.SecretKey,
			Bucket:       cfg.MinIO.Bucket,
			Region:       cfg.MinIO.Region,
			UseSSL:       cfg.MinIO.UseSSL,
			CreateBucket: cfg.MinIO.CreateBucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		b.document = func(name string) repository.DocumentStore {
			return storage.NewObjectDocument(storageClient, name)
		}
		b.checks["minio"] = storageClient.Ping

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	return b, nil
}
