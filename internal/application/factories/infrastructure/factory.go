package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/order-ingest/internal/config"
	"github.com/example/order-ingest/internal/infrastructure/blob"
	"github.com/example/order-ingest/internal/infrastructure/postgres"
	"github.com/example/order-ingest/internal/infrastructure/redis"

	pgxpool "github.com/jackc/pgx/v5/pgxpool"
	go_redis "github.com/redis/go-redis/v9"
)

// Factory builds and caches the process-wide store clients. Each binary
// creates one factory and closes it on shutdown.
type Factory struct {
	cfg      *config.Config
	pgPool   *pgxpool.Pool
	redisCli *go_redis.Client
	blobCli  *blob.Client
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg: cfg,
	}
}

func (f *Factory) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if f.pgPool != nil {
		return f.pgPool, nil
	}

	var pool *pgxpool.Pool
	var err error

	// The document store may come up after us; retry before giving up.
	for i := 0; i < 5; i++ {
		pool, err = postgres.NewClient(ctx, postgres.Config{
			Host:     f.cfg.Postgres.Host,
			Port:     f.cfg.Postgres.Port,
			User:     f.cfg.Postgres.User,
			Password: f.cfg.Postgres.Password,
			DBName:   f.cfg.Postgres.DBName,
		})
		if err == nil {
			break
		}
		slog.Warn("postgres connect failed, retrying in 2s", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("init postgres after retries: %w", err)
	}

	f.pgPool = pool
	return pool, nil
}

func (f *Factory) Redis(ctx context.Context) (*go_redis.Client, error) {
	if f.redisCli != nil {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr: f.cfg.Redis.Addr,
	})
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

func (f *Factory) Blob() (*blob.Client, error) {
	if f.blobCli != nil {
		return f.blobCli, nil
	}

	client, err := blob.NewClient(blob.Config{
		Endpoint:  f.cfg.Blob.Endpoint,
		AccessKey: f.cfg.Blob.AccessKey,
		SecretKey: f.cfg.Blob.SecretKey,
		UseSSL:    f.cfg.Blob.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	f.blobCli = client
	return client, nil
}

func (f *Factory) Close() {
	if f.pgPool != nil {
		f.pgPool.Close()
	}
	if f.redisCli != nil {
		f.redisCli.Close()
	}
}
