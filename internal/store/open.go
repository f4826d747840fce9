package store

import (
	"context"
	"fmt"
	"strings"

	"successplan/internal/config"
	"successplan/internal/store/core"
	"successplan/internal/store/memory"
	"successplan/internal/store/postgres"
	"successplan/internal/store/redis"
	"successplan/internal/store/s3"
	"successplan/internal/store/sqlite"
)

// Open selects a Backend from the storage config. An empty driver means
// sqlite in the workspace.
func Open(ctx context.Context, cfg config.Storage) (Backend, error) {
	driver := core.Driver(strings.ToLower(cfg.Driver))
	if driver == "" {
		driver = core.DriverSQLite
	}
	switch driver {
	case core.DriverSQLite:
		return sqlite.Open(ctx, cfg.Workspace)
	case core.DriverPostgres:
		return postgres.Open(ctx, cfg.Postgres.DSN)
	case core.DriverRedis:
		return redis.Open(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
