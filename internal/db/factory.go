package db

import (
	"context"
	"fmt"

	"go-portmap/internal/config"

	"github.com/go-redis/redis/v8"
)

// Open selects a KV backend from the storage configuration.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(client), nil
	case "s3":
		return OpenS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.S3Prefix,
		})
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
