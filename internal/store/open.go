package store

import (
	"context"
	"fmt"

	"github.com/dkolesni-prog/recall/internal/config"
)

// Open builds the backend named by kind. Callers own Bootstrap and Close.
func Open(ctx context.Context, kind string, cfg *config.Config) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStorage(), nil
	case KindFile:
		return NewStorage(cfg.FileStoragePath), nil
	case KindPostgres:
		return NewRDB(ctx, cfg.DatabaseDSN)
	case KindSQLite:
		return NewSQLiteStorage(cfg.SQLitePath)
	case KindRedis:
		return NewRedisStorage(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
