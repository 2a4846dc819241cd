// internal/store/store.go
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend names accepted by configuration.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
	KindRedis    = "redis"
)

// Store is a string key/value store. The sync-scoped server URL and the
// local-scoped per-page tag cache both live behind it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Bootstrap(ctx context.Context) error
}
