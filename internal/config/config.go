// Internal/config/config.go.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	RunAddr         string
	ServerURL       string
	SyncStore       string
	LocalStore      string
	FileStoragePath string
	SQLitePath      string
	DatabaseDSN     string
	RedisURL        string
	LogLevel        string
	HTTPTimeout     time.Duration
}

// DataDir is where file-backed stores live unless told otherwise.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".recall")
}

func Default() *Config {
	return &Config{
		RunAddr:         "127.0.0.1:8765",
		SyncStore:       "file",
		LocalStore:      "file",
		FileStoragePath: filepath.Join(DataDir(), "settings.jsonl"),
		SQLitePath:      filepath.Join(DataDir(), "tags.db"),
		LogLevel:        "warn",
		HTTPTimeout:     30 * time.Second,
	}
}

// BindFlags registers the configuration flags; defaults come from the current values of cfg.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "recall server URL for this run, overriding the stored setting")
	fs.StringVar(&cfg.SyncStore, "store", cfg.SyncStore, "settings store: memory, file, postgres or redis")
	fs.StringVar(&cfg.LocalStore, "tag-store", cfg.LocalStore, "tag cache store: memory, file or sqlite")
	fs.StringVarP(&cfg.FileStoragePath, "file", "f", cfg.FileStoragePath, "path to the settings file")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "path to the sqlite tag cache")
	fs.StringVarP(&cfg.DatabaseDSN, "dsn", "d", cfg.DatabaseDSN, "postgres connection string")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "redis URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "timeout for requests to the recall server")
}

// ApplyEnv overrides flag values with environment variables that are set.
func (cfg *Config) ApplyEnv() error {
	if envRunAddr, ok := os.LookupEnv("SERVER_ADDRESS"); ok {
		cfg.RunAddr = envRunAddr
	}
	if envServer, ok := os.LookupEnv("RECALL_SERVER"); ok {
		cfg.ServerURL = envServer
	}
	if envStore, ok := os.LookupEnv("STORE_KIND"); ok {
		cfg.SyncStore = envStore
	}
	if envTagStore, ok := os.LookupEnv("TAG_STORE_KIND"); ok {
		cfg.LocalStore = envTagStore
	}
	if envFilePath, ok := os.LookupEnv("FILE_STORAGE_PATH"); ok {
		cfg.FileStoragePath = envFilePath
	}
	if envSQLitePath, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.SQLitePath = envSQLitePath
	}
	if envDatabaseDSN, ok := os.LookupEnv("DATABASE_DSN"); ok {
		cfg.DatabaseDSN = envDatabaseDSN
	}
	if envRedisURL, ok := os.LookupEnv("REDIS_URL"); ok {
		cfg.RedisURL = envRedisURL
	}
	if envLevel, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = envLevel
	}
	if envTimeout, ok := os.LookupEnv("HTTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(envTimeout)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

// Validate checks that the chosen backends have what they need.
func (cfg *Config) Validate() error {
	switch cfg.SyncStore {
	case "memory", "file":
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("store %q needs a DSN", cfg.SyncStore)
		}
	case "redis":
		if cfg.RedisURL == "" {
			return fmt.Errorf("store %q needs a redis URL", cfg.SyncStore)
		}
	default:
		return fmt.Errorf("unknown settings store %q", cfg.SyncStore)
	}

	switch cfg.LocalStore {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("unknown tag store %q", cfg.LocalStore)
	}

	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	return nil
}
