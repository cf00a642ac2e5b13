package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreText   = "text"
	StoreSQLite = "sqlite"
)

type Config struct {
	BooksFile         string
	BackupFile        string
	Capacity          int
	Store             string
	DBPath            string
	LogLevel          slog.Level
	LogFile           string
	AdminPasswordHash string
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BooksFile:         getEnv("CATALOG_FILE", "books.txt"),
		BackupFile:        getEnv("CATALOG_BACKUP_FILE", "books_backup.txt"),
		Store:             strings.ToLower(getEnv("CATALOG_STORE", StoreText)),
		DBPath:            getEnv("CATALOG_DB", "catalog.db"),
		LogFile:           os.Getenv("LOG_FILE"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}

	capacity, err := strconv.Atoi(getEnv("CATALOG_CAPACITY", "100"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CATALOG_CAPACITY: %w", err)
	}
	cfg.Capacity = capacity

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "warn"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags may have overridden after Load.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	switch c.Store {
	case StoreText, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %q or %q)", c.Store, StoreText, StoreSQLite)
	}
	if strings.TrimSpace(c.BooksFile) == "" || strings.TrimSpace(c.BackupFile) == "" {
		return fmt.Errorf("catalog and backup file names must not be empty")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
