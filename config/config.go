package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultMaxUploadBytes  = 10 << 20
	defaultMaxRequestBytes = 64 << 20
)

type Config struct {
	Port            string
	DBPath          string
	TiersFile       string
	StaticDir       string
	ImportDir       string
	LogLevel        string
	ResetMode       string
	MaxUploadBytes  int64
	// MaxRequestBytes caps a whole multipart upload request.
	MaxRequestBytes int64
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:            getenv("PORT", "8000"),
		DBPath:          os.Getenv("DB_PATH"),
		TiersFile:       os.Getenv("TIERS_FILE"),
		StaticDir:       os.Getenv("STATIC_DIR"),
		ImportDir:       os.Getenv("IMPORT_DIR"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ResetMode:       getenv("RESET_MODE", "unrank"),
		MaxUploadBytes:  defaultMaxUploadBytes,
		MaxRequestBytes: defaultMaxRequestBytes,
	}

	var err error
	if cfg.MaxUploadBytes, err = getBytes("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	if cfg.MaxRequestBytes, err = getBytes("MAX_REQUEST_BYTES", cfg.MaxRequestBytes); err != nil {
		return nil, err
	}
	if cfg.MaxRequestBytes < cfg.MaxUploadBytes {
		return nil, fmt.Errorf("MAX_REQUEST_BYTES (%d) is below MAX_UPLOAD_BYTES (%d)", cfg.MaxRequestBytes, cfg.MaxUploadBytes)
	}

	return cfg, nil
}

func getBytes(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
