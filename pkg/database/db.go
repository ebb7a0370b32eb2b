package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotExist is returned by OpenReadOnly when the store file is absent.
var ErrNotExist = errors.New("metadata store does not exist")

type Config struct {
	Path string
}

func DefaultConfig() Config {
	if p := os.Getenv("ARTSHOP_DB_PATH"); p != "" {
		return Config{Path: p}
	}
	return Config{Path: "artshop.db"}
}

// Exists reports whether the store file is present as a regular file.
func (c Config) Exists() bool {
	fi, err := os.Stat(c.Path)
	return err == nil && fi.Mode().IsRegular()
}

func EnsureDataDir(cfg Config) error {
	dir := filepath.Dir(cfg.Path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Open opens the store for writing, creating it if needed. Only the
// seeding tools use this; the gallery pipeline goes through OpenReadOnly.
func Open(cfg Config) (*sql.DB, error) {
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	// rollback journal, not WAL: the server reopens this file read-only
	db, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// OpenReadOnly opens an existing store without ever creating it.
func OpenReadOnly(cfg Config) (*sql.DB, error) {
	if !cfg.Exists() {
		return nil, fmt.Errorf("%s: %w", cfg.Path, ErrNotExist)
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
