package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang-stock-tracker/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the settings for an embedded sqlite database.
type Config struct {
	DSN         string
	JournalMode string
	BusyTimeout time.Duration
	LogLevel    string
}

// InMemory reports whether the DSN names a private in-memory database.
func (c Config) InMemory() bool {
	return databaseFile(c.DSN) == ""
}

// NewDB opens the database, applies the connection pragmas and pings it.
// Writes go through a single connection, so ":memory:" is shared by every query.
func NewDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite dsn required")
	}

	if path := databaseFile(cfg.DSN); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logger.GormLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, pragma := range cfg.pragmas() {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

func (c Config) pragmas() []string {
	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if c.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeout.Milliseconds()))
	}
	// in-memory databases only support the memory journal
	if c.JournalMode != "" && !c.InMemory() {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", strings.ToUpper(c.JournalMode)))
	}
	return pragmas
}

// databaseFile extracts the file path from a DSN, or "" for in-memory databases.
func databaseFile(dsn string) string {
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "file:"), "//")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == ":memory:" {
		return ""
	}
	return path
}
