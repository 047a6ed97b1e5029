package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseFile(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{":memory:", ""},
		{"file::memory:?cache=shared", ""},
		{"data/tracker.db", "data/tracker.db"},
		{"file:data/tracker.db?_busy_timeout=5000", "data/tracker.db"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseFile(tt.dsn))
		})
	}
}

func TestPragmas(t *testing.T) {
	cfg := Config{DSN: "data/tracker.db", JournalMode: "wal", BusyTimeout: 5 * time.Second}
	assert.Equal(t, []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}, cfg.pragmas())

	memory := Config{DSN: ":memory:", JournalMode: "wal"}
	assert.True(t, memory.InMemory())
	assert.Equal(t, []string{"PRAGMA foreign_keys = ON"}, memory.pragmas())
}

func TestNewDB_FileDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "tracker.db")

	db, err := NewDB(context.Background(), Config{DSN: dsn, JournalMode: "WAL", BusyTimeout: time.Second})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.FileExists(t, dsn)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 1000, timeout)
}

func TestNewDB_RequiresDSN(t *testing.T) {
	_, err := NewDB(context.Background(), Config{})
	assert.Error(t, err)
}
