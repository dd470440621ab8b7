package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectMemory(t *testing.T) {
	gdb, err := Connect(":memory:", false)
	require.NoError(t, err)
	require.NotNil(t, gdb)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	defer sqlDB.Close()

	var fkEnabled int
	require.NoError(t, gdb.Raw("PRAGMA foreign_keys").Scan(&fkEnabled).Error)
	assert.Equal(t, 1, fkEnabled)

	for _, table := range []string{"transaction_records", "sessions"} {
		assert.True(t, gdb.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestConnectFileCreatesNestedDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "path", "test.db")
	gdb, err := Connect(dsn, false)
	require.NoError(t, err)
	require.NotNil(t, gdb)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, statErr := os.Stat(dsn)
	assert.NoError(t, statErr)
}

func TestConnectURLWithoutCredentialsFails(t *testing.T) {
	_, err := Connect("libsql://127.0.0.1:19999", false)
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"http://example.com":     true,
		"https://example.com":    true,
		"libsql://test.turso.io": true,
		"/tmp/test.db":           false,
		":memory:":               false,
	}
	for dsn, want := range cases {
		assert.Equal(t, want, isURL(dsn), dsn)
	}
}
