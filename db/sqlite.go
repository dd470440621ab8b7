package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/gnawtree/models"
)

// Connect opens the transaction log database and runs migrations. dsn is
// either a file path (plain SQLite) or a libsql/Turso URL.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)

		token := os.Getenv("GNAWTREE_LIBSQL_AUTH_TOKEN")
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create libsql connector: %w", err)
		}

		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return gdb, nil
}

// isURL reports whether dsn names a remote libsql/Turso endpoint rather
// than a local file path.
func isURL(dsn string) bool {
	return len(dsn) > 7 && (dsn[:7] == "http://" || dsn[:8] == "https://" || dsn[:6] == "libsql")
}

// Migrate creates or updates the transaction log schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TransactionRecord{},
		&models.Session{},
	)
}
