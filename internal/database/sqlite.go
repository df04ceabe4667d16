package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a file-backed SQLite database for local runs without PostgreSQL.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}

// Connect picks PostgreSQL when a DSN is configured and falls back to SQLite otherwise.
func Connect(dsn, sqlitePath string) (*gorm.DB, string, error) {
	if dsn != "" {
		db, err := ConnectPostgres(dsn)
		return db, "postgres", err
	}
	db, err := ConnectSQLite(sqlitePath)
	return db, "sqlite", err
}
