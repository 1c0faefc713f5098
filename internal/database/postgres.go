// Package database wires the service's storage backends: the relational
// store for submissions, redis for the report cache, and NATS for
// completion events.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the submission store. A postgres DSN takes precedence; when
// it is empty the service falls back to a local sqlite file so it can run
// with zero infrastructure.
func Connect(postgresDSN, sqlitePath string) (*gorm.DB, error) {
	if postgresDSN != "" {
		return ConnectPostgres(postgresDSN)
	}
	return ConnectSQLite(sqlitePath)
}

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens (creating if needed) a sqlite database at path.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "judge.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return db, nil
}
