package postgres

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite opens an embedded database with the same schema rules as
// Postgres. It backs local development and the test suites. SQLite has no row
// locks, so the pool is limited to one connection and transactions serialize.
func OpenSQLite(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
