package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go driver registered as "sqlite"
)

// SQLiteDB is a local file database used when no hosted store is configured
type SQLiteDB struct {
	DB  *gorm.DB
	sql *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database file at path
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
		Conn:       sqlDB,
	}, &gorm.Config{
		// Never log SQL; statements carry customer contact details.
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &SQLiteDB{DB: db, sql: sqlDB}, nil
}

// Close closes the underlying connection
func (db *SQLiteDB) Close() error {
	return db.sql.Close()
}

// Health pings the database
func (db *SQLiteDB) Health(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}
