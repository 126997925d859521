package sqlite

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"medreminder/internal/domain/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the SQLite database at dsn and migrates the schema.
// In-memory databases are pinned to a single connection so every query sees
// the same data.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "medreminder.db"
		log.Println("⚠️ WARN: BLUEPRINT_DB_URL environment variable not set, defaulting to 'medreminder.db'")
	}

	// Configure GORM logger
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to connect to database: %w", err)
	}

	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("🔴 ERROR: failed to get underlying *sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate automatically migrates the database schema for the defined entities.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.KeyValue{}); err != nil {
		return fmt.Errorf("🔴 ERROR: schema migration failed: %w", err)
	}
	return nil
}

// CloseDB closes the database connection if it's open.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("🔴 ERROR: failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Close()
}
