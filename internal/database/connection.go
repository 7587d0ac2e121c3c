package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/actionsum/meetnotes/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "meetnotes.db"
	defaultDBDir  = ".config/meetnotes"

	// memoryPath keeps the history in process memory, mostly for tests
	memoryPath = ":memory:"
)

// schema lists every table the dispatch history owns, in migration order
var schema = []any{
	&models.MeetingSession{},
	&models.DispatchEvent{},
	&models.ErrorLog{},
}

// DB is the dispatch history store. It embeds *gorm.DB so the repository can
// build queries directly on it.
type DB struct {
	*gorm.DB
}

// GetDefaultDBPath returns ~/.config/meetnotes/meetnotes.db for the current user.
func GetDefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve history location: %w", err)
	}
	return filepath.Join(homeDir, defaultDBDir, defaultDBName), nil
}

// resolvePath turns the configured database.path into a file sqlite can open
// and makes sure its parent directory exists.
func resolvePath(dbPath string) (string, error) {
	if dbPath == memoryPath {
		return dbPath, nil
	}
	if dbPath == "" {
		p, err := GetDefaultDBPath()
		if err != nil {
			return "", err
		}
		dbPath = p
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory %s: %w", filepath.Dir(dbPath), err)
	}
	return dbPath, nil
}

// Connect opens the history database at dbPath. An empty path falls back to
// GetDefaultDBPath. gorm's own query logging is silenced; failures surface as
// errors through the repository instead.
func Connect(dbPath string) (*DB, error) {
	path, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	return &DB{conn}, nil
}

// Initialize creates or updates the session, dispatch and error tables.
// It is safe to run on every start.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(schema...); err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// Close releases the sqlite connection pool
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to reach history connection pool: %w", err)
	}
	return sqlDB.Close()
}
