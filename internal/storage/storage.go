// /internal/storage/storage.go
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// User is a guild member the bot keeps data on.
type User struct {
	ServerID  string  `gorm:"primaryKey"`
	UserID    string  `gorm:"primaryKey"`
	Name      string  `gorm:"index"`
	Pronouns  string
	Points    float64 `gorm:"not null;default:0"`
	PointRole string  `gorm:"index"`
}

// ServerVar holds per-guild settings.
type ServerVar struct {
	ServerID  string `gorm:"primaryKey"`
	PointName string
}

// ChannelPrompt is the AI configuration of one channel. Nil fields are unset.
type ChannelPrompt struct {
	ServerID  string `gorm:"primaryKey"`
	ChannelID string `gorm:"primaryKey"`
	Prompt    *string
	Context   *int
}

type Storage struct {
	db *gorm.DB
}

// New opens (or creates) the database at path and migrates the schema.
func New(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite handles one writer at a time.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}, &ServerVar{}, &ChannelPrompt{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
