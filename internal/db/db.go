package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Document is one stored value.
type Document struct {
	ID        string `gorm:"primaryKey"`
	Body      []byte
	UpdatedAt time.Time
}

func (Document) TableName() string { return "documents" }

func InitDB(path string) (*gorm.DB, error) {
	DB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// Auto-migrate models
	if err := DB.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	// Backfill rows written before updated_at existed
	if err := DB.Model(&Document{}).
		Where("updated_at IS NULL").
		Update("updated_at", time.Now()).Error; err != nil {
		return nil, fmt.Errorf("failed to backfill documents.updated_at: %w", err)
	}
	return DB, nil
}

// SQLite stores values as rows of the documents table.
type SQLite struct {
	db *gorm.DB
}

func NewSQLite(db *gorm.DB) *SQLite { return &SQLite{db: db} }

func OpenSQLite(path string) (*SQLite, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, err
	}
	return NewSQLite(db), nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("id = ?", key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	doc := Document{ID: key, Body: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("id = ?", key).Delete(&Document{}).Error
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
