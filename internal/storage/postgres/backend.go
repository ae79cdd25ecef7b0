// Package postgres provides a PostgreSQL document backend built on gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/aicardgame-go/internal/storage/document"
)

// Document is one stored JSON document
type Document struct {
	Key       string `gorm:"primaryKey"`
	Kind      string `gorm:"index;not null"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name
func (Document) TableName() string {
	return "documents"
}

// Backend persists documents through gorm
type Backend struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the documents table
func Open(dsn string) (*Backend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing gorm handle and migrates the schema
func NewWithDB(db *gorm.DB) (*Backend, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &Backend{db: db}, nil
}

// OpenStore opens a backend and wraps it as a storage.Storage
func OpenStore(dsn string) (*document.Store, error) {
	backend, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return document.New(backend), nil
}

var _ document.Backend = (*Backend)(nil)

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var doc Document
	err := b.db.WithContext(ctx).Where("key = ?", key).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (b *Backend) Put(ctx context.Context, kind, key string, value []byte) error {
	doc := Document{Key: key, Kind: kind, Value: value, UpdatedAt: time.Now().UTC()}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "value", "updated_at"}),
	}).Create(&doc).Error
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where("key = ?", key).Delete(&Document{}).Error
}

func (b *Backend) List(ctx context.Context, kind string) ([][]byte, error) {
	var docs []Document
	if err := b.db.WithContext(ctx).Where("kind = ?", kind).Order("key").Find(&docs).Error; err != nil {
		return nil, err
	}
	out := make([][]byte, len(docs))
	for i, doc := range docs {
		out[i] = doc.Value
	}
	return out, nil
}

// Close closes the underlying connection pool
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
