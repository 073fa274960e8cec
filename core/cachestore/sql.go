package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is the row holding one serialized cache.
type Document struct {
	Name      string `gorm:"primaryKey;size:191"`
	Payload   string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

// TableName overrides the GORM default.
func (Document) TableName() string {
	return "sku_cache_documents"
}

// SQLStore keeps the document in a single table row.
type SQLStore struct {
	db   *gorm.DB
	name string
}

// NewSQLStore returns a store for the row named name.
func NewSQLStore(db *gorm.DB, name string) *SQLStore {
	return &SQLStore{db: db, name: name}
}

// Migrate creates the documents table if needed.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Document{})
}

func (s *SQLStore) Location() string {
	return "sql:" + Document{}.TableName() + "/" + s.name
}

func (s *SQLStore) Load(ctx context.Context) (map[string]models.Match, error) {
	var doc Document
	err := s.db.WithContext(ctx).Where("name = ?", s.name).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]models.Match{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cache row: %w", err)
	}
	return Decode([]byte(doc.Payload))
}

func (s *SQLStore) Save(ctx context.Context, entries map[string]models.Match) error {
	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	doc := Document{Name: s.name, Payload: string(data), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to save cache row: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("name = ?", s.name).Delete(&Document{}).Error; err != nil {
		return fmt.Errorf("failed to delete cache row: %w", err)
	}
	return nil
}
