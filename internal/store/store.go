// Package store persists texts, their witnesses and annotations with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when the requested text does not exist.
var ErrNotFound = errors.New("not found")

// Text is a work that has one or more witnesses.
type Text struct {
	ID        uint64    `gorm:"primaryKey" json:"id" yaml:"-"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`

	Witnesses []Witness `json:"-" yaml:"witnesses"`
}

// Witness is one source version of a text.
type Witness struct {
	ID      uint64 `gorm:"primaryKey" json:"id" yaml:"-"`
	TextID  uint64 `gorm:"not null;index" json:"text_id" yaml:"-"`
	Name    string `gorm:"not null" json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
	IsBase  bool   `gorm:"not null;default:false" json:"is_base" yaml:"base"`

	Annotations []Annotation `json:"-" yaml:"annotations"`
}

// Annotation marks a span of a witness's content.
type Annotation struct {
	ID        uint64 `gorm:"primaryKey" json:"id" yaml:"-"`
	WitnessID uint64 `gorm:"not null;index" json:"witness_id" yaml:"-"`
	Start     int    `gorm:"not null" json:"start" yaml:"start"`
	Length    int    `gorm:"not null" json:"length" yaml:"length"`
	Content   string `json:"content" yaml:"content"`
	Type      string `gorm:"not null;index" json:"type" yaml:"type"`
}

// Store reads and writes the models.
type Store struct {
	db *gorm.DB
}

// Open connects to the database. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite has a single writer; in-memory databases also exist per connection
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Text{}, &Witness{}, &Annotation{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) ListTexts(ctx context.Context) ([]Text, error) {
	var texts []Text
	if err := s.db.WithContext(ctx).Order("id").Find(&texts).Error; err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	return texts, nil
}

func (s *Store) GetText(ctx context.Context, id uint64) (*Text, error) {
	var text Text
	err := s.db.WithContext(ctx).First(&text, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("text %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get text %d: %w", id, err)
	}
	return &text, nil
}

// ListWitnesses returns the witnesses of text textID, or ErrNotFound if the text does not exist.
func (s *Store) ListWitnesses(ctx context.Context, textID uint64) ([]Witness, error) {
	if err := s.textExists(ctx, textID); err != nil {
		return nil, err
	}
	var witnesses []Witness
	err := s.db.WithContext(ctx).Where("text_id = ?", textID).Order("id").Find(&witnesses).Error
	if err != nil {
		return nil, fmt.Errorf("list witnesses of text %d: %w", textID, err)
	}
	return witnesses, nil
}

// ListAnnotations returns the annotations on all witnesses of text textID, ordered by
// witness and start offset.
func (s *Store) ListAnnotations(ctx context.Context, textID uint64) ([]Annotation, error) {
	if err := s.textExists(ctx, textID); err != nil {
		return nil, err
	}
	var annotations []Annotation
	err := s.db.WithContext(ctx).
		Joins("JOIN witnesses ON witnesses.id = annotations.witness_id").
		Where("witnesses.text_id = ?", textID).
		Order("annotations.witness_id, annotations.start, annotations.id").
		Find(&annotations).Error
	if err != nil {
		return nil, fmt.Errorf("list annotations of text %d: %w", textID, err)
	}
	return annotations, nil
}

// Import creates texts together with their witnesses and annotations in one transaction.
func (s *Store) Import(ctx context.Context, texts []Text) error {
	if len(texts) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&texts).Error
	})
	if err != nil {
		return fmt.Errorf("import %d texts: %w", len(texts), err)
	}
	return nil
}

func (s *Store) textExists(ctx context.Context, id uint64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Text{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("get text %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("text %d: %w", id, ErrNotFound)
	}
	return nil
}
