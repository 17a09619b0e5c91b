// Package database provides the sqlite-backed data access layer.
//
// The Database type owns the connection, the migrations and the catalog
// tables. Per-user relations live in sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, catalog
//	├── progress.go      # Reading progress per user
//	├── favourites/      # Favorite books per user
//	└── notes/           # Notes per user and book
//
// Each sub-package exposes a Repository built on the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./legalshelf.db")
//	favs := favourites.NewRepository(db.DB)
//	notes := notes.NewRepository(db.DB)
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/legalshelf/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Favorite{},
		&entities.Note{},
		&entities.ReadingProgress{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Database initialized")

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection still answers.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ListBooks returns the whole catalog in id order.
func (d *Database) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.WithContext(ctx).Order("id ASC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

func (d *Database) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := d.DB.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// SaveBooks upserts catalog records keyed by title and returns how many were
// newly created. Existing rows keep their id so favorites and notes stay valid.
func (d *Database) SaveBooks(ctx context.Context, books []entities.Book) (int, error) {
	created := 0
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range books {
			book := books[i]
			book.ApplyDefaults()

			var existing entities.Book
			result := tx.Where("title = ?", book.Title).First(&existing)
			switch {
			case errors.Is(result.Error, gorm.ErrRecordNotFound):
				book.ID = 0
				if err := tx.Create(&book).Error; err != nil {
					return fmt.Errorf("failed to create book %q: %w", book.Title, err)
				}
				created++
			case result.Error != nil:
				return result.Error
			default:
				err := tx.Model(&existing).Updates(map[string]interface{}{
					"area":          book.Area,
					"link":          book.Link,
					"image":         book.Image,
					"about":         book.About,
					"download_link": book.DownloadLink,
					"progress":      book.Progress,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to update book %q: %w", book.Title, err)
				}
			}
		}
		return nil
	})
	return created, err
}

// DeleteOrphanNotes removes notes whose book is no longer in the catalog.
func (d *Database) DeleteOrphanNotes(ctx context.Context) (int64, error) {
	result := d.DB.WithContext(ctx).
		Where("book_id NOT IN (?)", d.DB.Model(&entities.Book{}).Select("id")).
		Delete(&entities.Note{})
	return result.RowsAffected, result.Error
}
