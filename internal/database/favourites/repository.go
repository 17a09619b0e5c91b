// Package favourites provides database operations for favorite books.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	ids, err := repo.ListFavorites(ctx, userID)
package favourites

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/legalshelf/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFavorites returns the ids of the books userID marked, oldest first.
func (r *Repository) ListFavorites(ctx context.Context, userID string) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).Model(&entities.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Pluck("book_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

// AddFavorite marks bookID for userID. Adding twice is a no-op.
func (r *Repository) AddFavorite(ctx context.Context, userID string, bookID uint) error {
	fav := &entities.Favorite{UserID: userID, BookID: bookID}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		FirstOrCreate(fav).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks bookID for userID. Removing a missing row is a no-op.
func (r *Repository) RemoveFavorite(ctx context.Context, userID string, bookID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}
