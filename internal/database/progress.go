package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/legalshelf/internal/entities"
)

// ListProgress returns the reading percentage of every book userID touched.
func (d *Database) ListProgress(ctx context.Context, userID string) (map[uint]int, error) {
	var rows []entities.ReadingProgress
	if err := d.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make(map[uint]int, len(rows))
	for _, r := range rows {
		out[r.BookID] = r.Percent
	}
	return out, nil
}

func (d *Database) SaveProgress(ctx context.Context, userID string, bookID uint, percent int) error {
	row := &entities.ReadingProgress{UserID: userID, BookID: bookID, Percent: percent}
	result := d.DB.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Assign(map[string]interface{}{
			"percent":    percent,
			"updated_at": time.Now(),
		}).
		FirstOrCreate(row)
	if result.Error != nil {
		return fmt.Errorf("failed to save progress: %w", result.Error)
	}
	return nil
}
