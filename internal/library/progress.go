package library

import (
	"context"
	"fmt"
)

func (s *Store) progressMap(ctx context.Context, userID string) (map[uint]int, error) {
	if s.progressStore == nil {
		return map[uint]int{}, nil
	}
	return load(ctx, s, s.progress, userID,
		func(ctx context.Context) (map[uint]int, error) {
			return s.progressStore.ListProgress(ctx, userID)
		},
		func() map[uint]int { return map[uint]int{} },
	)
}

// UpdateProgress records how far userID has read bookID.
func (s *Store) UpdateProgress(ctx context.Context, userID string, bookID uint, percent int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if percent < 0 || percent > 100 {
		return ErrInvalidProgress
	}
	if s.progressStore == nil {
		return fmt.Errorf("progress store not configured")
	}

	if err := s.progressStore.SaveProgress(ctx, userID, bookID, percent); err != nil {
		s.notify(userID, Notification{
			Operation: OperationUpdateProgress,
			BookID:    bookID,
			Message:   "Could not save reading progress",
		})
		return fmt.Errorf("save progress of book %d: %w", bookID, err)
	}

	s.Invalidate(KindProgress, userID)
	return nil
}
