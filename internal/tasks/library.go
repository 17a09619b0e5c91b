package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"

	"github.com/mrlokans/legalshelf/internal/entities"
)

const (
	QueueRefreshLibrary     = "refresh_library"
	QueueCleanupOrphanNotes = "cleanup_orphan_notes"
	QueueSeedCatalog        = "seed_catalog"
)

// LibraryRefresher drops the cached catalog and loads it again.
type LibraryRefresher interface {
	RefetchBooks(ctx context.Context) ([]entities.Book, error)
}

// OrphanNotesCleaner deletes notes whose book left the catalog.
type OrphanNotesCleaner interface {
	DeleteOrphanNotes(ctx context.Context) (int64, error)
}

// CatalogSeeder writes catalog records, returning how many were new.
type CatalogSeeder interface {
	SaveBooks(ctx context.Context, books []entities.Book) (int, error)
}

// RefreshLibraryTask reloads the catalog into the library store.
type RefreshLibraryTask struct{}

func (t RefreshLibraryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueRefreshLibrary,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RefreshLibraryProcessor(lib LibraryRefresher, log zerolog.Logger) backlite.QueueProcessor[RefreshLibraryTask] {
	return func(ctx context.Context, task RefreshLibraryTask) error {
		if lib == nil {
			return fmt.Errorf("library not configured")
		}
		books, err := lib.RefetchBooks(ctx)
		if err != nil {
			return fmt.Errorf("refresh library: %w", err)
		}
		log.Info().Int("books", len(books)).Msg("Library refreshed")
		return nil
	}
}

func NewRefreshLibraryQueue(lib LibraryRefresher, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(RefreshLibraryProcessor(lib, log))
}

// CleanupOrphanNotesTask removes notes pointing at books that no longer exist.
type CleanupOrphanNotesTask struct{}

func (t CleanupOrphanNotesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueCleanupOrphanNotes,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupOrphanNotesProcessor(cleaner OrphanNotesCleaner, log zerolog.Logger) backlite.QueueProcessor[CleanupOrphanNotesTask] {
	return func(ctx context.Context, task CleanupOrphanNotesTask) error {
		if cleaner == nil {
			return fmt.Errorf("orphan notes cleaner not configured")
		}
		deleted, err := cleaner.DeleteOrphanNotes(ctx)
		if err != nil {
			return fmt.Errorf("cleanup orphan notes: %w", err)
		}
		log.Info().Int64("deleted", deleted).Msg("Cleaned up orphan notes")
		return nil
	}
}

func NewCleanupOrphanNotesQueue(cleaner OrphanNotesCleaner, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanNotesProcessor(cleaner, log))
}

// SeedCatalogTask writes a dataset into the catalog store and refreshes the library.
type SeedCatalogTask struct{}

func (t SeedCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueSeedCatalog,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
	}
}

// SeedCatalogProcessor seeds the books returned by source. lib may be nil.
func SeedCatalogProcessor(seeder CatalogSeeder, source func() ([]entities.Book, error), lib LibraryRefresher, log zerolog.Logger) backlite.QueueProcessor[SeedCatalogTask] {
	return func(ctx context.Context, task SeedCatalogTask) error {
		if seeder == nil || source == nil {
			return fmt.Errorf("catalog seeder not configured")
		}
		books, err := source()
		if err != nil {
			return fmt.Errorf("load seed catalog: %w", err)
		}
		created, err := seeder.SaveBooks(ctx, books)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info().Int("created", created).Int("total", len(books)).Msg("Catalog seeded")

		if lib != nil && created > 0 {
			if _, err := lib.RefetchBooks(ctx); err != nil {
				return fmt.Errorf("refresh after seed: %w", err)
			}
		}
		return nil
	}
}

func NewSeedCatalogQueue(seeder CatalogSeeder, source func() ([]entities.Book, error), lib LibraryRefresher, log zerolog.Logger) backlite.Queue {
	return backlite.NewQueue(SeedCatalogProcessor(seeder, source, lib, log))
}

// TaskType describes a task that can be triggered by hand.
type TaskType struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Queue       string        `json:"queue"`
	Task        backlite.Task `json:"-"`
}

// TaskTypes lists the manually runnable tasks.
func TaskTypes() []TaskType {
	return []TaskType{
		{
			Type:        QueueRefreshLibrary,
			Description: "Reload the catalog into the library",
			Queue:       QueueRefreshLibrary,
			Task:        RefreshLibraryTask{},
		},
		{
			Type:        QueueCleanupOrphanNotes,
			Description: "Delete notes whose book is no longer in the catalog",
			Queue:       QueueCleanupOrphanNotes,
			Task:        CleanupOrphanNotesTask{},
		},
		{
			Type:        QueueSeedCatalog,
			Description: "Write the bundled sample catalog into the database",
			Queue:       QueueSeedCatalog,
			Task:        SeedCatalogTask{},
		},
	}
}

// LookupTaskType returns the runnable task registered under name.
func LookupTaskType(name string) (TaskType, bool) {
	for _, tt := range TaskTypes() {
		if tt.Type == name {
			return tt, true
		}
	}
	return TaskType{}, false
}
