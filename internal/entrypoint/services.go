package entrypoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrlokans/legalshelf/internal/catalog"
	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/database"
	"github.com/mrlokans/legalshelf/internal/database/favourites"
	"github.com/mrlokans/legalshelf/internal/database/notes"
	"github.com/mrlokans/legalshelf/internal/library"
)

// Services are the long-lived components shared by the server and the CLI
// commands. Build them with NewServices and release them with Close.
type Services struct {
	DB    *database.Database
	Store *library.Store
	Inbox *library.Inbox
}

// NewServices opens the database and builds the library store on top of it,
// with the bundled sample catalog as fallback.
func NewServices(cfg *config.Config, log zerolog.Logger) (*Services, error) {
	sample, err := catalog.Sample()
	if err != nil {
		return nil, fmt.Errorf("failed to load sample catalog: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	inbox := library.NewInbox(cfg.Library.InboxSize, log)

	store, err := library.NewStore(library.Options{
		Catalog:   db,
		Favorites: favourites.NewRepository(db.DB),
		Notes:     notes.NewRepository(db.DB),
		Progress:  db,
		Notifier:  inbox,
		Fallback:  sample,
		Retry: library.RetryPolicy{
			Retries:      cfg.Library.FetchRetries,
			InitialDelay: cfg.Library.RetryDelay,
			MaxDelay:     cfg.Library.MaxRetryDelay,
		},
		SearchThreshold: cfg.Library.SearchThreshold,
		Logger:          log.With().Str("component", "library").Logger(),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create library store: %w", err)
	}

	return &Services{DB: db, Store: store, Inbox: inbox}, nil
}

// Seed writes the sample catalog into the database and reloads the store
// when anything new was written. Existing titles are left untouched.
func (s *Services) Seed(ctx context.Context) (created, total int, err error) {
	books, err := catalog.Sample()
	if err != nil {
		return 0, 0, err
	}
	created, err = s.DB.SaveBooks(ctx, books)
	if err != nil {
		return 0, len(books), err
	}
	if created > 0 {
		if _, err := s.Store.RefetchBooks(ctx); err != nil {
			return created, len(books), err
		}
	}
	return created, len(books), nil
}

// Close tears down the store before the database it reads from.
func (s *Services) Close() error {
	return errors.Join(s.Store.Close(), s.DB.Close())
}
