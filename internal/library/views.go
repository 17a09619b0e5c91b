package library

import (
	"context"
	"strings"

	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/search"
)

// Filter selects a subset of the enriched catalog. Zero values disable a filter.
type Filter struct {
	Area       string
	SearchTerm string
}

// EnrichedBooks returns copies of the catalog with the favorite flag and the
// reading progress of userID applied.
func (s *Store) EnrichedBooks(ctx context.Context, userID string) ([]entities.Book, error) {
	books, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progressMap(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched := make([]entities.Book, len(books))
	for i, b := range books {
		_, b.Favorite = favorites[b.ID]
		if p, ok := progress[b.ID]; ok {
			b.Progress = p
		}
		enriched[i] = b
	}
	return enriched, nil
}

// FilteredBooks applies the area filter and, when a search term is given,
// keeps books whose title, area or synopsis fuzzy-matches it.
func (s *Store) FilteredBooks(ctx context.Context, userID string, f Filter) ([]entities.Book, error) {
	books, err := s.EnrichedBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	term := strings.TrimSpace(f.SearchTerm)
	filtered := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if f.Area != "" && b.Area != f.Area {
			continue
		}
		if term != "" &&
			!search.FuzzyMatch(term, b.Title, s.threshold) &&
			!search.FuzzyMatch(term, b.Area, s.threshold) &&
			!search.FuzzyMatch(term, b.About, s.threshold) {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered, nil
}

// FavoriteBooks returns the enriched books userID has favorited.
func (s *Store) FavoriteBooks(ctx context.Context, userID string) ([]entities.Book, error) {
	books, err := s.EnrichedBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]entities.Book, 0)
	for _, b := range books {
		if b.Favorite {
			favorites = append(favorites, b)
		}
	}
	return favorites, nil
}

// SearchBooks ranks the enriched catalog against query. A threshold <= 0
// uses the store's configured threshold.
func (s *Store) SearchBooks(ctx context.Context, userID, query string, threshold float64) ([]search.Result[entities.Book], error) {
	books, err := s.EnrichedBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = s.threshold
	}
	return search.RankedSearch(books, strings.TrimSpace(query), entities.Book.SearchText, threshold), nil
}

// Book returns a single enriched book.
func (s *Store) Book(ctx context.Context, userID string, bookID uint) (*entities.Book, bool, error) {
	books, err := s.EnrichedBooks(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	for i := range books {
		if books[i].ID == bookID {
			return &books[i], true, nil
		}
	}
	return nil, false, nil
}

// Areas lists the distinct subject areas in catalog order.
func (s *Store) Areas(ctx context.Context) ([]string, error) {
	books, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	areas := make([]string, 0)
	for _, b := range books {
		if b.Area == "" {
			continue
		}
		if _, ok := seen[b.Area]; ok {
			continue
		}
		seen[b.Area] = struct{}{}
		areas = append(areas, b.Area)
	}
	return areas, nil
}
