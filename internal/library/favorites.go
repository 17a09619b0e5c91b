package library

import (
	"context"
	"fmt"
)

func (s *Store) favoriteSet(ctx context.Context, userID string) (map[uint]struct{}, error) {
	return load(ctx, s, s.favorites, userID,
		func(ctx context.Context) (map[uint]struct{}, error) {
			ids, err := s.favoriteStore.ListFavorites(ctx, userID)
			if err != nil {
				return nil, err
			}
			set := make(map[uint]struct{}, len(ids))
			for _, id := range ids {
				set[id] = struct{}{}
			}
			return set, nil
		},
		func() map[uint]struct{} { return map[uint]struct{}{} },
	)
}

// IsFavorite reports whether bookID is in the favorite set of userID.
func (s *Store) IsFavorite(ctx context.Context, userID string, bookID uint) (bool, error) {
	set, err := s.favoriteSet(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := set[bookID]
	return ok, nil
}

// toggleState follows a burst of overlapping toggles of one book.
type toggleState struct {
	seq       uint64 // number of the latest toggle
	pending   int
	base      bool // membership before the burst
	confirmed bool // some toggle of the burst was persisted
}

// ToggleFavorite flips bookID in the favorite set of userID and returns the
// new membership.
//
// The local set changes before the favorite store is called. If persistence
// fails the latest toggle restores the membership it observed, an older one
// marks the set stale, and the failure is reported both to the notifier and
// to the caller. Once every toggle of a burst has failed the book is back to
// its membership before the burst.
func (s *Store) ToggleFavorite(ctx context.Context, userID string, bookID uint) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if _, err := s.favoriteSet(ctx, userID); err != nil {
		return false, err
	}

	key := favoriteKey{user: userID, book: bookID}

	s.mu.Lock()
	e := s.favorites.get(userID)
	_, was := e.value[bookID]
	e.value = withMembership(e.value, bookID, !was)
	e.loaded = true
	e.pending++
	e.gen++
	st, ok := s.toggles[key]
	if !ok {
		st = &toggleState{base: was}
		s.toggles[key] = st
	}
	st.seq++
	st.pending++
	seq := st.seq
	s.mu.Unlock()

	var err error
	if was {
		err = s.favoriteStore.RemoveFavorite(ctx, userID, bookID)
	} else {
		err = s.favoriteStore.AddFavorite(ctx, userID, bookID)
	}

	s.mu.Lock()
	e = s.favorites.get(userID)
	e.pending--
	st.pending--
	switch {
	case err == nil:
		st.confirmed = true
		e.stale = true
		e.gen++
	case st.seq == seq:
		e.value = withMembership(e.value, bookID, was)
	default:
		e.stale = true
		e.gen++
	}
	if st.pending == 0 {
		if !st.confirmed {
			e.value = withMembership(e.value, bookID, st.base)
		}
		if s.toggles[key] == st {
			delete(s.toggles, key)
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.notify(userID, Notification{
			Operation: OperationToggleFavorite,
			BookID:    bookID,
			Message:   "Could not update favorites, please try again",
		})
		return was, fmt.Errorf("toggle favorite %d: %w", bookID, err)
	}

	s.log.Debug().Str("user_id", userID).Uint("book_id", bookID).Bool("favorite", !was).Msg("Favorite toggled")
	return !was, nil
}

// withMembership returns a copy of set with id present or absent.
func withMembership(set map[uint]struct{}, id uint, present bool) map[uint]struct{} {
	next := make(map[uint]struct{}, len(set)+1)
	for k := range set {
		next[k] = struct{}{}
	}
	if present {
		next[id] = struct{}{}
	} else {
		delete(next, id)
	}
	return next
}

func (s *Store) notify(userID string, n Notification) {
	if s.notifier != nil {
		s.notifier.Notify(userID, n)
	}
}
