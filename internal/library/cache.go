package library

import (
	"context"
	"fmt"
)

// Kind identifies a per-user collection held by the store.
type Kind string

const (
	KindFavorites Kind = "favorites"
	KindNotes     Kind = "notes"
	KindProgress  Kind = "progress"
)

type cacheKey struct {
	kind Kind
	user string
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s:%s", k.kind, k.user)
}

// entry holds one cached collection. Values are replaced wholesale and never
// mutated in place, so a value read under the lock stays valid after it.
//
// gen moves on every invalidation and every optimistic write; a fetch only
// lands if gen is unchanged since the fetch began and no mutation is pending.
type entry[V any] struct {
	value   V
	loaded  bool
	stale   bool
	gen     uint64
	pending int
}

type userCache[V any] struct {
	kind    Kind
	entries map[string]*entry[V]
}

func newUserCache[V any](kind Kind) *userCache[V] {
	return &userCache[V]{kind: kind, entries: make(map[string]*entry[V])}
}

func (c *userCache[V]) get(user string) *entry[V] {
	e, ok := c.entries[user]
	if !ok {
		e = &entry[V]{}
		c.entries[user] = e
	}
	return e
}

func (c *userCache[V]) invalidate(user string) {
	if e, ok := c.entries[user]; ok {
		e.stale = true
		e.gen++
	}
}

// load returns the cached value for user, fetching it when absent or stale.
// A failed fetch degrades to the previously cached value, or to empty when
// there is none, and leaves the entry stale so the next read retries. Only a
// cancelled ctx is reported as an error.
func load[V any](ctx context.Context, s *Store, c *userCache[V], user string, fetch func(context.Context) (V, error), empty func() V) (V, error) {
	s.mu.Lock()
	e := c.get(user)
	if e.loaded && !e.stale {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	gen := e.gen
	s.mu.Unlock()

	key := cacheKey{kind: c.kind, user: user}
	res, err := s.shared(ctx, key.String(), func(ctx context.Context) (any, error) {
		return withRetry(ctx, s.retry, fetch)
	})

	failed := err != nil
	var v V
	if failed {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return v, ctxErr
		}
		s.log.Warn().Err(err).Str("kind", string(c.kind)).Str("user_id", user).Msg("Fetch failed, serving fallback")
	} else {
		v = res.(V)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e = c.get(user)
	if failed {
		if e.loaded {
			return e.value, nil
		}
		v = empty()
	}

	if e.gen != gen || e.pending > 0 {
		// Superseded by an invalidation or an optimistic write.
		if e.loaded {
			return e.value, nil
		}
		return v, nil
	}

	e.value = v
	e.loaded = true
	e.stale = failed
	return v, nil
}

// Invalidate marks the collection of the given kind stale for user; the next
// read refetches it and any fetch already in flight is discarded.
func (s *Store) Invalidate(kind Kind, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindFavorites:
		s.favorites.invalidate(user)
	case KindNotes:
		s.notes.invalidate(user)
	case KindProgress:
		s.progress.invalidate(user)
	}
	s.group.Forget(cacheKey{kind: kind, user: user}.String())
}
