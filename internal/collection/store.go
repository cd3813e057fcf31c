package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotLoaded is returned by Query and the mutation handlers while the
// collection's backing load has failed and has not been retried.
var ErrNotLoaded = errors.New("collection not loaded")

// Persister is the optional write-through backend for a collection. Seeded
// collections run without one; store-backed collections load from it at
// bootstrap and persist every mutation through it.
type Persister[T any] interface {
	LoadAll(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}

// Store holds the canonical in-memory array for one entity type. All
// mutations are optimistic: the slice is updated first and rolled back if
// the persister rejects the change, so seeded and store-backed panels share
// one set of semantics.
type Store[T any] struct {
	schema    Schema[T]
	persister Persister[T]

	mu      sync.Mutex
	items   []T
	loaded  bool
	loadErr error
}

func NewStore[T any](schema Schema[T], persister Persister[T]) *Store[T] {
	return &Store[T]{schema: schema, persister: persister}
}

// Initialize seeds the collection from a literal slice.
func (s *Store[T]) Initialize(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T(nil), items...)
	s.loaded = true
	s.loadErr = nil
}

// Load replaces the collection with the persister's contents. On failure
// the previous contents are kept and the store is flagged as errored until
// a retry succeeds; there is no automatic retry.
func (s *Store[T]) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	items, err := s.persister.LoadAll(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loaded = false
		s.loadErr = err
		return fmt.Errorf("load collection: %w", err)
	}
	s.items = items
	s.loaded = true
	s.loadErr = nil
	return nil
}

// LoadError reports the failure from the last Load, if any.
func (s *Store[T]) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	if s.loadErr != nil {
		return fmt.Errorf("%w: %v", ErrNotLoaded, s.loadErr)
	}
	return ErrNotLoaded
}

// All returns a snapshot of the collection. The returned slice is a copy.
func (s *Store[T]) All() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Replace swaps the entire collection atomically.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T(nil), items...)
	s.loaded = true
	s.loadErr = nil
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if s.schema.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Query evaluates the pipeline against the current snapshot.
func (s *Store[T]) Query(p Params) (View[T], error) {
	if err := s.LoadError(); err != nil {
		return View[T]{}, err
	}
	return s.schema.Evaluate(s.All(), p), nil
}

// Create assigns an id and appends the entity. The persisted entity is
// returned so callers see the assigned id.
func (s *Store[T]) Create(ctx context.Context, item T, assign func(*T, string)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.loaded {
		return zero, ErrNotLoaded
	}
	assign(&item, s.schema.NewID(s.items))
	snapshot := s.items
	s.items = append(append([]T(nil), s.items...), item)
	if s.persister != nil {
		if err := s.persister.Insert(ctx, item); err != nil {
			s.items = snapshot
			return zero, fmt.Errorf("create: %w", err)
		}
	}
	return item, nil
}

// Update applies a partial edit to the entity with the given id. A missing
// id is a silent no-op, reported through the bool.
func (s *Store[T]) Update(ctx context.Context, id string, apply func(*T)) (T, bool, error) {
	return s.mutate(ctx, id, apply)
}

// Delete removes the entity with the given id. A missing id leaves the
// collection untouched.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}
	index := -1
	for i, item := range s.items {
		if s.schema.ID(item) == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false, nil
	}
	snapshot := s.items
	next := append([]T(nil), s.items[:index]...)
	s.items = append(next, s.items[index+1:]...)
	if s.persister != nil {
		if err := s.persister.Delete(ctx, id); err != nil {
			s.items = snapshot
			return false, fmt.Errorf("delete: %w", err)
		}
	}
	return true, nil
}

// Transition sets the entity's status and stamps the transition metadata.
// Any status is reachable from any other; the workflows expose manual
// override deliberately, so no transition table is enforced here.
func (s *Store[T]) Transition(ctx context.Context, id, status string, meta TransitionMeta) (T, bool, error) {
	if meta.At.IsZero() {
		meta.At = time.Now()
	}
	return s.mutate(ctx, id, func(item *T) {
		s.schema.SetStatus(item, status)
		if s.schema.Stamp != nil {
			s.schema.Stamp(item, meta)
		}
	})
}

func (s *Store[T]) mutate(ctx context.Context, id string, apply func(*T)) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.loaded {
		return zero, false, ErrNotLoaded
	}
	index := -1
	for i, item := range s.items {
		if s.schema.ID(item) == id {
			index = i
			break
		}
	}
	if index < 0 {
		return zero, false, nil
	}
	snapshot := s.items
	next := append([]T(nil), s.items...)
	apply(&next[index])
	s.items = next
	if s.persister != nil {
		if err := s.persister.Update(ctx, next[index]); err != nil {
			s.items = snapshot
			return zero, false, fmt.Errorf("update: %w", err)
		}
	}
	return next[index], true, nil
}
