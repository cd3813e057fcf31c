package viewstate

import (
	"context"
	"sync"
	"time"

	"martdesk/api/internal/collection"
)

// MemoryStore keeps panel state in process memory for deployments without
// Redis. State is lost on restart, which matches the seeded panels anyway.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]PanelState
}

func NewMemory() *MemoryStore {
	return &MemoryStore{states: make(map[string]PanelState)}
}

func (s *MemoryStore) Save(ctx context.Context, accountID, resource string, state PanelState) error {
	state.SavedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key(accountID, resource)] = state
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, accountID, resource string) (PanelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key(accountID, resource)]
	if !ok {
		return PanelState{Mode: collection.Closed(), Params: collection.NewParams()}, nil
	}
	return state, nil
}

func (s *MemoryStore) Clear(ctx context.Context, accountID, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key(accountID, resource))
	return nil
}
