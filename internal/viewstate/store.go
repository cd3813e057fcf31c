// Package viewstate persists each admin's panel state (open dialog, query
// parameters) so a reload restores the view where they left it.
package viewstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"martdesk/api/internal/collection"
)

// PanelState is one admin's saved state for one resource panel.
type PanelState struct {
	Mode    collection.Mode   `json:"mode"`
	Params  collection.Params `json:"params"`
	SavedAt time.Time         `json:"savedAt"`
}

// DefaultTTL bounds how long abandoned panel state lingers.
const DefaultTTL = 7 * 24 * time.Hour

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

func key(accountID, resource string) string {
	return fmt.Sprintf("viewstate:%s:%s", accountID, resource)
}

func (s *Store) Save(ctx context.Context, accountID, resource string, state PanelState) error {
	state.SavedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal panel state: %w", err)
	}
	if err := s.client.Set(ctx, key(accountID, resource), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save panel state: %w", err)
	}
	return nil
}

// Load returns the saved state, or a fresh default when none exists.
func (s *Store) Load(ctx context.Context, accountID, resource string) (PanelState, error) {
	data, err := s.client.Get(ctx, key(accountID, resource)).Result()
	if err == redis.Nil {
		return PanelState{Mode: collection.Closed(), Params: collection.NewParams()}, nil
	}
	if err != nil {
		return PanelState{}, fmt.Errorf("load panel state: %w", err)
	}
	var state PanelState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return PanelState{}, fmt.Errorf("decode panel state: %w", err)
	}
	return state, nil
}

func (s *Store) Clear(ctx context.Context, accountID, resource string) error {
	if err := s.client.Del(ctx, key(accountID, resource)).Err(); err != nil {
		return fmt.Errorf("clear panel state: %w", err)
	}
	return nil
}
