// internal/requirements/aggregate/store.go
package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"loandoc-workers/internal/models"
)

// BaseKey is the cache key the aggregated checklist lives under. Per-
// application snapshots are suffixed with the application ID.
const BaseKey = "productRequirements.aggregated"

// Store persists the aggregated checklist snapshot. Save fully replaces the
// previous snapshot; there is no merge-on-read.
type Store interface {
	Load(ctx context.Context, applicationID string) ([]models.RequirementEntry, error)
	Save(ctx context.Context, applicationID string, entries []models.RequirementEntry) error
}

func storeKey(applicationID string) string {
	if applicationID == "" {
		return BaseKey
	}
	return BaseKey + ":" + applicationID
}

// RedisStore keeps the snapshot in Redis as a JSON array.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, applicationID string) ([]models.RequirementEntry, error) {
	val, err := s.client.Get(ctx, storeKey(applicationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", storeKey(applicationID), err)
	}

	var entries []models.RequirementEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		// A corrupt snapshot is treated as absent; the next save overwrites it.
		return nil, nil
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, applicationID string, entries []models.RequirementEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	if err := s.client.Set(ctx, storeKey(applicationID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", storeKey(applicationID), err)
	}
	return nil
}

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]models.RequirementEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]models.RequirementEntry)}
}

func (s *MemoryStore) Load(_ context.Context, applicationID string) ([]models.RequirementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.snapshots[storeKey(applicationID)]
	out := make([]models.RequirementEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, applicationID string, entries []models.RequirementEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]models.RequirementEntry, len(entries))
	copy(snapshot, entries)
	s.snapshots[storeKey(applicationID)] = snapshot
	return nil
}
