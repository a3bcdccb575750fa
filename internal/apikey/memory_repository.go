package apikey

import (
	"context"
	"crypto/subtle"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu   sync.RWMutex
	keys map[string]*Key
}

// NewInMemoryRepository creates a new in-memory API key repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{keys: make(map[string]*Key)}
}

// FindByToken retrieves a key by exact match on its secret token. Every
// stored token is compared in constant time to avoid leaking prefix-match
// timing.
func (r *InMemoryRepository) FindByToken(_ context.Context, token string) (*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Key
	for _, key := range r.keys {
		if subtle.ConstantTimeCompare([]byte(key.Token), []byte(token)) == 1 {
			found = key
		}
	}
	if found == nil {
		return nil, ErrKeyNotFound
	}
	cpy := *found
	return &cpy, nil
}

// TouchLastUsed records that a key was used.
func (r *InMemoryRepository) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key, ok := r.keys[id]; ok {
		key.LastUsedAt = &at
	}
	return nil
}

// Create persists a new key.
func (r *InMemoryRepository) Create(_ context.Context, key *Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *key
	r.keys[key.ID] = &cpy
	return nil
}

// Get retrieves a key by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cpy := *key
	return &cpy, nil
}

// List retrieves all keys, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]*Key, 0, len(r.keys))
	for _, key := range r.keys {
		cpy := *key
		keys = append(keys, &cpy)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

// Revoke marks a key as revoked.
func (r *InMemoryRepository) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[id]
	if !ok {
		return ErrKeyNotFound
	}
	key.Revoked = true
	return nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
