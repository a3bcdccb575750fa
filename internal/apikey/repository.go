package apikey

import (
	"context"
	"time"
)

// Repository defines persistence for API keys.
type Repository interface {
	// FindByToken retrieves a key by exact match on its secret token.
	// Returns ErrKeyNotFound when no key matches.
	FindByToken(ctx context.Context, token string) (*Key, error)

	// TouchLastUsed records that a key was used at the given time.
	// A lost update under a race is acceptable and never user-visible.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// Create persists a new key.
	Create(ctx context.Context, key *Key) error

	// Get retrieves a key by ID. Returns ErrKeyNotFound if it does not exist.
	Get(ctx context.Context, id string) (*Key, error)

	// List retrieves all keys, newest first.
	List(ctx context.Context) ([]*Key, error)

	// Revoke marks a key as revoked.
	// Returns ErrKeyNotFound if it does not exist.
	Revoke(ctx context.Context, id string) error
}
