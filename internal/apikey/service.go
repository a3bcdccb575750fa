package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ServiceConfig holds configuration for the API key service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service validates presented tokens and manages key lifecycle. Last-used
// tracking is best-effort: failures are logged, never surfaced, and a
// circuit breaker stops hammering a flaky store with writes that are
// allowed to be lost anyway.
type Service struct {
	repo  Repository
	log   zerolog.Logger
	touch *gobreaker.CircuitBreaker[struct{}]
}

// NewService creates a new API key service.
func NewService(cfg ServiceConfig) *Service {
	touch := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "apikey-last-used",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 >= counts.Requests
		},
	})
	return &Service{
		repo:  cfg.Repository,
		log:   cfg.Logger,
		touch: touch,
	}
}

// Authenticate validates a presented token. On success it returns the key's
// identity and records last-used-at as a side effect. Revoked keys and
// unknown tokens both return ErrUnauthenticated with no distinction.
func (s *Service) Authenticate(ctx context.Context, token string) (*Key, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	key, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if key.Revoked {
		return nil, ErrUnauthenticated
	}

	s.recordUse(ctx, key.ID)
	return key, nil
}

// recordUse updates last-used-at through the breaker. Best-effort only:
// the authenticated request proceeds whether or not this lands.
func (s *Service) recordUse(ctx context.Context, id string) {
	_, err := s.touch.Execute(func() (struct{}, error) {
		return struct{}{}, s.repo.TouchLastUsed(ctx, id, time.Now())
	})
	if err != nil {
		s.log.Debug().
			Err(err).
			Str("key_id", id).
			Msg("last-used update skipped")
	}
}

// Create generates and persists a new key. The returned Key carries the
// secret token; this is the only time it is exposed.
func (s *Service) Create(ctx context.Context, label string) (*Key, error) {
	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	key := &Key{
		ID:        "key_" + uuid.New().String(),
		Label:     label,
		Token:     token,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// List retrieves all keys, newest first.
func (s *Service) List(ctx context.Context) ([]*Key, error) {
	return s.repo.List(ctx)
}

// Revoke marks a key as revoked. Subsequent Authenticate calls with its
// token fail exactly like an unknown token.
func (s *Service) Revoke(ctx context.Context, id string) error {
	return s.repo.Revoke(ctx, id)
}
