package apikey_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rialtas/statuspage/internal/apikey"
)

func newTestService(t *testing.T) (*apikey.Service, *apikey.InMemoryRepository) {
	t.Helper()
	repo := apikey.NewInMemoryRepository()
	svc := apikey.NewService(apikey.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	key, err := svc.Create(ctx, "ci-deploy")
	require.NoError(t, err)

	assert.True(t, len(key.ID) > 4 && key.ID[:4] == "key_")
	assert.Equal(t, "ci-deploy", key.Label)
	assert.Len(t, key.Token, apikey.TokenLength*2)
	assert.False(t, key.Revoked)
	assert.Nil(t, key.LastUsedAt)
}

func TestService_Create_UniqueTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	key1, err := svc.Create(ctx, "one")
	require.NoError(t, err)
	key2, err := svc.Create(ctx, "two")
	require.NoError(t, err)

	assert.NotEqual(t, key1.Token, key2.Token)
	assert.NotEqual(t, key1.ID, key2.ID)
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	key, err := svc.Create(ctx, "monitoring")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, key.Token)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
	assert.Equal(t, "monitoring", got.Label)

	// Last-used is recorded as a side effect
	stored, err := repo.Get(ctx, key.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastUsedAt)
	assert.WithinDuration(t, time.Now(), *stored.LastUsedAt, 5*time.Second)
}

func TestService_Authenticate_Failures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	key, err := svc.Create(ctx, "revoked-key")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, key.ID))

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"unknown token", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"},
		{"revoked token", key.Token},
	}

	// Every failure mode returns the same error so callers cannot probe
	// which tokens exist
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, apikey.ErrUnauthenticated)
		})
	}
}

func TestService_Revoke(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	key, err := svc.Create(ctx, "temp")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, key.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, key.ID))

	_, err = svc.Authenticate(ctx, key.Token)
	assert.ErrorIs(t, err, apikey.ErrUnauthenticated)

	err = svc.Revoke(ctx, "key_nonexistent")
	assert.ErrorIs(t, err, apikey.ErrKeyNotFound)
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "second")
	require.NoError(t, err)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestGenerateToken(t *testing.T) {
	token1, err := apikey.GenerateToken()
	require.NoError(t, err)
	assert.Len(t, token1, apikey.TokenLength*2)
	assert.Regexp(t, `^[0-9a-f]+$`, token1)

	token2, err := apikey.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token1, token2)
}
