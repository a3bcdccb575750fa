package operator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rialtas/statuspage/internal/operator"
)

func newTestTokenService(signingKey, issuer, audience string) *operator.TokenService {
	return operator.NewTokenService(operator.Config{
		SigningKey: signingKey,
		Issuer:     issuer,
		Audience:   audience,
	})
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTestTokenService("test-secret-key-for-testing-only", "statuspage-admin", "statuspage-api")

	token, expiresAt, err := svc.Generate("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	name, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestTokenService_InvalidToken(t *testing.T) {
	svc := newTestTokenService("test-secret-key-for-testing-only", "statuspage-admin", "statuspage-api")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestTokenService_WrongSigningKey(t *testing.T) {
	svc1 := newTestTokenService("key-one", "statuspage-admin", "statuspage-api")
	svc2 := newTestTokenService("key-two", "statuspage-admin", "statuspage-api")

	token, _, err := svc1.Generate("alice")
	require.NoError(t, err)

	_, err = svc2.Validate(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, operator.ErrInvalidToken)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	svc1 := newTestTokenService("test-key", "issuer-one", "statuspage-api")
	svc2 := newTestTokenService("test-key", "issuer-two", "statuspage-api")

	token, _, err := svc1.Generate("alice")
	require.NoError(t, err)

	_, err = svc2.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_WrongAudience(t *testing.T) {
	svc1 := newTestTokenService("test-key", "statuspage-admin", "audience-one")
	svc2 := newTestTokenService("test-key", "statuspage-admin", "audience-two")

	token, _, err := svc1.Generate("alice")
	require.NoError(t, err)

	_, err = svc2.Validate(token)
	assert.Error(t, err)
}
