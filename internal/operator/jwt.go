// Package operator provides bearer tokens for the interactive
// administration surface. Operator tokens are short-lived HS256 JWTs minted
// by the admin panel with the shared signing key; this package validates
// them and extracts the operator identity that status writes record as
// their creator.
package operator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry is how long operator tokens are valid. Operators
// re-authenticate through the admin surface when a token lapses.
const TokenExpiry = 8 * time.Hour

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid operator token")
	ErrTokenExpired = errors.New("operator token has expired")
)

// Claims represents the claims in operator access tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Operator is the operator's account name, recorded as the creator of
	// status updates made through the administrative surface.
	Operator string `json:"opr"`
}

// Config holds configuration for the token service.
type Config struct {
	// SigningKey is the secret shared with the admin surface.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string

	// Audience is the audience claim for tokens.
	Audience string
}

// TokenService validates and, for the admin surface and tests, mints
// operator tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewTokenService creates a new operator token service.
func NewTokenService(cfg Config) *TokenService {
	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// Generate creates a new token for the named operator.
func (s *TokenService) Generate(operatorName string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   operatorName,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		Operator: operatorName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing operator token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate checks a token and returns the operator name it carries.
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Operator == "" {
		return "", ErrInvalidToken
	}

	return claims.Operator, nil
}
