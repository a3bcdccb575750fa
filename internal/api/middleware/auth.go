package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rialtas/statuspage/internal/apikey"
	"github.com/rialtas/statuspage/internal/api/models"
	"github.com/rialtas/statuspage/internal/operator"
)

// apiKeyCtxKey is the context key for the authenticated API key.
type apiKeyCtxKey struct{}

// operatorCtxKey is the context key for the authenticated operator name.
type operatorCtxKey struct{}

// unauthorizedDetail is the single detail used for every authentication
// failure on API-key routes. Missing header, malformed header, unknown
// token, and revoked key are indistinguishable to the caller.
const unauthorizedDetail = "invalid or missing API key"

// APIKeyAuth creates authentication middleware that validates API key
// bearer tokens against the credential store.
func APIKeyAuth(keys *apikey.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r, unauthorizedDetail)
				return
			}

			key, err := keys.Authenticate(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, r, unauthorizedDetail)
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorAuth creates authentication middleware that validates operator
// bearer tokens for the administrative surface.
func OperatorAuth(tokens *operator.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r, "missing operator token")
				return
			}

			name, err := tokens.Validate(token)
			if err != nil {
				writeUnauthorized(w, r, "invalid operator token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorCtxKey{}, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// writeUnauthorized writes a 401 Unauthorized response.
// Implemented directly here to avoid an import cycle with the response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetAPIKey retrieves the authenticated API key from the context.
// Returns nil if the request was not API-key authenticated.
func GetAPIKey(ctx context.Context) *apikey.Key {
	if key, ok := ctx.Value(apiKeyCtxKey{}).(*apikey.Key); ok {
		return key
	}
	return nil
}

// GetOperator retrieves the authenticated operator name from the context.
// Returns an empty string if the request was not operator authenticated.
func GetOperator(ctx context.Context) string {
	if name, ok := ctx.Value(operatorCtxKey{}).(string); ok {
		return name
	}
	return ""
}
