package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rialtas/statuspage/internal/api"
	"github.com/rialtas/statuspage/internal/api/models"
	"github.com/rialtas/statuspage/internal/apikey"
	"github.com/rialtas/statuspage/internal/operator"
	"github.com/rialtas/statuspage/internal/status"
)

// testEnv bundles the router with the stores behind it so tests can seed
// state and inspect side effects.
type testEnv struct {
	router   http.Handler
	services *status.InMemoryServiceRepository
	updates  *status.InMemoryUpdateRepository
	keys     *apikey.Service
	tokens   *operator.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	services := status.NewInMemoryServiceRepository()
	updates := status.NewInMemoryUpdateRepository(services)
	tracker := status.NewTracker(services, updates)

	keys := apikey.NewService(apikey.ServiceConfig{
		Repository: apikey.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})

	tokens := operator.NewTokenService(operator.Config{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "statuspage-admin",
		Audience:   "statuspage-api",
	})

	router := api.NewRouter(api.RouterConfig{
		Version:        "test",
		BuildTime:      "2026-01-01T00:00:00Z",
		Logger:         zerolog.New(io.Discard),
		Tracker:        tracker,
		Keys:           keys,
		OperatorTokens: tokens,
	})

	return &testEnv{
		router:   router,
		services: services,
		updates:  updates,
		keys:     keys,
		tokens:   tokens,
	}
}

func (e *testEnv) addService(t *testing.T, name string, active bool) *status.Service {
	t.Helper()
	svc := &status.Service{Name: name, Active: active}
	require.NoError(t, e.services.Create(context.Background(), svc))
	return svc
}

func (e *testEnv) apiToken(t *testing.T) string {
	t.Helper()
	key, err := e.keys.Create(context.Background(), "test-key")
	require.NoError(t, err)
	return key.Token
}

func (e *testEnv) operatorToken(t *testing.T, name string) string {
	t.Helper()
	token, _, err := e.tokens.Generate(name)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	// No pinger configured: readiness reports OK
	rec := env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StatusEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/status-updates"},
		{http.MethodGet, "/status-updates"},
		{http.MethodGet, "/status-updates/1"},
		{http.MethodGet, "/services"},
		{http.MethodGet, "/services/1"},
		{http.MethodGet, "/services/1/history"},
		{http.MethodGet, "/overall"},
	}

	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_RevokedAndUnknownKeysIndistinguishable(t *testing.T) {
	env := newTestEnv(t)

	revokedKey, err := env.keys.Create(context.Background(), "revoked")
	require.NoError(t, err)
	require.NoError(t, env.keys.Revoke(context.Background(), revokedKey.ID))

	revokedRec := env.do(t, http.MethodGet, "/services", revokedKey.Token, nil)
	unknownRec := env.do(t, http.MethodGet, "/services",
		"deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", nil)

	assert.Equal(t, http.StatusUnauthorized, revokedRec.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)

	var revokedProblem, unknownProblem models.Problem
	require.NoError(t, json.Unmarshal(revokedRec.Body.Bytes(), &revokedProblem))
	require.NoError(t, json.Unmarshal(unknownRec.Body.Bytes(), &unknownProblem))

	// Identical apart from the per-request trace ID
	revokedProblem.TraceID = ""
	unknownProblem.TraceID = ""
	assert.Equal(t, unknownProblem, revokedProblem)
}

func TestRouter_CreateAndReadStatusUpdate(t *testing.T) {
	env := newTestEnv(t)
	db := env.addService(t, "Database", true)
	token := env.apiToken(t)

	rec := env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: db.ID,
		Status:    "degraded",
		Comments:  "elevated latency",
		Plan:      "failover in progress",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))

	var created models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, db.ID, created.ServiceID)
	assert.Equal(t, "Database", created.ServiceName)
	assert.Equal(t, "degraded", created.Status)
	assert.Equal(t, "Degraded Performance", created.StatusDisplay)
	assert.Equal(t, "elevated latency", created.Comments)
	assert.Nil(t, created.CreatedBy)

	// Readable by ID
	rec = env.do(t, http.MethodGet, rec.Header().Get("Location"), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)

	// And first in the service's history
	rec = env.do(t, http.MethodGet, "/services/1/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
}

func TestRouter_CreateStatusUpdate_UnknownService(t *testing.T) {
	env := newTestEnv(t)
	token := env.apiToken(t)

	rec := env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: 42,
		Status:    "down",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)

	// No side effect
	rec = env.do(t, http.MethodGet, "/status-updates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updates []models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updates))
	assert.Empty(t, updates)
}

func TestRouter_CreateStatusUpdate_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	db := env.addService(t, "Database", true)
	token := env.apiToken(t)

	rec := env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: db.ID,
		Status:    "on-fire",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "status", problem.Errors[0].Field)
}

func TestRouter_ServiceHistory_DefaultLimit(t *testing.T) {
	env := newTestEnv(t)
	db := env.addService(t, "Database", true)
	token := env.apiToken(t)

	for i := 0; i < 7; i++ {
		rec := env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
			ServiceID: db.ID,
			Status:    "stable",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/services/1/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 5)

	// Newest first
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i-1].ID, history[i].ID)
	}

	// Explicit limit widens the window
	rec = env.do(t, http.MethodGet, "/services/1/history?limit=100", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 7)
}

func TestRouter_ServiceHistory_UnknownService(t *testing.T) {
	env := newTestEnv(t)
	token := env.apiToken(t)

	rec := env.do(t, http.MethodGet, "/services/42/history", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/services/not-a-number/history", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ListServices(t *testing.T) {
	env := newTestEnv(t)
	env.addService(t, "Active", true)
	env.addService(t, "Inactive", false)
	token := env.apiToken(t)

	// Active only by default
	rec := env.do(t, http.MethodGet, "/services", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var services []models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	require.Len(t, services, 1)
	assert.Equal(t, "Active", services[0].Name)
	assert.Nil(t, services[0].CurrentStatus)

	rec = env.do(t, http.MethodGet, "/services?activeOnly=false", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	assert.Len(t, services, 2)
}

func TestRouter_Overall(t *testing.T) {
	env := newTestEnv(t)
	db := env.addService(t, "Database", true)
	cdn := env.addService(t, "CDN", true)
	env.addService(t, "Website", true)
	token := env.apiToken(t)

	fetchOverall := func() models.Overall {
		rec := env.do(t, http.MethodGet, "/overall", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var overall models.Overall
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overall))
		return overall
	}

	// No history: everything stable
	overall := fetchOverall()
	assert.Equal(t, "stable", overall.Status)
	assert.Equal(t, "Stable", overall.StatusDisplay)
	assert.Len(t, overall.Services, 3)

	// Degraded database drives the banner
	rec := env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: db.ID, Status: "degraded",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "degraded", fetchOverall().Status)

	// CDN outage is worse and wins
	rec = env.do(t, http.MethodPost, "/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: cdn.ID, Status: "down",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "down", fetchOverall().Status)

	// Deactivated services drop out of the aggregate
	cdn.Active = false
	require.NoError(t, env.services.Update(context.Background(), cdn))
	assert.Equal(t, "degraded", fetchOverall().Status)
}

func TestRouter_AdminRequiresOperatorToken(t *testing.T) {
	env := newTestEnv(t)

	// No token
	rec := env.do(t, http.MethodGet, "/admin/services", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An API key is not an operator token
	rec = env.do(t, http.MethodGet, "/admin/services", env.apiToken(t), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminServiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.operatorToken(t, "alice")

	// Create
	rec := env.do(t, http.MethodPost, "/admin/services", token, models.ServiceCreateRequest{
		Name:        "Payments",
		Description: "Payment processing",
		Order:       1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)

	// List includes it
	rec = env.do(t, http.MethodGet, "/admin/services", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var services []models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	require.Len(t, services, 1)

	// Update a single field
	newName := "Payments API"
	rec = env.do(t, http.MethodPut, "/admin/services/1", token, models.ServiceUpdateRequest{
		Name: &newName,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Payments API", updated.Name)
	assert.Equal(t, "Payment processing", updated.Description)

	// Delete
	rec = env.do(t, http.MethodDelete, "/admin/services/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/services", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	assert.Empty(t, services)
}

func TestRouter_AdminStatusUpdateRecordsOperator(t *testing.T) {
	env := newTestEnv(t)
	db := env.addService(t, "Database", true)
	token := env.operatorToken(t, "alice")

	rec := env.do(t, http.MethodPost, "/admin/status-updates", token, models.StatusUpdateCreateRequest{
		ServiceID: db.ID,
		Status:    "maintenance",
		Comments:  "scheduled upgrade",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.StatusUpdate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "alice", *created.CreatedBy)
}

func TestRouter_AdminAPIKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.operatorToken(t, "alice")

	// Create: the only response that carries the secret
	rec := env.do(t, http.MethodPost, "/admin/api-keys", token, models.APIKeyCreateRequest{
		Label: "ci-deploy",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.APIKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "ci-deploy", created.Label)

	// The new key authenticates API requests
	apiRec := env.do(t, http.MethodGet, "/services", created.Token, nil)
	assert.Equal(t, http.StatusOK, apiRec.Code)

	// List never exposes tokens
	rec = env.do(t, http.MethodGet, "/admin/api-keys", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []models.APIKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	require.Len(t, keys, 1)
	assert.Empty(t, keys[0].Token)

	// Revoke kills the credential
	rec = env.do(t, http.MethodDelete, "/admin/api-keys/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	apiRec = env.do(t, http.MethodGet, "/services", created.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, apiRec.Code)
}

func TestRouter_AdminCreateAPIKey_MissingLabel(t *testing.T) {
	env := newTestEnv(t)
	token := env.operatorToken(t, "alice")

	rec := env.do(t, http.MethodPost, "/admin/api-keys", token, models.APIKeyCreateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
