package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rialtas/statuspage/internal/api/middleware"
	"github.com/rialtas/statuspage/internal/api/models"
	"github.com/rialtas/statuspage/internal/api/response"
	"github.com/rialtas/statuspage/internal/apikey"
	"github.com/rialtas/statuspage/internal/status"
)

// AdminHandler handles the operator endpoints under /admin.
type AdminHandler struct {
	tracker *status.Tracker
	keys    *apikey.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tracker *status.Tracker, keys *apikey.Service) *AdminHandler {
	return &AdminHandler{tracker: tracker, keys: keys}
}

// CreateStatusUpdate handles POST /admin/status-updates. Unlike the API
// endpoint, the authenticated operator is recorded as the creator.
func (h *AdminHandler) CreateStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var input models.StatusUpdateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	operator := middleware.GetOperator(r.Context())
	upd, err := h.tracker.CreateUpdate(r.Context(),
		input.ServiceID,
		status.Level(input.Status),
		input.Comments,
		input.Plan,
		status.Operator(operator),
	)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}

	location := fmt.Sprintf("/status-updates/%d", upd.ID)
	response.Created(w, r, location, toAPIStatusUpdate(upd))
}

// CreateService handles POST /admin/services.
func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var input models.ServiceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	svc := &status.Service{
		Name:        input.Name,
		Description: input.Description,
		Order:       input.Order,
		Active:      true,
	}
	if input.IsActive != nil {
		svc.Active = *input.IsActive
	}

	if err := h.tracker.CreateService(r.Context(), svc); err != nil {
		writeStatusError(w, r, err)
		return
	}

	location := fmt.Sprintf("/services/%d", svc.ID)
	response.Created(w, r, location, toAPIService(status.Current{Service: svc}))
}

// ListServices handles GET /admin/services. Includes inactive services.
func (h *AdminHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	currents, err := h.tracker.ListServices(r.Context(), false)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}

	services := make([]models.Service, 0, len(currents))
	for _, cur := range currents {
		services = append(services, toAPIService(cur))
	}
	response.JSON(w, r, http.StatusOK, services)
}

// UpdateService handles PUT /admin/services/{serviceId}. Absent fields are
// left unchanged.
func (h *AdminHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	var input models.ServiceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	cur, err := h.tracker.GetService(r.Context(), id)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}

	svc := cur.Service
	if input.Name != nil {
		svc.Name = *input.Name
	}
	if input.Description != nil {
		svc.Description = *input.Description
	}
	if input.Order != nil {
		svc.Order = *input.Order
	}
	if input.IsActive != nil {
		svc.Active = *input.IsActive
	}

	if err := h.tracker.UpdateService(r.Context(), svc); err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIService(status.Current{Service: svc, Update: cur.Update}))
}

// DeleteService handles DELETE /admin/services/{serviceId}. Removes the
// service and its history.
func (h *AdminHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	if err := h.tracker.DeleteService(r.Context(), id); err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// CreateAPIKey handles POST /admin/api-keys. The response is the only place
// the secret token ever appears.
func (h *AdminHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var input models.APIKeyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Label == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "label", Message: "is required"},
		})
		return
	}

	key, err := h.keys.Create(r.Context(), input.Label)
	if err != nil {
		response.StorageUnavailable(w, r, "storage unavailable, retry later")
		return
	}

	out := toAPIKey(key)
	out.Token = key.Token
	response.Created(w, r, "/admin/api-keys/"+key.ID, out)
}

// ListAPIKeys handles GET /admin/api-keys. Metadata only, no tokens.
func (h *AdminHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		response.StorageUnavailable(w, r, "storage unavailable, retry later")
		return
	}

	out := make([]models.APIKey, 0, len(keys))
	for _, key := range keys {
		out = append(out, toAPIKey(key))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// RevokeAPIKey handles DELETE /admin/api-keys/{keyId}.
func (h *AdminHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "keyId")
	if err := h.keys.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			response.NotFound(w, r, "api key not found")
			return
		}
		response.StorageUnavailable(w, r, "storage unavailable, retry later")
		return
	}
	response.NoContent(w, r)
}

// toAPIKey converts key metadata for the wire. The secret token is omitted;
// CreateAPIKey sets it explicitly on the create response.
func toAPIKey(key *apikey.Key) models.APIKey {
	out := models.APIKey{
		ID:        key.ID,
		Label:     key.Label,
		Revoked:   key.Revoked,
		CreatedAt: models.Timestamp(key.CreatedAt),
	}
	if key.LastUsedAt != nil {
		ts := models.Timestamp(*key.LastUsedAt)
		out.LastUsedAt = &ts
	}
	return out
}
