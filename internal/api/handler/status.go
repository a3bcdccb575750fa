package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rialtas/statuspage/internal/api/models"
	"github.com/rialtas/statuspage/internal/api/response"
	"github.com/rialtas/statuspage/internal/status"
)

// Listing limits.
const (
	updatesDefaultLimit = 50
	updatesMaxLimit     = 200
	historyMaxLimit     = 100
)

// StatusHandler handles the status update and service endpoints.
type StatusHandler struct {
	tracker *status.Tracker
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(tracker *status.Tracker) *StatusHandler {
	return &StatusHandler{tracker: tracker}
}

// CreateStatusUpdate handles POST /status-updates.
// API-authenticated writes never record a creator: the credential
// authenticates the request, not the author field.
func (h *StatusHandler) CreateStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var input models.StatusUpdateCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	upd, err := h.tracker.CreateUpdate(r.Context(),
		input.ServiceID,
		status.Level(input.Status),
		input.Comments,
		input.Plan,
		status.APIClient(),
	)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}

	location := fmt.Sprintf("/status-updates/%d", upd.ID)
	response.Created(w, r, location, toAPIStatusUpdate(upd))
}

// ListStatusUpdates handles GET /status-updates.
func (h *StatusHandler) ListStatusUpdates(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, updatesDefaultLimit, updatesMaxLimit)
	if err != nil {
		response.BadRequest(w, r, "limit must be a positive integer", nil)
		return
	}

	updates, err := h.tracker.ListUpdates(r.Context(), limit)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIStatusUpdates(updates))
}

// GetStatusUpdate handles GET /status-updates/{updateId}.
func (h *StatusHandler) GetStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "updateId"), 10, 64)
	if err != nil {
		response.NotFound(w, r, "status update not found")
		return
	}

	upd, err := h.tracker.GetUpdate(r.Context(), id)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIStatusUpdate(upd))
}

// ListServices handles GET /services.
func (h *StatusHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("activeOnly"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, r, "activeOnly must be a boolean", nil)
			return
		}
		activeOnly = parsed
	}

	currents, err := h.tracker.ListServices(r.Context(), activeOnly)
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

// GetService handles GET /services/{serviceId}.
func (h *StatusHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	cur, err := h.tracker.GetService(r.Context(), id)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIService(*cur))
}

// GetServiceHistory handles GET /services/{serviceId}/history.
func (h *StatusHandler) GetServiceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	limit, err := limitParam(r, status.RecentDefaultLimit, historyMaxLimit)
	if err != nil {
		response.BadRequest(w, r, "limit must be a positive integer", nil)
		return
	}

	updates, err := h.tracker.History(r.Context(), id, limit)
	if err != nil {
		writeStatusError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIStatusUpdates(updates))
}

// Overall handles GET /overall - the public banner value.
func (h *StatusHandler) Overall(w http.ResponseWriter, r *http.Request) {
	overview, err := h.tracker.Overall(r.Context())
	if err != nil {
		writeStatusError(w, r, err)
		return
	}

	services := make([]models.Service, 0, len(overview.Services))
	for _, cur := range overview.Services {
		services = append(services, toAPIService(cur))
	}

	response.JSON(w, r, http.StatusOK, models.Overall{
		Status:        string(overview.Level),
		StatusDisplay: overview.Level.Display(),
		Time:          models.Timestamp(time.Now()),
		Services:      services,
	})
}

// serviceIDParam parses the serviceId URL parameter. A non-numeric ID can
// never reference a service, so it reports not found rather than a
// validation error.
func serviceIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "serviceId"), 10, 64)
	if err != nil {
		response.NotFound(w, r, "service not found")
		return 0, false
	}
	return id, true
}

// limitParam parses the optional limit query parameter, applying the
// default and clamping to the cap.
func limitParam(r *http.Request, def, max int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, errors.New("invalid limit")
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

// writeStatusError maps domain errors onto the wire taxonomy: NotFound for
// unknown entities, validation errors with field details, and everything
// else as a storage failure the caller may retry.
func writeStatusError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *status.ValidationError
	switch {
	case errors.Is(err, status.ErrServiceNotFound):
		response.NotFound(w, r, "service not found")
	case errors.Is(err, status.ErrUpdateNotFound):
		response.NotFound(w, r, "status update not found")
	case errors.As(err, &valErr):
		response.BadRequest(w, r, "validation failed", toAPIFieldErrors(valErr.Errors))
	default:
		response.StorageUnavailable(w, r, "storage unavailable, retry later")
	}
}

func toAPIFieldErrors(errs []status.FieldError) []models.FieldError {
	out := make([]models.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, models.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return out
}

func toAPIStatusUpdate(upd *status.Update) models.StatusUpdate {
	return models.StatusUpdate{
		ID:            upd.ID,
		ServiceID:     upd.ServiceID,
		ServiceName:   upd.ServiceName,
		Status:        string(upd.Status),
		StatusDisplay: upd.Status.Display(),
		Comments:      upd.Comments,
		Plan:          upd.Plan,
		CreatedBy:     upd.CreatedBy,
		CreatedAt:     models.Timestamp(upd.CreatedAt),
	}
}

func toAPIStatusUpdates(updates []*status.Update) []models.StatusUpdate {
	out := make([]models.StatusUpdate, 0, len(updates))
	for _, upd := range updates {
		out = append(out, toAPIStatusUpdate(upd))
	}
	return out
}

func toAPIService(cur status.Current) models.Service {
	svc := models.Service{
		ID:          cur.Service.ID,
		Name:        cur.Service.Name,
		Description: cur.Service.Description,
		Order:       cur.Service.Order,
		IsActive:    cur.Service.Active,
		CreatedAt:   models.Timestamp(cur.Service.CreatedAt),
	}
	if cur.Update != nil {
		upd := toAPIStatusUpdate(cur.Update)
		svc.CurrentStatus = &upd
	}
	return svc
}
