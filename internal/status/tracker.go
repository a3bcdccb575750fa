package status

import (
	"context"
	"errors"
	"fmt"
)

// Validation bounds for free-text fields.
const (
	MaxCommentsLength = 2000
	MaxPlanLength     = 2000
	MaxNameLength     = 100
	MaxDescriptionLen = 2000
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries the field errors of a rejected write.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Current pairs a service with its current status observation.
// Current.Update is nil when the service has no history, in which case the
// service reports DefaultLevel.
type Current struct {
	Service *Service
	Update  *Update
}

// Level returns the service's current status level.
func (c Current) Level() Level {
	if c.Update == nil {
		return DefaultLevel
	}
	return c.Update.Status
}

// Overview is the aggregate view over the active services.
type Overview struct {
	Level    Level
	Services []Current
}

// Tracker validates and records status observations and derives the
// aggregate status. All writes, interactive or programmatic, go through it.
type Tracker struct {
	services ServiceRepository
	updates  UpdateRepository
}

// NewTracker creates a new Tracker.
func NewTracker(services ServiceRepository, updates UpdateRepository) *Tracker {
	return &Tracker{services: services, updates: updates}
}

// CreateUpdate validates and records a new observation for a service.
// Validation is fail-fast: unknown service, then status level, then field
// lengths. Nothing is persisted unless every check passes.
func (t *Tracker) CreateUpdate(ctx context.Context, serviceID int64, level Level, comments, plan string, actor Actor) (*Update, error) {
	if _, err := t.services.Get(ctx, serviceID); err != nil {
		return nil, err
	}

	if !level.Valid() {
		return nil, &ValidationError{Errors: []FieldError{{
			Field:   "status",
			Message: fmt.Sprintf("must be one of: %s, %s, %s, %s, %s", LevelStable, LevelMaintenance, LevelDegraded, LevelPartial, LevelDown),
		}}}
	}

	var fieldErrs []FieldError
	if len(comments) > MaxCommentsLength {
		fieldErrs = append(fieldErrs, FieldError{Field: "comments", Message: fmt.Sprintf("must be at most %d characters", MaxCommentsLength)})
	}
	if len(plan) > MaxPlanLength {
		fieldErrs = append(fieldErrs, FieldError{Field: "plan", Message: fmt.Sprintf("must be at most %d characters", MaxPlanLength)})
	}
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Errors: fieldErrs}
	}

	upd := &Update{
		ServiceID: serviceID,
		Status:    level,
		Comments:  comments,
		Plan:      plan,
		CreatedBy: actor.CreatedBy(),
	}
	if err := t.updates.Append(ctx, upd); err != nil {
		return nil, err
	}
	return upd, nil
}

// GetUpdate retrieves an observation by ID.
func (t *Tracker) GetUpdate(ctx context.Context, id int64) (*Update, error) {
	return t.updates.Get(ctx, id)
}

// ListUpdates retrieves at most limit observations across all services,
// newest first.
func (t *Tracker) ListUpdates(ctx context.Context, limit int) ([]*Update, error) {
	return t.updates.List(ctx, limit)
}

// History retrieves at most limit observations for a service, newest first.
// Returns ErrServiceNotFound for an unknown service.
func (t *Tracker) History(ctx context.Context, serviceID int64, limit int) ([]*Update, error) {
	if _, err := t.services.Get(ctx, serviceID); err != nil {
		return nil, err
	}
	return t.updates.Recent(ctx, serviceID, limit)
}

// GetService retrieves a service with its current status.
func (t *Tracker) GetService(ctx context.Context, id int64) (*Current, error) {
	svc, err := t.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cur, err := t.current(ctx, svc)
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

// ListServices retrieves services with their current status, ordered by
// display order then name.
func (t *Tracker) ListServices(ctx context.Context, activeOnly bool) ([]Current, error) {
	services, err := t.services.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	currents := make([]Current, 0, len(services))
	for _, svc := range services {
		cur, err := t.current(ctx, svc)
		if err != nil {
			return nil, err
		}
		currents = append(currents, cur)
	}
	return currents, nil
}

// Overall computes the aggregate status over the active services: the most
// severe current level, with zero-history services reporting DefaultLevel.
// Recomputed from stored state on every call, never cached.
func (t *Tracker) Overall(ctx context.Context) (*Overview, error) {
	currents, err := t.ListServices(ctx, true)
	if err != nil {
		return nil, err
	}

	level := DefaultLevel
	for _, cur := range currents {
		level = Worse(level, cur.Level())
	}
	return &Overview{Level: level, Services: currents}, nil
}

// CreateService registers a new service.
func (t *Tracker) CreateService(ctx context.Context, svc *Service) error {
	if fieldErrs := validateService(svc); len(fieldErrs) > 0 {
		return &ValidationError{Errors: fieldErrs}
	}
	return t.services.Create(ctx, svc)
}

// UpdateService applies changes to an existing service.
func (t *Tracker) UpdateService(ctx context.Context, svc *Service) error {
	if fieldErrs := validateService(svc); len(fieldErrs) > 0 {
		return &ValidationError{Errors: fieldErrs}
	}
	return t.services.Update(ctx, svc)
}

// DeleteService removes a service and its history.
func (t *Tracker) DeleteService(ctx context.Context, id int64) error {
	return t.services.Delete(ctx, id)
}

func (t *Tracker) current(ctx context.Context, svc *Service) (Current, error) {
	latest, err := t.updates.Latest(ctx, svc.ID)
	if err != nil {
		if errors.Is(err, ErrUpdateNotFound) {
			return Current{Service: svc}, nil
		}
		return Current{}, err
	}
	return Current{Service: svc, Update: latest}, nil
}

func validateService(svc *Service) []FieldError {
	var errs []FieldError
	if svc.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	} else if len(svc.Name) > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxNameLength)})
	}
	if len(svc.Description) > MaxDescriptionLen {
		errs = append(errs, FieldError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLen)})
	}
	return errs
}
