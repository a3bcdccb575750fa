package status

import "context"

// RecentDefaultLimit is the contract default for recent-history reads.
const RecentDefaultLimit = 5

// ServiceRepository defines persistence for services.
type ServiceRepository interface {
	// List retrieves services ordered by display order then name.
	// When activeOnly is true, inactive services are excluded.
	List(ctx context.Context, activeOnly bool) ([]*Service, error)

	// Get retrieves a service by ID.
	// Returns ErrServiceNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*Service, error)

	// Create persists a new service, assigning ID and CreatedAt.
	Create(ctx context.Context, svc *Service) error

	// Update persists changes to an existing service.
	// Returns ErrServiceNotFound if it does not exist.
	Update(ctx context.Context, svc *Service) error

	// Delete removes a service and its history.
	// Returns ErrServiceNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// UpdateRepository defines persistence for the append-only status history.
type UpdateRepository interface {
	// Append persists a new observation, assigning ID and CreatedAt inside
	// the same transaction. Appends for the same service are serialized so
	// "most recent" is well-defined under concurrent writers.
	// Returns ErrServiceNotFound if the referenced service does not exist.
	Append(ctx context.Context, upd *Update) error

	// Recent retrieves at most limit observations for a service, newest
	// first. A restartable read with no side effects.
	Recent(ctx context.Context, serviceID int64, limit int) ([]*Update, error)

	// Latest retrieves the most recent observation for a service.
	// Returns ErrUpdateNotFound if the service has no history.
	Latest(ctx context.Context, serviceID int64) (*Update, error)

	// List retrieves at most limit observations across all services,
	// newest first.
	List(ctx context.Context, limit int) ([]*Update, error)

	// Get retrieves an observation by ID.
	// Returns ErrUpdateNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*Update, error)
}
