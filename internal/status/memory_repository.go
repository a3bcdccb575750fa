package status

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryServiceRepository is an in-memory implementation of
// ServiceRepository. This is intended for testing. Production should use
// PostgresServiceRepository.
type InMemoryServiceRepository struct {
	mu       sync.RWMutex
	nextID   int64
	services map[int64]*Service
}

// NewInMemoryServiceRepository creates a new in-memory service repository.
func NewInMemoryServiceRepository() *InMemoryServiceRepository {
	return &InMemoryServiceRepository{services: make(map[int64]*Service)}
}

// List retrieves services ordered by display order then name.
func (r *InMemoryServiceRepository) List(_ context.Context, activeOnly bool) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var services []*Service
	for _, svc := range r.services {
		if activeOnly && !svc.Active {
			continue
		}
		cpy := *svc
		services = append(services, &cpy)
	}

	sort.Slice(services, func(i, j int) bool {
		if services[i].Order != services[j].Order {
			return services[i].Order < services[j].Order
		}
		return services[i].Name < services[j].Name
	})
	return services, nil
}

// Get retrieves a service by ID.
func (r *InMemoryServiceRepository) Get(_ context.Context, id int64) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	cpy := *svc
	return &cpy, nil
}

// Create persists a new service.
func (r *InMemoryServiceRepository) Create(_ context.Context, svc *Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	svc.ID = r.nextID
	svc.CreatedAt = time.Now()

	cpy := *svc
	r.services[svc.ID] = &cpy
	return nil
}

// Update persists changes to an existing service.
func (r *InMemoryServiceRepository) Update(_ context.Context, svc *Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[svc.ID]; !ok {
		return ErrServiceNotFound
	}
	cpy := *svc
	r.services[svc.ID] = &cpy
	return nil
}

// Delete removes a service.
func (r *InMemoryServiceRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return ErrServiceNotFound
	}
	delete(r.services, id)
	return nil
}

// Ensure InMemoryServiceRepository implements ServiceRepository.
var _ ServiceRepository = (*InMemoryServiceRepository)(nil)

// InMemoryUpdateRepository is an in-memory implementation of
// UpdateRepository. A single mutex serializes all appends, which trivially
// satisfies the per-service ordering contract.
type InMemoryUpdateRepository struct {
	mu       sync.RWMutex
	nextID   int64
	updates  []*Update
	services *InMemoryServiceRepository
}

// NewInMemoryUpdateRepository creates a new in-memory status update
// repository backed by the given service repository for existence checks.
func NewInMemoryUpdateRepository(services *InMemoryServiceRepository) *InMemoryUpdateRepository {
	return &InMemoryUpdateRepository{services: services}
}

// Append persists a new observation. The existence check runs under the
// write lock so an interleaved service delete cannot slip between check and
// insert.
func (r *InMemoryUpdateRepository) Append(ctx context.Context, upd *Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, err := r.services.Get(ctx, upd.ServiceID)
	if err != nil {
		return err
	}

	r.nextID++
	upd.ID = r.nextID
	upd.ServiceName = svc.Name
	upd.CreatedAt = time.Now()

	cpy := *upd
	r.updates = append(r.updates, &cpy)
	return nil
}

// Recent retrieves at most limit observations for a service, newest first.
func (r *InMemoryUpdateRepository) Recent(_ context.Context, serviceID int64, limit int) ([]*Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var updates []*Update
	for i := len(r.updates) - 1; i >= 0 && len(updates) < limit; i-- {
		if r.updates[i].ServiceID != serviceID {
			continue
		}
		cpy := *r.updates[i]
		updates = append(updates, &cpy)
	}
	return updates, nil
}

// Latest retrieves the most recent observation for a service.
func (r *InMemoryUpdateRepository) Latest(_ context.Context, serviceID int64) (*Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].ServiceID == serviceID {
			cpy := *r.updates[i]
			return &cpy, nil
		}
	}
	return nil, ErrUpdateNotFound
}

// List retrieves at most limit observations across all services, newest first.
func (r *InMemoryUpdateRepository) List(_ context.Context, limit int) ([]*Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var updates []*Update
	for i := len(r.updates) - 1; i >= 0 && len(updates) < limit; i-- {
		cpy := *r.updates[i]
		updates = append(updates, &cpy)
	}
	return updates, nil
}

// Get retrieves an observation by ID.
func (r *InMemoryUpdateRepository) Get(_ context.Context, id int64) (*Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, upd := range r.updates {
		if upd.ID == id {
			cpy := *upd
			return &cpy, nil
		}
	}
	return nil, ErrUpdateNotFound
}

// Ensure InMemoryUpdateRepository implements UpdateRepository.
var _ UpdateRepository = (*InMemoryUpdateRepository)(nil)
