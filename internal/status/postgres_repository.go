package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresServiceRepository is a PostgreSQL implementation of ServiceRepository.
type PostgresServiceRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresServiceRepository creates a new PostgreSQL service repository.
func NewPostgresServiceRepository(pool *pgxpool.Pool) *PostgresServiceRepository {
	return &PostgresServiceRepository{pool: pool}
}

// List retrieves services ordered by display order then name.
func (r *PostgresServiceRepository) List(ctx context.Context, activeOnly bool) ([]*Service, error) {
	query := `
		SELECT id, name, description, display_order, is_active, created_at
		FROM services
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY display_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Description,
			&svc.Order,
			&svc.Active,
			&svc.CreatedAt,
		); err != nil {
			return nil, err
		}
		services = append(services, &svc)
	}

	return services, rows.Err()
}

// Get retrieves a service by ID.
func (r *PostgresServiceRepository) Get(ctx context.Context, id int64) (*Service, error) {
	query := `
		SELECT id, name, description, display_order, is_active, created_at
		FROM services
		WHERE id = $1
	`

	var svc Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.Order,
		&svc.Active,
		&svc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &svc, nil
}

// Create persists a new service.
func (r *PostgresServiceRepository) Create(ctx context.Context, svc *Service) error {
	query := `
		INSERT INTO services (name, description, display_order, is_active, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, created_at
	`

	return r.pool.QueryRow(ctx, query,
		svc.Name,
		svc.Description,
		svc.Order,
		svc.Active,
	).Scan(&svc.ID, &svc.CreatedAt)
}

// Update persists changes to an existing service.
func (r *PostgresServiceRepository) Update(ctx context.Context, svc *Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, display_order = $4, is_active = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		svc.ID,
		svc.Name,
		svc.Description,
		svc.Order,
		svc.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// Delete removes a service and, via cascade, its history.
func (r *PostgresServiceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// Ensure PostgresServiceRepository implements ServiceRepository.
var _ ServiceRepository = (*PostgresServiceRepository)(nil)

// PostgresUpdateRepository is a PostgreSQL implementation of UpdateRepository.
type PostgresUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUpdateRepository creates a new PostgreSQL status update repository.
func NewPostgresUpdateRepository(pool *pgxpool.Pool) *PostgresUpdateRepository {
	return &PostgresUpdateRepository{pool: pool}
}

const updateColumns = `
	u.id, u.service_id, s.name, u.status, u.comments, u.plan,
	u.created_by, u.created_at
`

// Append persists a new observation. The service row is locked for the
// duration of the transaction so appends for the same service are totally
// ordered, and created_at is assigned inside that transaction. Appends for
// different services lock different rows and never block each other.
func (r *PostgresUpdateRepository) Append(ctx context.Context, upd *Update) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx,
		`SELECT name FROM services WHERE id = $1 FOR UPDATE`,
		upd.ServiceID,
	).Scan(&upd.ServiceName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrServiceNotFound
		}
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO status_updates (service_id, status, comments, plan, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, created_at
	`,
		upd.ServiceID,
		upd.Status,
		upd.Comments,
		upd.Plan,
		upd.CreatedBy,
	).Scan(&upd.ID, &upd.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Recent retrieves at most limit observations for a service, newest first.
func (r *PostgresUpdateRepository) Recent(ctx context.Context, serviceID int64, limit int) ([]*Update, error) {
	query := `
		SELECT ` + updateColumns + `
		FROM status_updates u
		JOIN services s ON s.id = u.service_id
		WHERE u.service_id = $1
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, serviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUpdates(rows)
}

// Latest retrieves the most recent observation for a service.
func (r *PostgresUpdateRepository) Latest(ctx context.Context, serviceID int64) (*Update, error) {
	query := `
		SELECT ` + updateColumns + `
		FROM status_updates u
		JOIN services s ON s.id = u.service_id
		WHERE u.service_id = $1
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT 1
	`

	upd, err := r.scanUpdate(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	return upd, nil
}

// List retrieves at most limit observations across all services, newest first.
func (r *PostgresUpdateRepository) List(ctx context.Context, limit int) ([]*Update, error) {
	query := `
		SELECT ` + updateColumns + `
		FROM status_updates u
		JOIN services s ON s.id = u.service_id
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUpdates(rows)
}

// Get retrieves an observation by ID.
func (r *PostgresUpdateRepository) Get(ctx context.Context, id int64) (*Update, error) {
	query := `
		SELECT ` + updateColumns + `
		FROM status_updates u
		JOIN services s ON s.id = u.service_id
		WHERE u.id = $1
	`

	return r.scanUpdate(ctx, query, id)
}

func (r *PostgresUpdateRepository) scanUpdate(ctx context.Context, query string, args ...interface{}) (*Update, error) {
	var upd Update
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&upd.ID,
		&upd.ServiceID,
		&upd.ServiceName,
		&upd.Status,
		&upd.Comments,
		&upd.Plan,
		&upd.CreatedBy,
		&upd.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUpdateNotFound
		}
		return nil, err
	}
	return &upd, nil
}

func scanUpdates(rows pgx.Rows) ([]*Update, error) {
	var updates []*Update
	for rows.Next() {
		var upd Update
		if err := rows.Scan(
			&upd.ID,
			&upd.ServiceID,
			&upd.ServiceName,
			&upd.Status,
			&upd.Comments,
			&upd.Plan,
			&upd.CreatedBy,
			&upd.CreatedAt,
		); err != nil {
			return nil, err
		}
		updates = append(updates, &upd)
	}
	return updates, rows.Err()
}

// Ensure PostgresUpdateRepository implements UpdateRepository.
var _ UpdateRepository = (*PostgresUpdateRepository)(nil)
