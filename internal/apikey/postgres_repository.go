package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL API key repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const keyColumns = `id, label, token, revoked, created_at, last_used_at`

// FindByToken retrieves a key by exact match on its secret token.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE token = $1`
	return r.scanKey(ctx, query, token)
}

// TouchLastUsed records that a key was used.
func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $2 WHERE id = $1`,
		id, at,
	)
	return err
}

// Create persists a new key.
func (r *PostgresRepository) Create(ctx context.Context, key *Key) error {
	query := `
		INSERT INTO api_keys (id, label, token, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.Label,
		key.Token,
		key.Revoked,
		key.CreatedAt,
	)
	return err
}

// Get retrieves a key by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE id = $1`
	return r.scanKey(ctx, query, id)
}

// List retrieves all keys, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*Key
	for rows.Next() {
		var key Key
		if err := rows.Scan(
			&key.ID,
			&key.Label,
			&key.Token,
			&key.Revoked,
			&key.CreatedAt,
			&key.LastUsedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, &key)
	}
	return keys, rows.Err()
}

// Revoke marks a key as revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE api_keys SET revoked = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (r *PostgresRepository) scanKey(ctx context.Context, query string, arg interface{}) (*Key, error) {
	var key Key
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&key.ID,
		&key.Label,
		&key.Token,
		&key.Revoked,
		&key.CreatedAt,
		&key.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
