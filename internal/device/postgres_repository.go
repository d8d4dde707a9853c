package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Ensure creates or refreshes a device row.
//
// The upsert only rewrites last_active_at when it is more than an hour
// stale, so a chatty device costs at most one row write per hour. When the
// guard fails the statement affects no rows and the current row is read
// back instead.
func (r *PostgresRepository) Ensure(ctx context.Context, token string, now time.Time) (*Device, error) {
	query := `
		INSERT INTO devices (device_token, tier, created_at, last_active_at)
		VALUES ($1, 'FREE', $2, $2)
		ON CONFLICT (device_token) DO UPDATE SET
			last_active_at = EXCLUDED.last_active_at
		WHERE devices.last_active_at < EXCLUDED.last_active_at - INTERVAL '1 hour'
		RETURNING device_token, tier, created_at, last_active_at
	`

	d, err := r.scanDevice(r.pool.QueryRow(ctx, query, token, now))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ensure device: %w", err)
	}

	// Throttled update; row exists and is fresh enough.
	return r.Get(ctx, token)
}

// Get retrieves a device by token.
func (r *PostgresRepository) Get(ctx context.Context, token string) (*Device, error) {
	query := `
		SELECT device_token, tier, created_at, last_active_at
		FROM devices
		WHERE device_token = $1
	`

	d, err := r.scanDevice(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

// SetTier updates the entitlement tier for a device.
func (r *PostgresRepository) SetTier(ctx context.Context, token string, tier Tier, now time.Time) error {
	query := `
		UPDATE devices
		SET tier = $2, last_active_at = $3
		WHERE device_token = $1
	`

	tag, err := r.pool.Exec(ctx, query, token, string(tier), now)
	if err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (r *PostgresRepository) scanDevice(row pgx.Row) (*Device, error) {
	var (
		d    Device
		tier string
	)
	if err := row.Scan(&d.Token, &tier, &d.CreatedAt, &d.LastActiveAt); err != nil {
		return nil, err
	}
	d.Tier = Tier(tier)
	return &d, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
