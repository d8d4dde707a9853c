package policy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL policy repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetAll retrieves all stored settings.
func (r *PostgresRepository) GetAll(ctx context.Context) (map[string]*Setting, error) {
	query := `
		SELECT key, value, updated_at
		FROM policy_settings
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get policy settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]*Setting)
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan policy setting: %w", err)
		}
		settings[s.Key] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get policy settings: %w", err)
	}
	return settings, nil
}

// Set creates or updates a setting.
func (r *PostgresRepository) Set(ctx context.Context, setting *Setting) error {
	query := `
		INSERT INTO policy_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query, setting.Key, setting.Value, setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set policy setting: %w", err)
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
