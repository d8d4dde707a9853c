package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL purchase repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Record stores a purchase. The unique constraint on transaction_id makes
// redeeming the same store transaction twice a no-op insert, reported as
// ErrAlreadyRecorded.
func (r *PostgresRepository) Record(ctx context.Context, p Purchase) (*Purchase, error) {
	query := `
		INSERT INTO purchases (id, device_token, platform, transaction_id, product_id, purchased_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id, device_token, platform, transaction_id, product_id, purchased_at, created_at
	`

	stored, err := scanPurchase(r.pool.QueryRow(ctx, query,
		p.ID, p.DeviceToken, string(p.Platform), p.TransactionID, p.ProductID, p.PurchasedAt, p.CreatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyRecorded
		}
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	return stored, nil
}

// ListByDevice returns all purchases redeemed by a device, newest first.
func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceToken string) ([]Purchase, error) {
	query := `
		SELECT id, device_token, platform, transaction_id, product_id, purchased_at, created_at
		FROM purchases
		WHERE device_token = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, deviceToken)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func scanPurchase(row pgx.Row) (*Purchase, error) {
	var (
		p        Purchase
		platform string
	)
	if err := row.Scan(&p.ID, &p.DeviceToken, &platform, &p.TransactionID, &p.ProductID, &p.PurchasedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Platform = Platform(platform)
	return &p, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
