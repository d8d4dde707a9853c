package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger is a PostgreSQL implementation of Ledger and Reporter.
//
// All serialization happens inside a single conditional upsert: PostgreSQL
// takes a row lock on the (device_token, usage_date) row for the duration
// of the statement, so no in-process locking is needed and decisions for
// different devices proceed fully in parallel.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a new PostgreSQL-backed ledger.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// AdmitAndIncrement atomically admits and counts one request.
//
// The statement inserts a fresh row at count 1 when no row exists for the
// day, or increments the existing row only while its count is still below
// the limit. When the guard fails the statement affects no rows and the
// current count is read back unchanged.
func (l *PostgresLedger) AdmitAndIncrement(ctx context.Context, deviceToken, usageDate string, mode Mode, limit int) (bool, int, error) {
	if limit <= 0 {
		used, err := l.Peek(ctx, deviceToken, usageDate)
		return false, used, err
	}

	genzToEnglish := 0
	englishToGenz := 0
	switch mode {
	case ModeGenZToEnglish:
		genzToEnglish = 1
	case ModeEnglishToGenZ:
		englishToGenz = 1
	default:
		return false, 0, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	query := `
		INSERT INTO daily_usage (id, device_token, usage_date, total_count, mode_genz_to_english, mode_english_to_genz)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (device_token, usage_date) DO UPDATE SET
			total_count = daily_usage.total_count + 1,
			mode_genz_to_english = daily_usage.mode_genz_to_english + $4,
			mode_english_to_genz = daily_usage.mode_english_to_genz + $5
		WHERE daily_usage.total_count < $6
		RETURNING total_count
	`

	var total int
	err := l.pool.QueryRow(ctx, query,
		uuid.New().String(), deviceToken, usageDate,
		genzToEnglish, englishToGenz, limit,
	).Scan(&total)
	if err == nil {
		return true, total, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, 0, fmt.Errorf("%w: admit and increment: %s", ErrStorageUnavailable, err)
	}

	// Limit already reached; report the unchanged count.
	used, err := l.Peek(ctx, deviceToken, usageDate)
	if err != nil {
		return false, 0, err
	}
	return false, used, nil
}

// Peek returns the current count for display.
func (l *PostgresLedger) Peek(ctx context.Context, deviceToken, usageDate string) (int, error) {
	query := `
		SELECT total_count
		FROM daily_usage
		WHERE device_token = $1 AND usage_date = $2
	`

	var total int
	err := l.pool.QueryRow(ctx, query, deviceToken, usageDate).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: peek: %s", ErrStorageUnavailable, err)
	}
	return total, nil
}

// DailyStats returns per-day totals for dates >= sinceDate, newest first.
func (l *PostgresLedger) DailyStats(ctx context.Context, sinceDate string) ([]DayStats, error) {
	query := `
		SELECT usage_date,
			SUM(total_count),
			COUNT(DISTINCT device_token),
			SUM(mode_genz_to_english),
			SUM(mode_english_to_genz)
		FROM daily_usage
		WHERE usage_date >= $1
		GROUP BY usage_date
		ORDER BY usage_date DESC
	`

	rows, err := l.pool.Query(ctx, query, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: daily stats: %s", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var stats []DayStats
	for rows.Next() {
		var day DayStats
		if err := rows.Scan(&day.Date, &day.Translations, &day.ActiveDevices, &day.GenZToEnglish, &day.EnglishToGenZ); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		stats = append(stats, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: daily stats: %s", ErrStorageUnavailable, err)
	}
	return stats, nil
}

// DeviceBreakdown returns per-device totals for dates >= sinceDate.
func (l *PostgresLedger) DeviceBreakdown(ctx context.Context, sinceDate string) ([]DeviceStats, error) {
	query := `
		SELECT device_token,
			SUM(total_count),
			COUNT(*),
			MAX(usage_date)
		FROM daily_usage
		WHERE usage_date >= $1
		GROUP BY device_token
		ORDER BY SUM(total_count) DESC, device_token
	`

	rows, err := l.pool.Query(ctx, query, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: device breakdown: %s", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var stats []DeviceStats
	for rows.Next() {
		var dev DeviceStats
		if err := rows.Scan(&dev.DeviceToken, &dev.Translations, &dev.ActiveDays, &dev.LastSeenDate); err != nil {
			return nil, fmt.Errorf("scan device breakdown: %w", err)
		}
		stats = append(stats, dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: device breakdown: %s", ErrStorageUnavailable, err)
	}
	return stats, nil
}

// Ensure PostgresLedger implements the ledger interfaces.
var (
	_ Ledger   = (*PostgresLedger)(nil)
	_ Reporter = (*PostgresLedger)(nil)
)
