package device

import (
	"context"
	"time"
)

// Repository defines the interface for device persistence.
// All mutation of device rows goes through this interface.
type Repository interface {
	// Ensure creates the device row with tier FREE on first sighting,
	// or refreshes LastActiveAt if it is more than LastActiveThrottle
	// stale. The returned device reflects the stored state.
	Ensure(ctx context.Context, token string, now time.Time) (*Device, error)

	// Get retrieves a device by token. Returns ErrDeviceNotFound if the
	// token has never been seen.
	Get(ctx context.Context, token string) (*Device, error)

	// SetTier updates the entitlement tier for a device.
	SetTier(ctx context.Context, token string, tier Tier, now time.Time) error
}
