package purchase

import "context"

// Repository persists purchase records.
type Repository interface {
	// Record stores a purchase. Returns ErrAlreadyRecorded when the
	// transaction ID was redeemed before.
	Record(ctx context.Context, p Purchase) (*Purchase, error)

	// ListByDevice returns all purchases redeemed by a device, newest
	// first.
	ListByDevice(ctx context.Context, deviceToken string) ([]Purchase, error)
}
