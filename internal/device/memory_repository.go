package device

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Intended for tests and single-process development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		devices: make(map[string]*Device),
	}
}

// Ensure creates or refreshes a device row.
func (r *InMemoryRepository) Ensure(_ context.Context, token string, now time.Time) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[token]
	if !ok {
		d = &Device{
			Token:        token,
			Tier:         TierFree,
			CreatedAt:    now,
			LastActiveAt: now,
		}
		r.devices[token] = d
		return copyDevice(d), nil
	}

	if now.Sub(d.LastActiveAt) > LastActiveThrottle {
		d.LastActiveAt = now
	}
	return copyDevice(d), nil
}

// Get retrieves a device by token.
func (r *InMemoryRepository) Get(_ context.Context, token string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[token]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// SetTier updates the entitlement tier for a device.
func (r *InMemoryRepository) SetTier(_ context.Context, token string, tier Tier, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[token]
	if !ok {
		return ErrDeviceNotFound
	}
	d.Tier = tier
	d.LastActiveAt = now
	return nil
}

// copyDevice returns a copy to prevent mutation through shared pointers.
func copyDevice(d *Device) *Device {
	if d == nil {
		return nil
	}
	deviceCopy := *d
	return &deviceCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
