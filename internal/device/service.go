package device

import (
	"context"
	"errors"
	"time"
)

// Service provides device identity and entitlement operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// ServiceConfig holds configuration for the device service.
type ServiceConfig struct {
	Repository Repository

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates a new device service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: cfg.Repository, now: now}
}

// EnsureDevice creates the device on first sighting or refreshes its
// last-active timestamp. Idempotent.
func (s *Service) EnsureDevice(ctx context.Context, token string) (*Device, error) {
	return s.repo.Ensure(ctx, token, s.now())
}

// Get retrieves a device record.
func (s *Service) Get(ctx context.Context, token string) (*Device, error) {
	return s.repo.Get(ctx, token)
}

// GetTier resolves the entitlement tier for a device token. Unknown
// devices default to FREE; they are never treated as premium.
func (s *Service) GetTier(ctx context.Context, token string) (Tier, error) {
	d, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return TierFree, nil
		}
		return TierFree, err
	}
	return d.Tier, nil
}

// Upgrade promotes a device to the premium tier.
func (s *Service) Upgrade(ctx context.Context, token string) error {
	return s.repo.SetTier(ctx, token, TierPremium, s.now())
}
