// Package purchase verifies store purchases and grants premium
// entitlements.
package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/device"
)

// ServiceConfig holds dependencies for the purchase service.
type ServiceConfig struct {
	Verifier   Verifier
	Repository Repository
	Devices    *device.Service
	Logger     zerolog.Logger

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Service verifies signed transactions, records them, and upgrades the
// redeeming device to premium.
type Service struct {
	verifier   Verifier
	repository Repository
	devices    *device.Service
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a purchase service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		verifier:   cfg.Verifier,
		repository: cfg.Repository,
		devices:    cfg.Devices,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Upgrade verifies the signed transaction and flips the device to premium.
// The purchase record is written before the tier change; a replayed
// transaction fails on the record step and never touches the tier.
func (s *Service) Upgrade(ctx context.Context, deviceToken, signedTransaction string) (*Purchase, error) {
	claims, err := s.verifier.Verify(ctx, signedTransaction)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("device_token", device.TokenPrefix(deviceToken)).
			Msg("purchase verification failed")
		return nil, err
	}

	// The device row may not exist yet when the upgrade is the very first
	// call from this device.
	if _, err := s.devices.EnsureDevice(ctx, deviceToken); err != nil {
		return nil, fmt.Errorf("ensuring device: %w", err)
	}

	stored, err := s.repository.Record(ctx, Purchase{
		ID:            uuid.NewString(),
		DeviceToken:   deviceToken,
		Platform:      PlatformAppStore,
		TransactionID: claims.TransactionID,
		ProductID:     claims.ProductID,
		PurchasedAt:   claims.PurchaseDate,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording purchase: %w", err)
	}

	if err := s.devices.Upgrade(ctx, deviceToken); err != nil {
		return nil, fmt.Errorf("upgrading device: %w", err)
	}

	s.logger.Info().
		Str("device_token", device.TokenPrefix(deviceToken)).
		Str("product_id", claims.ProductID).
		Msg("premium upgrade granted")

	return stored, nil
}

// History returns the device's recorded purchases, newest first.
func (s *Service) History(ctx context.Context, deviceToken string) ([]Purchase, error) {
	return s.repository.ListByDevice(ctx, deviceToken)
}
