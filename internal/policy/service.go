package policy

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the policy service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long a resolved policy snapshot is reused before
	// hitting storage again. Defaults to one minute.
	CacheTTL time.Duration
}

// Service resolves policy snapshots with caching and default fallback.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration

	mu          sync.RWMutex
	cache       Policy
	cacheExpiry time.Time
}

// NewService creates a new policy service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
		cache:    DefaultPolicy(),
	}
}

// Snapshot returns the current policy. Stored values override defaults;
// a storage failure falls back to the last cached snapshot (or defaults)
// because policy resolution must not take the admission path down.
func (s *Service) Snapshot(ctx context.Context) Policy {
	s.mu.RLock()
	if time.Now().Before(s.cacheExpiry) {
		p := s.cache
		s.mu.RUnlock()
		return p
	}
	s.mu.RUnlock()

	return s.refresh(ctx)
}

// SetSetting stores one policy value and invalidates the cache.
func (s *Service) SetSetting(ctx context.Context, key string, value int) error {
	err := s.repo.Set(ctx, &Setting{Key: key, Value: value, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cacheExpiry = time.Time{}
	s.mu.Unlock()
	return nil
}

func (s *Service) refresh(ctx context.Context) Policy {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("policy refresh failed, using cached values")
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.cache
	}

	p := DefaultPolicy()
	if v, ok := stored[KeyFreeDailyLimit]; ok && v.Value >= 0 {
		p.FreeDailyLimit = v.Value
	}
	if v, ok := stored[KeyPremiumDailyLimit]; ok && v.Value >= 0 {
		p.PremiumDailyLimit = v.Value
	}
	if v, ok := stored[KeyAdShowEvery]; ok && v.Value > 0 {
		p.AdShowEvery = v.Value
	}

	s.mu.Lock()
	s.cache = p
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()
	return p
}
