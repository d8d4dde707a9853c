package policy

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for policy setting storage.
type Repository interface {
	// GetAll retrieves all stored settings, keyed by setting key.
	GetAll(ctx context.Context) (map[string]*Setting, error)

	// Set creates or updates a setting.
	Set(ctx context.Context, setting *Setting) error
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	settings map[string]*Setting
}

// NewInMemoryRepository creates a new in-memory policy repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		settings: make(map[string]*Setting),
	}
}

// GetAll retrieves all stored settings.
func (r *InMemoryRepository) GetAll(_ context.Context) (map[string]*Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Setting, len(r.settings))
	for k, s := range r.settings {
		settingCopy := *s
		out[k] = &settingCopy
	}
	return out, nil
}

// Set creates or updates a setting.
func (r *InMemoryRepository) Set(_ context.Context, setting *Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settingCopy := *setting
	if settingCopy.UpdatedAt.IsZero() {
		settingCopy.UpdatedAt = time.Now()
	}
	r.settings[setting.Key] = &settingCopy
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
