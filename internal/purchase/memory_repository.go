package purchase

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Intended for tests and single-process development.
type InMemoryRepository struct {
	mu            sync.RWMutex
	byTransaction map[string]Purchase
}

// NewInMemoryRepository creates a new in-memory purchase repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byTransaction: make(map[string]Purchase),
	}
}

// Record stores a purchase, rejecting replayed transaction IDs.
func (r *InMemoryRepository) Record(_ context.Context, p Purchase) (*Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byTransaction[p.TransactionID]; ok {
		return nil, ErrAlreadyRecorded
	}
	r.byTransaction[p.TransactionID] = p
	stored := p
	return &stored, nil
}

// ListByDevice returns all purchases redeemed by a device, newest first.
func (r *InMemoryRepository) ListByDevice(_ context.Context, deviceToken string) ([]Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var purchases []Purchase
	for _, p := range r.byTransaction {
		if p.DeviceToken == deviceToken {
			purchases = append(purchases, p)
		}
	}
	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
	})
	return purchases, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
