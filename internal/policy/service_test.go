package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slanglate/slanglate/internal/policy"
)

func TestService_Snapshot_Defaults(t *testing.T) {
	svc := policy.NewService(policy.ServiceConfig{
		Repository: policy.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})

	p := svc.Snapshot(context.Background())
	assert.Equal(t, policy.DefaultFreeDailyLimit, p.FreeDailyLimit)
	assert.Equal(t, policy.DefaultPremiumDailyLimit, p.PremiumDailyLimit)
	assert.Equal(t, policy.DefaultAdShowEvery, p.AdShowEvery)
}

func TestService_Snapshot_StoredOverrides(t *testing.T) {
	repo := policy.NewInMemoryRepository()
	svc := policy.NewService(policy.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
	ctx := context.Background()

	require.NoError(t, svc.SetSetting(ctx, policy.KeyFreeDailyLimit, 25))
	require.NoError(t, svc.SetSetting(ctx, policy.KeyAdShowEvery, 5))

	p := svc.Snapshot(ctx)
	assert.Equal(t, 25, p.FreeDailyLimit)
	assert.Equal(t, policy.DefaultPremiumDailyLimit, p.PremiumDailyLimit)
	assert.Equal(t, 5, p.AdShowEvery)
}

func TestService_Snapshot_CacheReused(t *testing.T) {
	repo := &countingRepo{inner: policy.NewInMemoryRepository()}
	svc := policy.NewService(policy.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   time.Minute,
	})
	ctx := context.Background()

	svc.Snapshot(ctx)
	svc.Snapshot(ctx)
	svc.Snapshot(ctx)

	assert.Equal(t, 1, repo.getAllCalls, "snapshot within TTL should not hit storage")
}

func TestService_Snapshot_StorageFailureFallsBack(t *testing.T) {
	repo := &countingRepo{inner: policy.NewInMemoryRepository(), fail: true}
	svc := policy.NewService(policy.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	p := svc.Snapshot(context.Background())
	assert.Equal(t, policy.DefaultFreeDailyLimit, p.FreeDailyLimit)
}

type countingRepo struct {
	inner       policy.Repository
	fail        bool
	getAllCalls int
}

func (r *countingRepo) GetAll(ctx context.Context) (map[string]*policy.Setting, error) {
	r.getAllCalls++
	if r.fail {
		return nil, errors.New("storage down")
	}
	return r.inner.GetAll(ctx)
}

func (r *countingRepo) Set(ctx context.Context, s *policy.Setting) error {
	return r.inner.Set(ctx, s)
}
