// Package admission decides whether a quota-consuming request may proceed.
//
// A decision combines three inputs resolved fresh on every call: the
// device's entitlement tier, the policy table's limit for that tier, and
// the ledger's atomic check-and-increment. Nothing is cached across calls,
// so a device upgraded mid-day sees its new limit on the very next request.
//
// On storage failure the decider fails closed: denying the request is the
// explicit policy here, because failing open would let a client convert
// repeated storage errors into unlimited usage.
package admission

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/policy"
	"github.com/slanglate/slanglate/internal/quota"
)

// Decision is the verdict for one admission request.
type Decision struct {
	// Admitted reports whether the request may proceed. A denial is a
	// first-class outcome, not an error.
	Admitted bool

	// Tier is the entitlement tier the decision was made under.
	Tier device.Tier

	// Used is today's count after the decision.
	Used int

	// Limit is the daily allowance applied.
	Limit int

	// Remaining is max(0, Limit-Used).
	Remaining int
}

// DeciderConfig holds configuration for the decider.
type DeciderConfig struct {
	Devices *device.Service
	Ledger  quota.Ledger
	Policy  *policy.Service
	Logger  zerolog.Logger

	// Location is the fixed reference timezone for usage-date buckets.
	// Defaults to UTC. Never derived from the caller's wall clock.
	Location *time.Location

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Decider makes admission decisions.
type Decider struct {
	devices *device.Service
	ledger  quota.Ledger
	policy  *policy.Service
	logger  zerolog.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewDecider creates a new admission decider.
func NewDecider(cfg DeciderConfig) *Decider {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Decider{
		devices: cfg.Devices,
		ledger:  cfg.Ledger,
		policy:  cfg.Policy,
		logger:  cfg.Logger,
		loc:     loc,
		now:     now,
	}
}

// Decide admits and charges one request, or denies it. The quota charges
// attempts: once the increment is committed it is never rolled back, even
// if the downstream translation fails.
//
// Any storage error results in a denial. The returned error lets the
// caller distinguish "quota exhausted" (nil error) from "storage down"
// (quota.ErrStorageUnavailable).
func (d *Decider) Decide(ctx context.Context, deviceToken string, mode quota.Mode) (Decision, error) {
	dev, err := d.devices.EnsureDevice(ctx, deviceToken)
	if err != nil {
		d.logger.Error().Err(err).
			Str("device", device.TokenPrefix(deviceToken)).
			Msg("entitlement lookup failed, denying request")
		return Decision{Admitted: false, Tier: device.TierFree}, err
	}

	limit := d.limitFor(ctx, dev.Tier)

	today := quota.DateOf(d.now(), d.loc)
	admitted, used, err := d.ledger.AdmitAndIncrement(ctx, deviceToken, today, mode, limit)
	if err != nil {
		// Fail closed.
		d.logger.Error().Err(err).
			Str("device", device.TokenPrefix(deviceToken)).
			Str("usage_date", today).
			Msg("quota ledger unavailable, denying request")
		return Decision{Admitted: false, Tier: dev.Tier, Limit: limit}, err
	}

	return Decision{
		Admitted:  admitted,
		Tier:      dev.Tier,
		Used:      used,
		Limit:     limit,
		Remaining: remaining(limit, used),
	}, nil
}

// Usage reports current usage without charging. Read-only; used by the
// display endpoint, never for admission.
func (d *Decider) Usage(ctx context.Context, deviceToken string) (Decision, error) {
	tier, err := d.devices.GetTier(ctx, deviceToken)
	if err != nil {
		return Decision{Tier: device.TierFree}, err
	}

	limit := d.limitFor(ctx, tier)

	today := quota.DateOf(d.now(), d.loc)
	used, err := d.ledger.Peek(ctx, deviceToken, today)
	if err != nil {
		return Decision{Tier: tier, Limit: limit}, err
	}

	return Decision{
		Admitted:  used < limit,
		Tier:      tier,
		Used:      used,
		Limit:     limit,
		Remaining: remaining(limit, used),
	}, nil
}

// Today returns the current usage-date bucket in the reference timezone.
func (d *Decider) Today() string {
	return quota.DateOf(d.now(), d.loc)
}

func (d *Decider) limitFor(ctx context.Context, tier device.Tier) int {
	p := d.policy.Snapshot(ctx)
	if tier == device.TierPremium {
		return p.PremiumDailyLimit
	}
	return p.FreeDailyLimit
}

func remaining(limit, used int) int {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}
