// Package policy provides the entitlement policy table and ad cadence
// settings as remote configuration.
//
// Values live in the database so limits can be tuned without a deploy, are
// cached in memory with a short TTL, and fall back to hard defaults when
// storage is unreachable. The cache only affects how fast a policy *change*
// propagates; admission decisions still re-resolve the device's tier on
// every call.
package policy

import (
	"errors"
	"time"
)

// ErrSettingNotFound is returned when a policy setting is not stored.
var ErrSettingNotFound = errors.New("policy setting not found")

// Setting keys.
const (
	KeyFreeDailyLimit    = "free_daily_limit"
	KeyPremiumDailyLimit = "premium_daily_limit"
	KeyAdShowEvery       = "ad_show_every"
)

// Default values, applied when a setting is absent or storage is down.
const (
	DefaultFreeDailyLimit    = 10
	DefaultPremiumDailyLimit = 200
	DefaultAdShowEvery       = 3
)

// Setting is one stored policy value.
type Setting struct {
	Key       string
	Value     int
	UpdatedAt time.Time
}

// Policy is a resolved snapshot of all policy values.
type Policy struct {
	// FreeDailyLimit is the daily translation allowance for FREE devices.
	FreeDailyLimit int

	// PremiumDailyLimit is the daily translation allowance for PREMIUM
	// devices.
	PremiumDailyLimit int

	// AdShowEvery is the interstitial cadence: show an ad every Nth
	// translation request since the last completed ad.
	AdShowEvery int
}

// DefaultPolicy returns the built-in policy values.
func DefaultPolicy() Policy {
	return Policy{
		FreeDailyLimit:    DefaultFreeDailyLimit,
		PremiumDailyLimit: DefaultPremiumDailyLimit,
		AdShowEvery:       DefaultAdShowEvery,
	}
}
