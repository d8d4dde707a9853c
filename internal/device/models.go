// Package device provides anonymous device identity and entitlement storage.
//
// # Identity model
//
// Devices are identified by an opaque, client-generated token carried in the
// X-Device-ID header. The token stands in for user identity: it is not tied
// to any account, carries no PII, and changes when the hardware changes.
// The service deliberately makes no attempt to unify identities across
// devices.
package device

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Tier is the entitlement level that determines a device's daily allowance.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// Device is the durable record for one device token.
type Device struct {
	// Token is the opaque client-supplied identifier (primary key).
	Token string

	// Tier is the entitlement level. New devices always start FREE;
	// unknown devices are never treated as premium.
	Tier Tier

	// CreatedAt is when the token was first seen.
	CreatedAt time.Time

	// LastActiveAt is updated at most once per rolling hour to bound
	// write amplification.
	LastActiveAt time.Time
}

// LastActiveThrottle is the minimum staleness before LastActiveAt is
// rewritten. Throttling bounds write load; it is not a correctness
// requirement.
const LastActiveThrottle = time.Hour

// TokenPrefix returns the first 8 characters of a token for log lines.
// Full tokens are never logged.
func TokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
