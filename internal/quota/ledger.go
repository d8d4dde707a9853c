// Package quota provides the durable, date-bucketed usage ledger.
//
// The ledger keeps one counter row per (device token, usage date) pair and
// exposes exactly one writer path: AdmitAndIncrement, an atomic
// check-and-increment. All admission decisions go through that path so two
// concurrent requests for the same device can never both slip past the
// daily limit. Peek is read-only and exists for display purposes only.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day bucket format used as part of the
// counter key. Dates are always rendered in the service's reference
// timezone, never the caller's.
const DateLayout = "2006-01-02"

// Ledger errors.
var (
	// ErrStorageUnavailable indicates the backing store could not be
	// reached. The ledger never decides fail-open vs fail-closed; that
	// policy belongs to the admission decider.
	ErrStorageUnavailable = errors.New("quota storage unavailable")

	// ErrInvalidMode indicates an unrecognized translation mode.
	ErrInvalidMode = errors.New("invalid translation mode")
)

// Mode identifies the direction of a translation. The set is closed;
// every counter row carries one sub-counter per mode.
type Mode string

const (
	ModeGenZToEnglish Mode = "genz_to_english"
	ModeEnglishToGenZ Mode = "english_to_genz"
)

// ParseMode validates a wire-format mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGenZToEnglish, ModeEnglishToGenZ:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// DateOf renders the calendar-day bucket for t in the given location.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Counts holds the per-day counter values for one device.
type Counts struct {
	Total         int
	GenZToEnglish int
	EnglishToGenZ int
}

// DayStats aggregates usage across all devices for one calendar day.
type DayStats struct {
	Date          string
	Translations  int
	ActiveDevices int
	GenZToEnglish int
	EnglishToGenZ int
}

// DeviceStats aggregates usage for one device over a reporting window.
type DeviceStats struct {
	DeviceToken  string
	Translations int
	ActiveDays   int
	LastSeenDate string
}

// Ledger is the durable usage counter store.
type Ledger interface {
	// AdmitAndIncrement atomically admits one request for the given
	// device and day, incrementing the counter, but only while the
	// current count is below limit. It reports whether the increment
	// happened and the count after the call. When the request is
	// rejected the count is returned unchanged so callers can report
	// "remaining = 0" accurately.
	//
	// The operation is linearizable with respect to all other calls
	// sharing the same (deviceToken, usageDate) key. A fresh row is
	// created implicitly at count 1 the first time a device is seen on
	// a new date; day rollover is lazy and there is no reset job.
	AdmitAndIncrement(ctx context.Context, deviceToken, usageDate string, mode Mode, limit int) (admitted bool, usedAfter int, err error)

	// Peek returns the current count for display. It must never be used
	// to make admission decisions.
	Peek(ctx context.Context, deviceToken, usageDate string) (int, error)
}

// Reporter provides read-only aggregates for the admin endpoints.
type Reporter interface {
	// DailyStats returns per-day totals for dates >= sinceDate,
	// newest first.
	DailyStats(ctx context.Context, sinceDate string) ([]DayStats, error)

	// DeviceBreakdown returns per-device totals for dates >= sinceDate,
	// busiest devices first.
	DeviceBreakdown(ctx context.Context, sinceDate string) ([]DeviceStats, error)
}
