package quota

import (
	"context"
	"sort"
	"sync"
)

type memoryKey struct {
	token string
	date  string
}

// InMemoryLedger is an in-memory implementation of Ledger and Reporter.
// Intended for tests and single-process development; production uses the
// PostgreSQL implementation.
type InMemoryLedger struct {
	mu     sync.Mutex
	counts map[memoryKey]*Counts

	// failing simulates storage unavailability when set.
	failing bool
}

// NewInMemoryLedger creates a new in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		counts: make(map[memoryKey]*Counts),
	}
}

// SetFailing toggles simulated storage failure. Every subsequent call
// returns ErrStorageUnavailable until cleared.
func (l *InMemoryLedger) SetFailing(failing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failing = failing
}

// AdmitAndIncrement atomically admits and counts one request.
func (l *InMemoryLedger) AdmitAndIncrement(_ context.Context, deviceToken, usageDate string, mode Mode, limit int) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return false, 0, ErrStorageUnavailable
	}

	key := memoryKey{token: deviceToken, date: usageDate}
	c, ok := l.counts[key]
	if !ok {
		c = &Counts{}
		l.counts[key] = c
	}

	if c.Total >= limit {
		return false, c.Total, nil
	}

	c.Total++
	switch mode {
	case ModeGenZToEnglish:
		c.GenZToEnglish++
	case ModeEnglishToGenZ:
		c.EnglishToGenZ++
	}
	return true, c.Total, nil
}

// Peek returns the current count for display.
func (l *InMemoryLedger) Peek(_ context.Context, deviceToken, usageDate string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return 0, ErrStorageUnavailable
	}

	if c, ok := l.counts[memoryKey{token: deviceToken, date: usageDate}]; ok {
		return c.Total, nil
	}
	return 0, nil
}

// DailyStats returns per-day totals for dates >= sinceDate, newest first.
func (l *InMemoryLedger) DailyStats(_ context.Context, sinceDate string) ([]DayStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return nil, ErrStorageUnavailable
	}

	byDate := make(map[string]*DayStats)
	for key, c := range l.counts {
		if key.date < sinceDate {
			continue
		}
		day, ok := byDate[key.date]
		if !ok {
			day = &DayStats{Date: key.date}
			byDate[key.date] = day
		}
		day.Translations += c.Total
		day.ActiveDevices++
		day.GenZToEnglish += c.GenZToEnglish
		day.EnglishToGenZ += c.EnglishToGenZ
	}

	stats := make([]DayStats, 0, len(byDate))
	for _, day := range byDate {
		stats = append(stats, *day)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date > stats[j].Date })
	return stats, nil
}

// DeviceBreakdown returns per-device totals for dates >= sinceDate.
func (l *InMemoryLedger) DeviceBreakdown(_ context.Context, sinceDate string) ([]DeviceStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing {
		return nil, ErrStorageUnavailable
	}

	byToken := make(map[string]*DeviceStats)
	for key, c := range l.counts {
		if key.date < sinceDate {
			continue
		}
		dev, ok := byToken[key.token]
		if !ok {
			dev = &DeviceStats{DeviceToken: key.token}
			byToken[key.token] = dev
		}
		dev.Translations += c.Total
		dev.ActiveDays++
		if key.date > dev.LastSeenDate {
			dev.LastSeenDate = key.date
		}
	}

	stats := make([]DeviceStats, 0, len(byToken))
	for _, dev := range byToken {
		stats = append(stats, *dev)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Translations != stats[j].Translations {
			return stats[i].Translations > stats[j].Translations
		}
		return stats[i].DeviceToken < stats[j].DeviceToken
	})
	return stats, nil
}

// Ensure InMemoryLedger implements the ledger interfaces.
var (
	_ Ledger   = (*InMemoryLedger)(nil)
	_ Reporter = (*InMemoryLedger)(nil)
)
