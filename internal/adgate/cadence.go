package adgate

// CadencePolicy decides whether an interstitial is due before a request.
//
// The check is a pure function of the per-process request counter and the
// counter value at which an ad last completed; wall-clock time is never
// consulted, so cadence behavior is deterministic and testable without
// mocking time.
type CadencePolicy struct {
	// ShowEvery is the interval in requests: an ad is due once at least
	// this many requests have happened since the last completed show.
	// Zero or negative disables interstitials entirely.
	ShowEvery int
}

// Due reports whether an ad should interpose before the request numbered
// requestCount, given the counter value at the last completed show.
func (p CadencePolicy) Due(requestCount, lastCompletedAt int) bool {
	if p.ShowEvery <= 0 {
		return false
	}
	return requestCount-lastCompletedAt >= p.ShowEvery
}
