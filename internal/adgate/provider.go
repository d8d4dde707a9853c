// Package adgate coordinates interstitial ad display for free-tier
// translation requests.
//
// The coordinator is a single-goroutine state machine: provider lifecycle
// events, show requests, and retry timers are all serialized onto one
// event loop, so no two callbacks are ever processed concurrently. Its key
// correctness property is that at most one ad show is in flight at a time;
// the completion handle is a single slot that is explicitly cleared after
// each resolution, so a double trigger is structurally impossible rather
// than prevented by convention.
package adgate

// Event is a lifecycle notification from the ad provider.
type Event int

const (
	// EventLoaded signals an ad finished loading and can be shown.
	EventLoaded Event = iota

	// EventLoadFailed signals the load attempt failed.
	EventLoadFailed

	// EventOpened signals the ad became visible.
	EventOpened

	// EventClosed signals the user dismissed the ad. This is the only
	// event that completes a show.
	EventClosed

	// EventClicked signals the user tapped the ad.
	EventClicked
)

func (e Event) String() string {
	switch e {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventClicked:
		return "clicked"
	}
	return "unknown"
}

// Provider is the underlying interstitial ad integration. Load and Show
// start asynchronous operations; their outcomes arrive as Events. A
// provider must deliver each lifecycle event exactly once per operation.
type Provider interface {
	// Load begins fetching an ad. The result arrives as EventLoaded or
	// EventLoadFailed.
	Load() error

	// Show begins displaying a previously loaded ad. Dismissal arrives
	// as EventClosed.
	Show() error

	// Events is the stream of lifecycle notifications.
	Events() <-chan Event
}

// State is the coordinator's lifecycle state.
type State string

const (
	// StateIdle means no ad is loaded or loading.
	StateIdle State = "IDLE"

	// StateLoading means a load is in progress.
	StateLoading State = "LOADING"

	// StateReady means an ad is loaded and can be shown.
	StateReady State = "READY"

	// StateShowing means an ad is on screen awaiting dismissal.
	StateShowing State = "SHOWING"

	// StateCooldown is the brief period after a show before the next
	// load begins.
	StateCooldown State = "COOLDOWN"
)
