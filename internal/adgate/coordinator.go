package adgate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Coordinator errors.
var (
	// ErrShowInFlight is returned when RequestShow is called while an ad
	// is already on screen.
	ErrShowInFlight = errors.New("ad show already in flight")

	// ErrStopped is returned when the coordinator has been stopped.
	ErrStopped = errors.New("ad gate coordinator stopped")
)

// Config holds configuration for the coordinator.
type Config struct {
	Provider Provider
	Cadence  CadencePolicy
	Logger   zerolog.Logger

	// ShowTimeout bounds how long a caller is suspended waiting for the
	// provider's closed event; on expiry the show resolves false. An ad
	// provider can stall indefinitely, so the wait must be bounded.
	// Defaults to 10 seconds.
	ShowTimeout time.Duration

	// CooldownDelay is how long after a show finishes before the next
	// load starts. Defaults to 1 second.
	CooldownDelay time.Duration

	// LoadRetryInitialInterval is the first retry delay after a failed
	// load; subsequent delays back off exponentially up to
	// LoadRetryMaxInterval. Defaults to 5 seconds and 1 minute.
	LoadRetryInitialInterval time.Duration
	LoadRetryMaxInterval     time.Duration
}

// Coordinator gates translation dispatch behind interstitial ads.
type Coordinator struct {
	provider Provider
	cadence  CadencePolicy
	logger   zerolog.Logger

	showTimeout   time.Duration
	cooldownDelay time.Duration

	cmds chan command
	done chan struct{}
	stop sync.Once

	// Everything below is owned by the run goroutine.
	state         State
	requestCount  int
	lastCompleted int
	pending       chan<- showReply
	showTimer     *time.Timer
	loadTimer     *time.Timer
	retryBackoff  backoff.BackOff
}

type cmdKind int

const (
	cmdRequestShow cmdKind = iota
	cmdState
)

type command struct {
	kind       cmdKind
	showReply  chan showReply
	stateReply chan State
}

type showReply struct {
	completed bool
	err       error
}

// NewCoordinator creates a coordinator. Call Start before use.
func NewCoordinator(cfg Config) *Coordinator {
	showTimeout := cfg.ShowTimeout
	if showTimeout == 0 {
		showTimeout = 10 * time.Second
	}
	cooldownDelay := cfg.CooldownDelay
	if cooldownDelay == 0 {
		cooldownDelay = time.Second
	}
	initialInterval := cfg.LoadRetryInitialInterval
	if initialInterval == 0 {
		initialInterval = 5 * time.Second
	}
	maxInterval := cfg.LoadRetryMaxInterval
	if maxInterval == 0 {
		maxInterval = time.Minute
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // retry loading indefinitely

	return &Coordinator{
		provider:      cfg.Provider,
		cadence:       cfg.Cadence,
		logger:        cfg.Logger,
		showTimeout:   showTimeout,
		cooldownDelay: cooldownDelay,
		cmds:          make(chan command),
		done:          make(chan struct{}),
		state:         StateIdle,
		retryBackoff:  bo,
	}
}

// Start launches the event loop and begins loading the first ad.
func (c *Coordinator) Start() {
	go c.run()
}

// Stop shuts the coordinator down. Any suspended RequestShow caller is
// resolved with completed=false.
func (c *Coordinator) Stop() {
	c.stop.Do(func() { close(c.done) })
}

// RequestShow asks the coordinator to interpose an ad before the caller's
// next request. Every call counts one request toward the cadence.
//
// It returns (true, nil) only after the provider reports the ad was closed
// by the user; (false, nil) immediately when no ad is due or ready, so the
// caller proceeds ungated; and ErrShowInFlight when an ad is already on
// screen, so a second concurrent display is never spawned and the first
// caller's wait is left intact.
func (c *Coordinator) RequestShow(ctx context.Context) (bool, error) {
	reply := make(chan showReply, 1)
	cmd := command{kind: cmdRequestShow, showReply: reply}

	select {
	case c.cmds <- cmd:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.done:
		return false, ErrStopped
	}

	select {
	case r := <-reply:
		return r.completed, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.done:
		return false, ErrStopped
	}
}

// State reports the current coordinator state.
func (c *Coordinator) State() State {
	reply := make(chan State, 1)
	select {
	case c.cmds <- command{kind: cmdState, stateReply: reply}:
		return <-reply
	case <-c.done:
		return StateIdle
	}
}

func (c *Coordinator) run() {
	c.startLoad()

	for {
		select {
		case cmd := <-c.cmds:
			switch cmd.kind {
			case cmdRequestShow:
				c.handleRequestShow(cmd.showReply)
			case cmdState:
				cmd.stateReply <- c.state
			}

		case ev := <-c.provider.Events():
			c.handleEvent(ev)

		case <-timerC(c.loadTimer):
			c.loadTimer = nil
			c.startLoad()

		case <-timerC(c.showTimer):
			c.showTimer = nil
			c.expireShow()

		case <-c.done:
			c.resolvePending(false, nil)
			return
		}
	}
}

func (c *Coordinator) handleRequestShow(reply chan showReply) {
	c.requestCount++

	if c.state == StateShowing {
		// At most one in-flight show. The first caller's wait stays
		// intact; this one is rejected outright.
		reply <- showReply{err: ErrShowInFlight}
		return
	}

	if c.state != StateReady || !c.cadence.Due(c.requestCount, c.lastCompleted) {
		// No gating: the caller dispatches immediately.
		reply <- showReply{completed: false}
		return
	}

	if err := c.provider.Show(); err != nil {
		c.logger.Warn().Err(err).Msg("ad show failed to start")
		reply <- showReply{completed: false}
		c.state = StateIdle
		c.scheduleLoad(c.retryBackoff.NextBackOff())
		return
	}

	c.state = StateShowing
	c.pending = reply
	c.showTimer = time.NewTimer(c.showTimeout)
	c.logger.Debug().Int("request_count", c.requestCount).Msg("interstitial showing")
}

func (c *Coordinator) handleEvent(ev Event) {
	switch ev {
	case EventLoaded:
		if c.state == StateLoading {
			c.state = StateReady
			c.retryBackoff.Reset()
			c.logger.Debug().Msg("interstitial ready")
		}

	case EventLoadFailed:
		if c.state == StateLoading {
			c.state = StateIdle
			delay := c.retryBackoff.NextBackOff()
			c.logger.Warn().Dur("retry_in", delay).Msg("interstitial load failed")
			c.scheduleLoad(delay)
		}

	case EventClosed:
		if c.state != StateShowing {
			// Late close after a timeout already resolved the caller.
			c.logger.Debug().Str("state", string(c.state)).Msg("ignoring stale close event")
			return
		}
		c.stopShowTimer()
		c.resolvePending(true, nil)
		c.lastCompleted = c.requestCount
		c.state = StateCooldown
		c.scheduleLoad(c.cooldownDelay)
		c.logger.Debug().Msg("interstitial closed")

	case EventOpened, EventClicked:
		c.logger.Debug().Stringer("event", ev).Msg("interstitial event")
	}
}

// expireShow resolves a stalled show as not completed. The caller proceeds
// ungated; a close event arriving later is ignored.
func (c *Coordinator) expireShow() {
	if c.state != StateShowing {
		return
	}
	c.logger.Warn().Dur("timeout", c.showTimeout).Msg("interstitial show timed out")
	c.resolvePending(false, nil)
	c.state = StateCooldown
	c.scheduleLoad(c.cooldownDelay)
}

func (c *Coordinator) startLoad() {
	if c.state != StateIdle && c.state != StateCooldown {
		return
	}
	if err := c.provider.Load(); err != nil {
		c.logger.Warn().Err(err).Msg("ad load failed to start")
		c.state = StateIdle
		c.scheduleLoad(c.retryBackoff.NextBackOff())
		return
	}
	c.state = StateLoading
}

func (c *Coordinator) scheduleLoad(delay time.Duration) {
	if c.loadTimer != nil {
		c.loadTimer.Stop()
	}
	c.loadTimer = time.NewTimer(delay)
}

func (c *Coordinator) stopShowTimer() {
	if c.showTimer != nil {
		c.showTimer.Stop()
		c.showTimer = nil
	}
}

// resolvePending delivers the outcome to the suspended caller and clears
// the slot. The slot being single and cleared here is what makes a double
// resolution (or a second concurrent show) impossible.
func (c *Coordinator) resolvePending(completed bool, err error) {
	if c.pending == nil {
		return
	}
	c.pending <- showReply{completed: completed, err: err}
	c.pending = nil
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
