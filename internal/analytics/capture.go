package analytics

import (
	"context"
	"sync"
)

// CapturePublisher records events in memory. For tests.
type CapturePublisher struct {
	mu     sync.Mutex
	events []Event
}

var _ Publisher = (*CapturePublisher)(nil)

func (p *CapturePublisher) Publish(_ context.Context, ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *CapturePublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *CapturePublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
