// Package analytics publishes product usage events to Pub/Sub.
//
// Publishing is best effort: an unreachable broker must never fail or slow
// a translation request, so outcomes are logged and dropped rather than
// propagated.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Event names.
const (
	EventTranslationAdmitted = "translation_admitted"
	EventTranslationDenied   = "translation_denied"
	EventPremiumUpgrade      = "premium_upgrade"
)

// Event is a single usage event.
type Event struct {
	// Name is one of the Event* constants.
	Name string `json:"name"`

	// DeviceToken is truncated before publishing; the full token never
	// leaves the service.
	DeviceToken string `json:"device_token"`

	// Tier is the device's entitlement at event time.
	Tier string `json:"tier,omitempty"`

	// Mode is the translation direction, when applicable.
	Mode string `json:"mode,omitempty"`

	// Used is the quota consumed after the event.
	Used int `json:"used,omitempty"`

	// OccurredAt is the event timestamp.
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits usage events.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

// PubSubConfig holds configuration for the Pub/Sub publisher.
type PubSubConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// PubSubPublisher publishes events to a Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

var _ Publisher = (*PubSubPublisher)(nil)

// NewPubSubPublisher creates a Pub/Sub publisher.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		logger:    cfg.Logger,
	}, nil
}

// Publish emits an event without waiting for broker acknowledgement.
// Failures are logged; the caller's request path is never blocked.
func (p *PubSubPublisher) Publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Str("event", ev.Name).Msg("failed to encode analytics event")
		return
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"event": ev.Name},
	})

	go func() {
		if _, err := result.Get(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn().Err(err).Str("event", ev.Name).Msg("analytics publish failed")
		}
	}()
}

// Close flushes pending messages and releases the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// NopPublisher discards all events. Used when analytics is disabled.
type NopPublisher struct{}

var _ Publisher = (*NopPublisher)(nil)

func (NopPublisher) Publish(context.Context, Event) {}
func (NopPublisher) Close() error                  { return nil }
