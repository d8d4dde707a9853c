// Package translate converts text between Gen Z slang and standard English
// through a pluggable upstream provider.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Provider produces translations. Implementations live in sub-packages.
type Provider interface {
	// Name identifies the provider for logging and health reporting.
	Name() string

	// Translate converts text in the direction given by mode.
	Translate(ctx context.Context, req Request) (string, error)
}

// ServiceConfig holds dependencies for the translation service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
}

// Service validates translation requests and dispatches them to the
// configured provider. Admission control happens before this layer; the
// service itself never consults quotas.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a translation service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Translate validates the request and returns the provider's translation.
// Validation failures surface as ErrEmptyText or ErrTextTooLong; provider
// failures are wrapped in ErrProviderFailure.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if len(req.Text) > MaxTextLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLong, len(req.Text), MaxTextLength)
	}

	translated, err := s.provider.Translate(ctx, req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("provider", s.provider.Name()).
			Str("mode", string(req.Mode)).
			Msg("translation failed")
		return nil, fmt.Errorf("%w: %s", ErrProviderFailure, err)
	}

	return &Result{
		TranslatedText: translated,
		OriginalText:   req.Text,
		Mode:           req.Mode,
		Provider:       s.provider.Name(),
	}, nil
}
