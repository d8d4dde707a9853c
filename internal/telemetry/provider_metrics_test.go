package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slanglate/slanglate/internal/telemetry"
)

func TestNewProviderMetrics(t *testing.T) {
	pm, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)
	assert.NotNil(t, pm)
}

func TestProviderMetrics_RecordRequest(t *testing.T) {
	pm, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	// Should not panic
	pm.RecordRequest("openai", "/v1/chat/completions", 120*time.Millisecond, nil)
}

func TestProviderMetrics_RecordRequest_Error(t *testing.T) {
	pm, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	// Should not panic
	pm.RecordRequest("openai", "/v1/chat/completions", 10*time.Millisecond, errors.New("boom"))
}
