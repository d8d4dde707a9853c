package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slanglate/slanglate/internal/admission"
	"github.com/slanglate/slanglate/internal/analytics"
	"github.com/slanglate/slanglate/internal/api/handler"
	"github.com/slanglate/slanglate/internal/api/middleware"
	"github.com/slanglate/slanglate/internal/api/models"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/policy"
	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/translate"
)

const testToken = "translate-test-device"

type flakyProvider struct {
	err error
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Translate(_ context.Context, req translate.Request) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "ok: " + req.Text, nil
}

type translateFixture struct {
	handler  http.Handler
	provider *flakyProvider
	ledger   *quota.InMemoryLedger
	decider  *admission.Decider
}

func newTranslateFixture(t *testing.T) *translateFixture {
	t.Helper()
	logger := zerolog.New(io.Discard)

	devices := device.NewService(device.ServiceConfig{
		Repository: device.NewInMemoryRepository(),
	})
	ledger := quota.NewInMemoryLedger()
	decider := admission.NewDecider(admission.DeciderConfig{
		Devices: devices,
		Ledger:  ledger,
		Policy: policy.NewService(policy.ServiceConfig{
			Repository: policy.NewInMemoryRepository(),
			Logger:     logger,
		}),
		Logger: logger,
	})
	provider := &flakyProvider{}
	translator := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   logger,
	})

	h := handler.NewTranslateHandler(decider, translator, analytics.NopPublisher{}, logger)
	auth := middleware.DeviceAuth(middleware.DeviceAuthConfig{Enabled: true})

	return &translateFixture{
		handler:  auth(http.HandlerFunc(h.Translate)),
		provider: provider,
		ledger:   ledger,
		decider:  decider,
	}
}

func (f *translateFixture) post(body models.TranslateRequest) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-ID", testToken)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestTranslateHandler_ProviderFailure(t *testing.T) {
	f := newTranslateFixture(t)
	f.provider.err = errors.New("upstream timed out")

	w := f.post(models.TranslateRequest{Text: "bussin", Mode: "genz_to_english"})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeBadGateway, problem.Type)

	// The committed charge stands even though the provider failed.
	used, err := f.ledger.Peek(context.Background(), testToken, f.decider.Today())
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestTranslateHandler_MalformedBody(t *testing.T) {
	f := newTranslateFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Device-ID", testToken)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed requests never reach the ledger.
	used, err := f.ledger.Peek(context.Background(), testToken, f.decider.Today())
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestTranslateHandler_TextTooLong(t *testing.T) {
	f := newTranslateFixture(t)

	long := bytes.Repeat([]byte("a"), translate.MaxTextLength+1)
	w := f.post(models.TranslateRequest{Text: string(long), Mode: "genz_to_english"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	used, err := f.ledger.Peek(context.Background(), testToken, f.decider.Today())
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}
