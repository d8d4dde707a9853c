package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slanglate/slanglate/internal/api/middleware"
)

func deviceEchoHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = middleware.GetDeviceToken(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestDeviceAuth_ValidHeader(t *testing.T) {
	var gotToken string
	handler := middleware.DeviceAuth(middleware.DeviceAuthConfig{Enabled: true})(deviceEchoHandler(&gotToken))

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	req.Header.Set("X-Device-ID", "device-abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "device-abc-123", gotToken)
}

func TestDeviceAuth_MissingHeader(t *testing.T) {
	var gotToken string
	handler := middleware.DeviceAuth(middleware.DeviceAuthConfig{Enabled: true})(deviceEchoHandler(&gotToken))

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing X-Device-ID header")
	assert.Empty(t, gotToken)
}

func TestDeviceAuth_TokenTooShort(t *testing.T) {
	var gotToken string
	handler := middleware.DeviceAuth(middleware.DeviceAuthConfig{Enabled: true})(deviceEchoHandler(&gotToken))

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	req.Header.Set("X-Device-ID", "short")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid device ID")
}

func TestDeviceAuth_DisabledUsesDevFallback(t *testing.T) {
	var gotToken string
	handler := middleware.DeviceAuth(middleware.DeviceAuthConfig{Enabled: false})(deviceEchoHandler(&gotToken))

	// No header at all; development mode attributes the request anyway.
	req := httptest.NewRequest(http.MethodGet, "/v1/usage", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-device-id", gotToken)
}

func TestGetDeviceToken_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, middleware.GetDeviceToken(req.Context()))
}
