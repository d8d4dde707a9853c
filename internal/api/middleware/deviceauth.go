package middleware

import (
	"context"
	"net/http"

	"github.com/slanglate/slanglate/internal/api/models"
)

// MinDeviceTokenLength is the minimum accepted X-Device-ID length. The
// token is opaque; the length floor just rejects obviously bogus values.
const MinDeviceTokenLength = 10

// devTokenFallback is the identity used when device auth is disabled in
// local development.
const devTokenFallback = "dev-device-id"

// deviceTokenKey is the context key for the device token.
type deviceTokenKey struct{}

// DeviceAuthConfig holds configuration for device authentication.
type DeviceAuthConfig struct {
	// Enabled turns header validation on. When false every request is
	// attributed to a fixed development token. Never disable in
	// production.
	Enabled bool
}

// DeviceAuth validates the X-Device-ID header and stores the device token
// in the request context. There is no account system: the header is the
// entire identity.
func DeviceAuth(cfg DeviceAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				ctx := context.WithValue(r.Context(), deviceTokenKey{}, devTokenFallback)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := r.Header.Get("X-Device-ID")
			if token == "" {
				writeDeviceUnauthorized(w, r, "missing X-Device-ID header")
				return
			}
			if len(token) < MinDeviceTokenLength {
				writeDeviceUnauthorized(w, r, "invalid device ID")
				return
			}

			ctx := context.WithValue(r.Context(), deviceTokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeDeviceUnauthorized writes a 401 Unauthorized response.
// Implemented directly here to avoid an import cycle with the response
// package.
func writeDeviceUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetDeviceToken retrieves the device token from the context.
// Returns an empty string when the middleware did not run.
func GetDeviceToken(ctx context.Context) string {
	if token, ok := ctx.Value(deviceTokenKey{}).(string); ok {
		return token
	}
	return ""
}
