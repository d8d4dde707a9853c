package handler

import (
	"context"

	"github.com/slanglate/slanglate/internal/api/middleware"
)

// GetDeviceToken retrieves the device token from the context.
// This is a convenience wrapper around middleware.GetDeviceToken.
func GetDeviceToken(ctx context.Context) string {
	return middleware.GetDeviceToken(ctx)
}
