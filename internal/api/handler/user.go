package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/analytics"
	"github.com/slanglate/slanglate/internal/api/models"
	"github.com/slanglate/slanglate/internal/api/response"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/purchase"
)

// UserHandler handles the device record and upgrade endpoints.
type UserHandler struct {
	devices   *device.Service
	purchases *purchase.Service
	analytics analytics.Publisher
	logger    zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(devices *device.Service, purchases *purchase.Service, publisher analytics.Publisher, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		devices:   devices,
		purchases: purchases,
		analytics: publisher,
		logger:    logger,
	}
}

// GetUser handles GET /v1/user. Creates the device record on first sight,
// so a fresh install sees its own record immediately.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	deviceToken := GetDeviceToken(r.Context())

	dev, err := h.devices.EnsureDevice(r.Context(), deviceToken)
	if err != nil {
		response.ServiceUnavailable(w, r, "device store is temporarily unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.UserResponse{
		DeviceID:     dev.Token,
		Tier:         string(dev.Tier),
		IsPremium:    dev.Tier == device.TierPremium,
		CreatedAt:    models.Timestamp(dev.CreatedAt),
		LastActiveAt: models.Timestamp(dev.LastActiveAt),
	})
}

// Upgrade handles POST /v1/user/upgrade. A rejected or replayed
// transaction never changes the device's tier.
func (h *UserHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	deviceToken := GetDeviceToken(r.Context())

	var req models.UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if req.Platform != "" && req.Platform != string(purchase.PlatformAppStore) {
		response.BadRequest(w, r, "unsupported platform", []models.FieldError{
			{Field: "platform", Message: "must be app_store", Code: "INVALID_ENUM"},
		})
		return
	}
	if req.SignedTransaction == "" {
		response.BadRequest(w, r, "signedTransaction is required", []models.FieldError{
			{Field: "signedTransaction", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	p, err := h.purchases.Upgrade(r.Context(), deviceToken, req.SignedTransaction)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrInvalidTransaction),
			errors.Is(err, purchase.ErrWrongBundle),
			errors.Is(err, purchase.ErrUnknownProduct):
			response.BadRequest(w, r, "transaction verification failed", nil)
		case errors.Is(err, purchase.ErrAlreadyRecorded):
			response.Conflict(w, r, "transaction already redeemed")
		default:
			h.logger.Error().Err(err).
				Str("device", device.TokenPrefix(deviceToken)).
				Msg("premium upgrade failed")
			response.ServiceUnavailable(w, r, "upgrade is temporarily unavailable")
		}
		return
	}

	h.analytics.Publish(r.Context(), analytics.Event{
		Name:        analytics.EventPremiumUpgrade,
		DeviceToken: device.TokenPrefix(deviceToken),
		Tier:        string(device.TierPremium),
		OccurredAt:  time.Now().UTC(),
	})

	response.JSON(w, r, http.StatusOK, models.UpgradeResponse{
		IsPremium:     true,
		ProductID:     p.ProductID,
		TransactionID: p.TransactionID,
	})
}
