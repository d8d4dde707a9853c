package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/admission"
	"github.com/slanglate/slanglate/internal/analytics"
	"github.com/slanglate/slanglate/internal/api/models"
	"github.com/slanglate/slanglate/internal/api/response"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/translate"
)

// TranslateHandler handles translation endpoints.
type TranslateHandler struct {
	decider    *admission.Decider
	translator *translate.Service
	analytics  analytics.Publisher
	logger     zerolog.Logger
}

// NewTranslateHandler creates a new TranslateHandler.
func NewTranslateHandler(decider *admission.Decider, translator *translate.Service, publisher analytics.Publisher, logger zerolog.Logger) *TranslateHandler {
	return &TranslateHandler{
		decider:    decider,
		translator: translator,
		analytics:  publisher,
		logger:     logger,
	}
}

// Translate handles POST /v1/translate.
//
// Validation runs before admission so malformed requests never consume
// quota. Once the quota charge is committed it is not rolled back: a
// provider failure after admission still counts against the day.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	deviceToken := GetDeviceToken(r.Context())

	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	mode, err := quota.ParseMode(req.Mode)
	if err != nil {
		response.BadRequest(w, r, "invalid translation mode", []models.FieldError{
			{Field: "mode", Message: "must be genz_to_english or english_to_genz", Code: "INVALID_ENUM"},
		})
		return
	}
	if req.Text == "" {
		response.BadRequest(w, r, "text is required", []models.FieldError{
			{Field: "text", Message: "required", Code: "REQUIRED"},
		})
		return
	}
	if len(req.Text) > translate.MaxTextLength {
		response.BadRequest(w, r, "text exceeds maximum length", []models.FieldError{
			{Field: "text", Message: "must be at most 1000 characters", Code: "OUT_OF_RANGE"},
		})
		return
	}

	decision, err := h.decider.Decide(r.Context(), deviceToken, mode)
	if err != nil {
		// Fail closed: quota state unknown means no free translations.
		response.ServiceUnavailable(w, r, "usage tracking is temporarily unavailable")
		return
	}

	usage := usageInfo(decision)

	if !decision.Admitted {
		h.analytics.Publish(r.Context(), analytics.Event{
			Name:        analytics.EventTranslationDenied,
			DeviceToken: device.TokenPrefix(deviceToken),
			Tier:        string(decision.Tier),
			Mode:        string(mode),
			Used:        decision.Used,
			OccurredAt:  time.Now().UTC(),
		})
		response.QuotaExceeded(w, r, "daily translation limit reached", &usage)
		return
	}

	result, err := h.translator.Translate(r.Context(), translate.Request{
		Text: req.Text,
		Mode: mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, translate.ErrEmptyText), errors.Is(err, translate.ErrTextTooLong):
			response.BadRequest(w, r, err.Error(), nil)
		default:
			// The quota charge above stands; retries cost quota too.
			response.BadGateway(w, r, "translation provider failed")
		}
		return
	}

	h.analytics.Publish(r.Context(), analytics.Event{
		Name:        analytics.EventTranslationAdmitted,
		DeviceToken: device.TokenPrefix(deviceToken),
		Tier:        string(decision.Tier),
		Mode:        string(mode),
		Used:        decision.Used,
		OccurredAt:  time.Now().UTC(),
	})

	response.JSON(w, r, http.StatusOK, models.TranslateResponse{
		TranslatedText: result.TranslatedText,
		OriginalText:   result.OriginalText,
		Mode:           string(result.Mode),
		UsageInfo:      usage,
	})
}

// TranslateTest handles POST /v1/translate/test - a connectivity check
// that exercises device auth without touching quota or the provider.
func (h *TranslateHandler) TranslateTest(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.TranslateTestResponse{
		Status:      "Translation service is working!",
		DeviceToken: GetDeviceToken(r.Context()),
	})
}

func usageInfo(d admission.Decision) models.UsageInfo {
	return models.UsageInfo{
		TranslationsUsedToday: d.Used,
		DailyLimit:            d.Limit,
		RemainingTranslations: d.Remaining,
		IsPremium:             d.Tier == device.TierPremium,
	}
}
