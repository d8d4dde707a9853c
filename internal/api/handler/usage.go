package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/admission"
	"github.com/slanglate/slanglate/internal/api/models"
	"github.com/slanglate/slanglate/internal/api/response"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/quota"
)

const (
	defaultStatsDays   = 5
	defaultDevicesDays = 7
	maxReportDays      = 365
)

// UsageHandler handles the usage display and reporting endpoints.
type UsageHandler struct {
	decider  *admission.Decider
	reporter quota.Reporter
	logger   zerolog.Logger
}

// NewUsageHandler creates a new UsageHandler. reporter may be nil when no
// reporting store is configured; the admin endpoints then return 503.
func NewUsageHandler(decider *admission.Decider, reporter quota.Reporter, logger zerolog.Logger) *UsageHandler {
	return &UsageHandler{
		decider:  decider,
		reporter: reporter,
		logger:   logger,
	}
}

// Usage handles GET /v1/usage. Read-only: it never charges quota, so
// polling it cannot burn the day's allowance.
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	deviceToken := GetDeviceToken(r.Context())

	d, err := h.decider.Usage(r.Context(), deviceToken)
	if err != nil {
		response.ServiceUnavailable(w, r, "usage tracking is temporarily unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, models.UsageResponse{
		UsedToday:  d.Used,
		DailyLimit: d.Limit,
		Remaining:  d.Remaining,
		Tier:       string(d.Tier),
		IsPremium:  d.Tier == device.TierPremium,
		Date:       h.decider.Today(),
	})
}

// UsageTest handles POST /v1/usage/test - a diagnostic that performs a
// real, charged increment so the tracking path can be exercised end to end.
func (h *UsageHandler) UsageTest(w http.ResponseWriter, r *http.Request) {
	deviceToken := GetDeviceToken(r.Context())

	d, err := h.decider.Decide(r.Context(), deviceToken, quota.ModeGenZToEnglish)
	if err != nil {
		response.ServiceUnavailable(w, r, "usage tracking is temporarily unavailable")
		return
	}

	if !d.Admitted {
		usage := usageInfo(d)
		response.QuotaExceeded(w, r, "daily translation limit reached", &usage)
		return
	}

	response.JSON(w, r, http.StatusOK, models.UsageTestResponse{
		Status:      "usage tracked",
		DeviceToken: deviceToken,
		Mode:        string(quota.ModeGenZToEnglish),
		Usage:       usageInfo(d),
	})
}

// AdminStats handles GET /v1/usage/admin/stats - per-day aggregates for
// the last N days, newest first.
func (h *UsageHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		response.ServiceUnavailable(w, r, "usage reporting is not configured")
		return
	}

	days := parseDays(r, defaultStatsDays)
	stats, err := h.reporter.DailyStats(r.Context(), h.sinceDate(days))
	if err != nil {
		h.logger.Error().Err(err).Msg("daily stats query failed")
		response.ServiceUnavailable(w, r, "usage reporting is temporarily unavailable")
		return
	}

	resp := models.AdminStatsResponse{Days: make([]models.DayStatsEntry, 0, len(stats))}
	for _, s := range stats {
		resp.Days = append(resp.Days, models.DayStatsEntry{
			Date:          s.Date,
			Translations:  s.Translations,
			ActiveDevices: s.ActiveDevices,
			GenZToEnglish: s.GenZToEnglish,
			EnglishToGenZ: s.EnglishToGenZ,
		})
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// AdminDevices handles GET /v1/usage/admin/devices - per-device aggregates
// for the last N days, busiest devices first.
func (h *UsageHandler) AdminDevices(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		response.ServiceUnavailable(w, r, "usage reporting is not configured")
		return
	}

	days := parseDays(r, defaultDevicesDays)
	stats, err := h.reporter.DeviceBreakdown(r.Context(), h.sinceDate(days))
	if err != nil {
		h.logger.Error().Err(err).Msg("device breakdown query failed")
		response.ServiceUnavailable(w, r, "usage reporting is temporarily unavailable")
		return
	}

	resp := models.AdminDevicesResponse{Devices: make([]models.DeviceStatsEntry, 0, len(stats))}
	for _, s := range stats {
		resp.Devices = append(resp.Devices, models.DeviceStatsEntry{
			DeviceToken:  s.DeviceToken,
			Translations: s.Translations,
			ActiveDays:   s.ActiveDays,
			LastSeenDate: s.LastSeenDate,
		})
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// sinceDate converts a trailing-window length into the inclusive start
// date of the window, in the reference timezone.
func (h *UsageHandler) sinceDate(days int) string {
	today, err := time.Parse(quota.DateLayout, h.decider.Today())
	if err != nil {
		return h.decider.Today()
	}
	return today.AddDate(0, 0, -(days - 1)).Format(quota.DateLayout)
}

func parseDays(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return fallback
	}
	if days > maxReportDays {
		return maxReportDays
	}
	return days
}
