package models

// UsageInfo is the quota snapshot embedded in translation responses and
// quota-exceeded problems. Field names follow the mobile client contract.
type UsageInfo struct {
	// TranslationsUsedToday is the count of admitted requests today.
	TranslationsUsedToday int `json:"translationsUsedToday"`

	// DailyLimit is the tier's allowance for the current day.
	DailyLimit int `json:"dailyLimit"`

	// RemainingTranslations is limit minus used, floored at zero.
	RemainingTranslations int `json:"remainingTranslations"`

	// IsPremium is true for the premium tier.
	IsPremium bool `json:"isPremium"`
}

// UsageResponse is the body for GET /v1/usage.
type UsageResponse struct {
	UsedToday  int    `json:"usedToday"`
	DailyLimit int    `json:"dailyLimit"`
	Remaining  int    `json:"remaining"`
	Tier       string `json:"tier"`
	IsPremium  bool   `json:"isPremium"`
	Date       string `json:"date"`
}

// UsageTestResponse is the body for POST /v1/usage/test.
type UsageTestResponse struct {
	Status      string    `json:"status"`
	DeviceToken string    `json:"deviceId"`
	Mode        string    `json:"mode"`
	Usage       UsageInfo `json:"usage"`
}

// DayStatsEntry is one day's aggregate in the admin stats response.
type DayStatsEntry struct {
	Date          string `json:"date"`
	Translations  int    `json:"translations"`
	ActiveDevices int    `json:"activeDevices"`
	GenZToEnglish int    `json:"genzToEnglish"`
	EnglishToGenZ int    `json:"englishToGenz"`
}

// AdminStatsResponse is the body for GET /v1/usage/admin/stats.
type AdminStatsResponse struct {
	Days []DayStatsEntry `json:"days"`
}

// DeviceStatsEntry is one device's aggregate in the admin devices response.
type DeviceStatsEntry struct {
	DeviceToken  string `json:"deviceToken"`
	Translations int    `json:"translations"`
	ActiveDays   int    `json:"activeDays"`
	LastSeenDate string `json:"lastSeenDate"`
}

// AdminDevicesResponse is the body for GET /v1/usage/admin/devices.
type AdminDevicesResponse struct {
	Devices []DeviceStatsEntry `json:"devices"`
}
