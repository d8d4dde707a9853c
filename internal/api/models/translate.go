package models

// TranslateRequest is the body for POST /v1/translate.
type TranslateRequest struct {
	// Text is the input to translate. At most 1000 characters.
	Text string `json:"text"`

	// Mode is "genz_to_english" or "english_to_genz".
	Mode string `json:"mode"`
}

// TranslateResponse is the body for a successful translation.
type TranslateResponse struct {
	TranslatedText string    `json:"translatedText"`
	OriginalText   string    `json:"originalText"`
	Mode           string    `json:"mode"`
	UsageInfo      UsageInfo `json:"usageInfo"`
}

// TranslateTestResponse is the body for POST /v1/translate/test.
type TranslateTestResponse struct {
	Status      string `json:"status"`
	DeviceToken string `json:"deviceId"`
}
