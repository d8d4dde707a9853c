package models

// UserResponse is the body for GET /v1/user.
type UserResponse struct {
	DeviceID     string    `json:"deviceId"`
	Tier         string    `json:"tier"`
	IsPremium    bool      `json:"isPremium"`
	CreatedAt    Timestamp `json:"createdAt"`
	LastActiveAt Timestamp `json:"lastActive"`
}

// UpgradeRequest is the body for POST /v1/user/upgrade.
type UpgradeRequest struct {
	// Platform is the originating store. Only "app_store" is supported.
	Platform string `json:"platform"`

	// SignedTransaction is the StoreKit 2 signed transaction JWS.
	SignedTransaction string `json:"signedTransaction"`
}

// UpgradeResponse is the body for a successful upgrade.
type UpgradeResponse struct {
	IsPremium     bool   `json:"isPremium"`
	ProductID     string `json:"productId"`
	TransactionID string `json:"transactionId"`
}
