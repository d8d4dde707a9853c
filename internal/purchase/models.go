package purchase

import (
	"errors"
	"time"
)

// Platform identifies the store a purchase came from.
type Platform string

const (
	// PlatformAppStore is the Apple App Store.
	PlatformAppStore Platform = "app_store"
)

// Predefined errors for purchase verification.
var (
	// ErrInvalidTransaction is returned when the signed transaction cannot
	// be parsed or its signature cannot be verified.
	ErrInvalidTransaction = errors.New("invalid signed transaction")

	// ErrWrongBundle is returned when the transaction belongs to a
	// different app.
	ErrWrongBundle = errors.New("transaction bundle ID mismatch")

	// ErrUnknownProduct is returned when the transaction's product is not
	// one this app sells.
	ErrUnknownProduct = errors.New("unknown product ID")

	// ErrAlreadyRecorded is returned when the transaction ID was already
	// redeemed.
	ErrAlreadyRecorded = errors.New("transaction already recorded")
)

// Purchase is a verified, recorded store purchase.
type Purchase struct {
	// ID is the internal record identifier.
	ID string

	// DeviceToken is the device that redeemed the purchase.
	DeviceToken string

	// Platform is the originating store.
	Platform Platform

	// TransactionID is the store's transaction identifier. Unique; a
	// replayed transaction is rejected.
	TransactionID string

	// ProductID is the purchased product.
	ProductID string

	// PurchasedAt is the store-reported purchase time.
	PurchasedAt time.Time

	// CreatedAt is when the record was stored.
	CreatedAt time.Time
}

// TransactionClaims are the fields extracted from a StoreKit signed
// transaction after verification.
type TransactionClaims struct {
	TransactionID string
	ProductID     string
	BundleID      string
	PurchaseDate  time.Time
}
