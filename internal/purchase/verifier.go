package purchase

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a store-signed transaction and extracts its claims.
type Verifier interface {
	Verify(ctx context.Context, signedTransaction string) (*TransactionClaims, error)
}

// StoreKitConfig holds configuration for the App Store verifier.
type StoreKitConfig struct {
	// BundleID is the app's bundle identifier; transactions for any other
	// bundle are rejected.
	BundleID string

	// ProductIDs are the product identifiers this app sells.
	ProductIDs []string

	// Roots is the certificate pool used to validate the transaction's
	// x5c chain. When nil the leaf certificate is trusted as presented.
	Roots *x509.CertPool

	// AllowUnverified skips signature verification entirely. Development
	// only; StoreKit sandbox transactions still get claim checks.
	AllowUnverified bool
}

// StoreKitVerifier verifies StoreKit 2 signed transactions (JWS with an
// embedded x5c certificate chain).
type StoreKitVerifier struct {
	bundleID        string
	products        map[string]bool
	roots           *x509.CertPool
	allowUnverified bool
}

var _ Verifier = (*StoreKitVerifier)(nil)

// NewStoreKitVerifier creates an App Store signed-transaction verifier.
func NewStoreKitVerifier(cfg StoreKitConfig) *StoreKitVerifier {
	products := make(map[string]bool, len(cfg.ProductIDs))
	for _, id := range cfg.ProductIDs {
		products[id] = true
	}
	return &StoreKitVerifier{
		bundleID:        cfg.BundleID,
		products:        products,
		roots:           cfg.Roots,
		allowUnverified: cfg.AllowUnverified,
	}
}

// storeKitClaims mirrors the JWSTransactionDecodedPayload fields we use.
// StoreKit encodes timestamps as millisecond epochs.
type storeKitClaims struct {
	jwt.RegisteredClaims
	TransactionID  string `json:"transactionId"`
	ProductID      string `json:"productId"`
	BundleID       string `json:"bundleId"`
	PurchaseDateMS int64  `json:"purchaseDate"`
}

// Verify parses the signed transaction, checks its signature against the
// embedded certificate chain, and validates the bundle and product claims.
func (v *StoreKitVerifier) Verify(_ context.Context, signedTransaction string) (*TransactionClaims, error) {
	claims := &storeKitClaims{}

	if v.allowUnverified {
		if _, _, err := jwt.NewParser().ParseUnverified(signedTransaction, claims); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransaction, err.Error())
		}
	} else {
		_, err := jwt.NewParser(
			jwt.WithValidMethods([]string{"ES256"}),
		).ParseWithClaims(signedTransaction, claims, v.keyFromChain)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransaction, err.Error())
		}
	}

	return v.checkClaims(claims)
}

func (v *StoreKitVerifier) checkClaims(claims *storeKitClaims) (*TransactionClaims, error) {
	if claims.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction ID", ErrInvalidTransaction)
	}
	if claims.BundleID != v.bundleID {
		return nil, fmt.Errorf("%w: got %q", ErrWrongBundle, claims.BundleID)
	}
	if !v.products[claims.ProductID] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, claims.ProductID)
	}

	return &TransactionClaims{
		TransactionID: claims.TransactionID,
		ProductID:     claims.ProductID,
		BundleID:      claims.BundleID,
		PurchaseDate:  time.UnixMilli(claims.PurchaseDateMS).UTC(),
	}, nil
}

// keyFromChain extracts the signing key from the token's x5c header and,
// when a root pool is configured, validates the certificate chain.
func (v *StoreKitVerifier) keyFromChain(token *jwt.Token) (interface{}, error) {
	chain, ok := token.Header["x5c"].([]interface{})
	if !ok || len(chain) == 0 {
		return nil, errors.New("missing x5c certificate chain")
	}

	certs := make([]*x509.Certificate, 0, len(chain))
	for _, entry := range chain {
		der, ok := entry.(string)
		if !ok {
			return nil, errors.New("malformed x5c entry")
		}
		raw, err := base64.StdEncoding.DecodeString(der)
		if err != nil {
			return nil, fmt.Errorf("decoding x5c certificate: %w", err)
		}
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing x5c certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	leaf := certs[0]

	if v.roots != nil {
		intermediates := x509.NewCertPool()
		for _, cert := range certs[1:] {
			intermediates.AddCert(cert)
		}
		if _, err := leaf.Verify(x509.VerifyOptions{
			Roots:         v.roots,
			Intermediates: intermediates,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		}); err != nil {
			return nil, fmt.Errorf("verifying certificate chain: %w", err)
		}
	}

	return leaf.PublicKey, nil
}
