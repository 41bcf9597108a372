package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ProductID is a stable identifier for a tracked product, derived from its URL.
type ProductID string

// IDLength is the number of hex characters kept from the URL digest.
const IDLength = 12

// DefaultAlertThreshold is the percentage drop that triggers a "drop" alert
// when a product does not configure its own threshold.
const DefaultAlertThreshold = 5.0

// NewProductID derives a deterministic identifier from a product URL.
func NewProductID(url string) ProductID {
	sum := sha256.Sum256([]byte(url))
	return ProductID(hex.EncodeToString(sum[:])[:IDLength])
}

// Product is a tracked item and its alert rules.
type Product struct {
	// Stable identifier derived from URL
	ID ProductID `json:"id"`

	// Display name
	Name string `json:"name"`

	// Page the price is observed on
	URL string `json:"url"`

	// Opaque locator passed to the observation source
	Selector string `json:"price_selector,omitempty"`

	// Alert when the price falls to or below this value (optional)
	TargetPrice *float64 `json:"target_price,omitempty"`

	// Alert on every price movement, however small
	AlertOnAnyChange bool `json:"alert_on_any_change,omitempty"`

	// Minimum percentage drop that counts as significant
	AlertThresholdPercent float64 `json:"alert_threshold_percent"`
}

// Validation errors
var (
	ErrEmptyName         = errors.New("product name cannot be empty")
	ErrEmptyURL          = errors.New("product URL cannot be empty")
	ErrNegativeThreshold = errors.New("alert threshold cannot be negative")
	ErrNegativeTarget    = errors.New("target price cannot be negative")
)

// Validate checks that the product has all required fields and sane rule values
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}

	if p.URL == "" {
		return ErrEmptyURL
	}

	if p.AlertThresholdPercent < 0 {
		return ErrNegativeThreshold
	}

	if p.TargetPrice != nil && *p.TargetPrice < 0 {
		return ErrNegativeTarget
	}

	return nil
}
