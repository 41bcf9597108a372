package models

import "time"

// PriceRecord is one successfully parsed price observation.
// Records are immutable once created; a record without a price is never
// eligible for history.
type PriceRecord struct {
	ProductID ProductID `json:"product_id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`

	// Parsed price; nil means parsing failed and the record must not be stored
	Price *float64 `json:"price"`

	// ISO-like 3-letter currency code, "USD" when undetected
	Currency string `json:"currency"`

	// Observation time; duplicates and out-of-order values are stored as-is
	Timestamp time.Time `json:"timestamp"`
}

// NewPriceRecord builds a record for a parsed observation of the given product.
func NewPriceRecord(p Product, price float64, currency string, ts time.Time) PriceRecord {
	return PriceRecord{
		ProductID: p.ID,
		URL:       p.URL,
		Name:      p.Name,
		Price:     &price,
		Currency:  currency,
		Timestamp: ts,
	}
}
