package parser_test

import (
	"math"
	"testing"

	"pricewatch/internal/parser"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantPrice    float64
		wantOK       bool
		wantCurrency string
	}{
		{"dollar with thousands separator", "$1,234.56", 1234.56, true, "USD"},
		{"plain number", "29.99", 29.99, true, "USD"},
		{"euro symbol before", "€99.00", 99.00, true, "EUR"},
		{"euro symbol after", "99.00 €", 99.00, true, "EUR"},
		{"euro comma style", "€99,00", 9900, true, "EUR"},
		{"pound", "£10.50", 10.50, true, "GBP"},
		{"yen integer", "¥1200", 1200, true, "JPY"},
		{"price embedded in text", "Now only $49.99 (was $59.99)", 49.99, true, "USD"},
		{"trailing decimal point", "99.", 99, true, "USD"},
		{"no number", "out of stock", 0, false, "USD"},
		{"empty", "", 0, false, "USD"},
		{"symbol but no number", "€ --", 0, false, "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok, currency := parser.Parse(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if currency != tt.wantCurrency {
				t.Errorf("Parse(%q) currency = %q, want %q", tt.text, currency, tt.wantCurrency)
			}
			if ok && math.Abs(price-tt.wantPrice) > 1e-9 {
				t.Errorf("Parse(%q) price = %v, want %v", tt.text, price, tt.wantPrice)
			}
		})
	}
}

func TestParseCurrencyPrecedence(t *testing.T) {
	// The first symbol in the fixed precedence order wins, regardless of
	// position in the text
	price, ok, currency := parser.Parse("¥100 or €90")
	if !ok {
		t.Fatal("expected a price")
	}
	if currency != "EUR" {
		t.Errorf("currency = %q, want EUR", currency)
	}
	if price != 100 {
		t.Errorf("price = %v, want 100 (first numeric token)", price)
	}
}

func TestParseIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		price, ok, currency := parser.Parse("$1,234.56")
		if !ok || price != 1234.56 || currency != "USD" {
			t.Fatalf("iteration %d: got (%v, %v, %q)", i, price, ok, currency)
		}
	}
}
