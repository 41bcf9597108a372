// Package parser extracts a numeric price and currency code from free-form
// observed text. Parsing is pure: no I/O, no state.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultCurrency is assumed when no known symbol appears in the text.
const DefaultCurrency = "USD"

// currencies is the symbol precedence table. The first symbol found in this
// order wins, regardless of position in the text.
var currencies = []struct {
	symbol string
	code   string
}{
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

// numberPattern matches the first contiguous decimal token after thousands
// separators have been stripped.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d*)?`)

// Parse extracts a price and currency code from observed text. ok is false
// when no numeric token could be parsed; the detected currency is still
// returned in that case.
func Parse(text string) (price float64, ok bool, currency string) {
	text = strings.TrimSpace(text)

	currency = DefaultCurrency
	for _, c := range currencies {
		if strings.Contains(text, c.symbol) {
			currency = c.code
			break
		}
	}

	cleaned := strings.ReplaceAll(text, ",", "")
	token := numberPattern.FindString(cleaned)
	if token == "" {
		return 0, false, currency
	}

	price, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false, currency
	}

	return price, true, currency
}
