package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// productsFile is the on-disk product configuration format.
type productsFile struct {
	Products []Product `json:"products"`
}

// LoadProducts reads product configuration from a JSON file, applies rule
// defaults and derives product IDs. A product that fails validation aborts
// the load.
func LoadProducts(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}

	var file productsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse products file: %w", err)
	}

	products := make([]Product, 0, len(file.Products))
	for i := range file.Products {
		p := file.Products[i]
		if p.AlertThresholdPercent == 0 {
			p.AlertThresholdPercent = DefaultAlertThreshold
		}
		p.ID = NewProductID(p.URL)

		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %d (%q): %w", i, p.Name, err)
		}
		products = append(products, p)
	}

	return products, nil
}
