// Package alerts decides whether a new observation should raise an alert
// according to a product's rules.
package alerts

import (
	"math"

	"pricewatch/internal/models"
)

// changeEpsilon is the minimum |change percent| that counts as movement for
// the any-change rule.
const changeEpsilon = 0.01

// Evaluate compares a new observation against the prior record and the
// product's rules. Rules are checked in fixed priority order and the first
// match wins: target_reached, then drop, then change. A nil prior record is
// the seeding case and never alerts. Evaluate is a pure function of its
// arguments.
func Evaluate(p models.Product, prior *models.PriceRecord, current models.PriceRecord) (models.Alert, bool) {
	if prior == nil || prior.Price == nil || current.Price == nil {
		return models.Alert{}, false
	}

	oldPrice := *prior.Price
	newPrice := *current.Price

	// A non-positive prior degenerates the change to 0 rather than dividing
	var changePercent float64
	if oldPrice > 0 {
		changePercent = (newPrice - oldPrice) / oldPrice * 100
	}

	var kind models.AlertKind
	switch {
	case p.TargetPrice != nil && newPrice <= *p.TargetPrice && oldPrice > *p.TargetPrice:
		// First observation to cross the target fires; once below, later
		// observations fall through to the drop and change rules
		kind = models.KindTargetReached
	case changePercent <= -p.AlertThresholdPercent:
		kind = models.KindDrop
	case p.AlertOnAnyChange && math.Abs(changePercent) > changeEpsilon:
		kind = models.KindChange
	default:
		return models.Alert{}, false
	}

	return models.Alert{
		Product:       p.Name,
		URL:           p.URL,
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		ChangePercent: changePercent,
		Kind:          kind,
		Timestamp:     current.Timestamp,
	}, true
}
