package models

import "time"

// AlertKind tags why an alert fired.
type AlertKind string

const (
	// KindTargetReached fires the first time the price crosses down to the target
	KindTargetReached AlertKind = "target_reached"

	// KindDrop fires on a drop at or beyond the product's threshold percent
	KindDrop AlertKind = "drop"

	// KindChange fires on any movement when the product opts in
	KindChange AlertKind = "change"
)

// IsValid checks if the alert kind is one of the known tags
func (k AlertKind) IsValid() bool {
	switch k {
	case KindTargetReached, KindDrop, KindChange:
		return true
	default:
		return false
	}
}

// Alert is the record of a rule firing for one observation. Alerts are derived
// values; the engine holds no alert history.
type Alert struct {
	Product       string    `json:"product"`
	URL           string    `json:"url"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	ChangePercent float64   `json:"change_percent"`
	Kind          AlertKind `json:"alert_type"`
	Timestamp     time.Time `json:"timestamp"`
}
