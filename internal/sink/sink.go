// Package sink delivers alerts to an external destination. Delivery transport
// is a collaborator concern; the engine only hands alerts over.
package sink

import (
	"context"

	"github.com/rs/zerolog"

	"pricewatch/internal/logger"
	"pricewatch/internal/models"
)

// Sink receives alerts produced by a monitoring cycle.
type Sink interface {
	Send(ctx context.Context, alert models.Alert) error
	Close() error
}

// LogSink writes alerts to the structured log. It is the default sink when no
// broker is configured.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a sink that logs alerts.
func NewLogSink() *LogSink {
	return &LogSink{log: logger.WithComponent("alert_sink")}
}

// Send logs the alert. It never fails.
func (s *LogSink) Send(ctx context.Context, alert models.Alert) error {
	s.log.Info().
		Str("kind", string(alert.Kind)).
		Str("product", alert.Product).
		Str("url", alert.URL).
		Float64("old_price", alert.OldPrice).
		Float64("new_price", alert.NewPrice).
		Float64("change_percent", alert.ChangePercent).
		Time("observed_at", alert.Timestamp).
		Msg("price alert")
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }
