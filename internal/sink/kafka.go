package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"pricewatch/internal/logger"
	"pricewatch/internal/metrics"
	"pricewatch/internal/models"
)

// Kafka sink errors
var (
	ErrSinkClosed      = errors.New("sink is closed")
	ErrSerializeFailed = errors.New("failed to serialize alert")
)

// KafkaConfig holds Kafka sink settings.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
	Compression  string
}

// KafkaSink publishes alerts to a Kafka topic, keyed by product URL so alerts
// for one product land on one partition in order.
type KafkaSink struct {
	cfg    KafkaConfig
	writer *kafka.Writer
	closed atomic.Bool

	// Metrics
	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewKafkaSink creates a Kafka-backed alert sink.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}

	if cfg.Topic == "" {
		return nil, errors.New("topic is required")
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // Partition by key
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Compression:  getCompression(cfg.Compression),
		MaxAttempts:  1, // Retries are handled here, with backoff
		Async:        false,
	}

	return &KafkaSink{cfg: cfg, writer: writer}, nil
}

// getCompression returns the kafka compression codec
func getCompression(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.None
	}
}

// Send publishes one alert with exponential backoff retry.
func (s *KafkaSink) Send(ctx context.Context, alert models.Alert) error {
	if s.closed.Load() {
		return ErrSinkClosed
	}

	data, err := json.Marshal(alert)
	if err != nil {
		s.failed.Add(1)
		metrics.SinkPublishTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}

	msg := kafka.Message{
		Key:   []byte(models.NewProductID(alert.URL)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "alert_type", Value: []byte(alert.Kind)},
			{Key: "product", Value: []byte(alert.Product)},
		},
		Time: alert.Timestamp,
	}

	if err := s.publishWithRetry(ctx, msg); err != nil {
		s.failed.Add(1)
		metrics.SinkPublishTotal.WithLabelValues("failed").Inc()
		return err
	}

	s.sent.Add(1)
	metrics.SinkPublishTotal.WithLabelValues("success").Inc()
	return nil
}

// publishWithRetry publishes a message with exponential backoff retry
func (s *KafkaSink) publishWithRetry(ctx context.Context, msg kafka.Message) error {
	log := logger.WithComponent("kafka_sink")
	var lastErr error
	backoff := s.cfg.RetryBackoff

	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying kafka publish")

			metrics.SinkPublishRetries.Inc()

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := s.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Msg("kafka publish attempt failed")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", s.cfg.MaxRetries+1, lastErr)
}

// Close closes the underlying writer.
func (s *KafkaSink) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}
	return s.writer.Close()
}

// Stats returns sink statistics
func (s *KafkaSink) Stats() Stats {
	return Stats{
		Sent:   s.sent.Load(),
		Failed: s.failed.Load(),
	}
}

// Stats holds sink metrics
type Stats struct {
	Sent   uint64
	Failed uint64
}
