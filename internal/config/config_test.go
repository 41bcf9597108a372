package config_test

import (
	"testing"
	"time"

	"pricewatch/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Interval != 15*time.Minute {
		t.Errorf("Interval = %v, want 15m", cfg.Interval)
	}
	if cfg.Pacing != 2*time.Second {
		t.Errorf("Pacing = %v, want 2s", cfg.Pacing)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1 (sequential)", cfg.Concurrency)
	}
	if cfg.PostgresURL != "" {
		t.Error("PostgresURL should default to empty (file store)")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Error("Kafka brokers should default to empty (log sink)")
	}
	if cfg.Kafka.Topic != "price-alerts" {
		t.Errorf("Kafka topic = %q", cfg.Kafka.Topic)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PRICEWATCH_LOG_LEVEL", "debug")
	t.Setenv("PRICEWATCH_INTERVAL", "5m")
	t.Setenv("PRICEWATCH_PACING", "500ms")
	t.Setenv("PRICEWATCH_CONCURRENCY", "4")
	t.Setenv("PRICEWATCH_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("PRICEWATCH_KAFKA_TOPIC", "alerts")

	cfg := config.FromEnv()

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Interval != 5*time.Minute {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.Pacing != 500*time.Millisecond {
		t.Errorf("Pacing = %v", cfg.Pacing)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d", cfg.Concurrency)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" {
		t.Errorf("Kafka brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "alerts" {
		t.Errorf("Kafka topic = %q", cfg.Kafka.Topic)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("PRICEWATCH_INTERVAL", "not-a-duration")
	t.Setenv("PRICEWATCH_CONCURRENCY", "lots")

	cfg := config.FromEnv()

	if cfg.Interval != 15*time.Minute {
		t.Errorf("invalid duration should fall back to default, got %v", cfg.Interval)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Concurrency)
	}
}
