package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the monitor.
type Config struct {
	// Log level: debug, info, warn, error
	LogLevel string

	// Path to the product configuration file
	ProductsFile string

	// Path to the JSON history snapshot (used when PostgresURL is empty)
	HistoryFile string

	// Postgres connection URL; empty selects the file store
	PostgresURL string

	// HTTP listen address
	HTTPAddr string

	// Time between monitoring cycles
	Interval time.Duration

	// Delay between products within a sequential cycle
	Pacing time.Duration

	// Products observed concurrently; 1 preserves the sequential pacing
	Concurrency int

	// Per-observation fetch timeout
	FetchTimeout time.Duration

	// Kafka alert sink; empty brokers select the log sink
	Kafka KafkaConfig
}

// KafkaConfig holds alert sink broker settings.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxRetries   int
	RetryBackoff time.Duration
	Compression  string
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		ProductsFile: "products.json",
		HistoryFile:  "price_history.json",
		HTTPAddr:     ":8080",
		Interval:     15 * time.Minute,
		Pacing:       2 * time.Second,
		Concurrency:  1,
		FetchTimeout: 30 * time.Second,
		Kafka: KafkaConfig{
			Topic:        "price-alerts",
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
		},
	}
}

// FromEnv returns the default config with environment overrides applied.
func FromEnv() *Config {
	cfg := Default()

	cfg.LogLevel = envString("PRICEWATCH_LOG_LEVEL", cfg.LogLevel)
	cfg.ProductsFile = envString("PRICEWATCH_PRODUCTS_FILE", cfg.ProductsFile)
	cfg.HistoryFile = envString("PRICEWATCH_HISTORY_FILE", cfg.HistoryFile)
	cfg.PostgresURL = envString("PRICEWATCH_POSTGRES_URL", cfg.PostgresURL)
	cfg.HTTPAddr = envString("PRICEWATCH_HTTP_ADDR", cfg.HTTPAddr)
	cfg.Interval = envDuration("PRICEWATCH_INTERVAL", cfg.Interval)
	cfg.Pacing = envDuration("PRICEWATCH_PACING", cfg.Pacing)
	cfg.Concurrency = envInt("PRICEWATCH_CONCURRENCY", cfg.Concurrency)
	cfg.FetchTimeout = envDuration("PRICEWATCH_FETCH_TIMEOUT", cfg.FetchTimeout)

	if brokers := os.Getenv("PRICEWATCH_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.Topic = envString("PRICEWATCH_KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.MaxRetries = envInt("PRICEWATCH_KAFKA_MAX_RETRIES", cfg.Kafka.MaxRetries)
	cfg.Kafka.Compression = envString("PRICEWATCH_KAFKA_COMPRESSION", cfg.Kafka.Compression)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
