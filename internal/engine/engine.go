// Package engine wires the monitor together and owns its lifecycle: the
// scheduler, the HTTP surface, alert dispatch and snapshot persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pricewatch/internal/config"
	"pricewatch/internal/fetcher"
	"pricewatch/internal/handlers"
	"pricewatch/internal/history"
	"pricewatch/internal/logger"
	"pricewatch/internal/metrics"
	"pricewatch/internal/middleware"
	"pricewatch/internal/models"
	"pricewatch/internal/monitor"
	"pricewatch/internal/sink"
	"pricewatch/internal/storage"
)

// ErrCycleRunning is returned when a cycle is requested while one is in flight.
var ErrCycleRunning = errors.New("a monitoring cycle is already running")

// Engine is the high-level coordinator for observing, evaluating, alerting
// and persisting.
type Engine struct {
	cfg       *config.Config
	products  []models.Product
	store     *history.Store
	loop      *monitor.Loop
	alertSink sink.Sink
	persister storage.Persister

	httpServer *http.Server
	wg         sync.WaitGroup
	cycleMu    sync.Mutex

	// Metrics
	cycles     atomic.Uint64
	dispatched atomic.Uint64
}

// New constructs an Engine: loads products, restores persisted history and
// wires the source, sink and monitor loop.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	log := logger.WithComponent("engine")

	products, err := models.LoadProducts(cfg.ProductsFile)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	log.Info().Int("products", len(products)).Str("file", cfg.ProductsFile).Msg("products loaded")
	metrics.ProductsTracked.Set(float64(len(products)))

	persister, err := newPersister(ctx, cfg)
	if err != nil {
		return nil, err
	}

	snap, err := persister.Load(ctx)
	if err != nil {
		persister.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}
	store := history.FromSnapshot(snap)
	log.Info().Int("records", store.Size()).Msg("history restored")
	metrics.HistoryRecords.Set(float64(store.Size()))

	alertSink, err := newSink(cfg)
	if err != nil {
		persister.Close()
		return nil, err
	}

	loop := monitor.New(monitor.Config{
		Source:      fetcher.NewHTTPSource(cfg.FetchTimeout),
		Store:       store,
		Pacing:      cfg.Pacing,
		Concurrency: cfg.Concurrency,
	})

	return &Engine{
		cfg:       cfg,
		products:  products,
		store:     store,
		loop:      loop,
		alertSink: alertSink,
		persister: persister,
	}, nil
}

// newPersister selects the durable state backend from config.
func newPersister(ctx context.Context, cfg *config.Config) (storage.Persister, error) {
	log := logger.WithComponent("engine")

	if cfg.PostgresURL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		log.Info().Msg("using postgres history store")
		return store, nil
	}

	log.Info().Str("file", cfg.HistoryFile).Msg("using file history store")
	return storage.NewFileStore(cfg.HistoryFile), nil
}

// newSink selects the alert sink from config.
func newSink(cfg *config.Config) (sink.Sink, error) {
	log := logger.WithComponent("engine")

	if len(cfg.Kafka.Brokers) > 0 {
		s, err := sink.NewKafkaSink(sink.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
			Compression:  cfg.Kafka.Compression,
		})
		if err != nil {
			return nil, fmt.Errorf("init kafka sink: %w", err)
		}
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("using kafka alert sink")
		return s, nil
	}

	log.Info().Msg("using log alert sink")
	return sink.NewLogSink(), nil
}

// Run starts the scheduler and HTTP server and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	log := logger.WithComponent("engine")
	log.Info().Msg("engine starting")

	e.initHTTPServer()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		log.Info().Str("addr", e.cfg.HTTPAddr).Msg("starting HTTP server")
		if err := e.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.reportStats(ctx)
	}()

	// First cycle runs immediately, then on the interval
	e.runScheduled(ctx)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received")
			return e.shutdown()
		case <-ticker.C:
			e.runScheduled(ctx)
		}
	}
}

// runScheduled runs one cycle from the scheduler, tolerating overlap with an
// operator-triggered cycle.
func (e *Engine) runScheduled(ctx context.Context) {
	if _, err := e.TriggerCycle(ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
		log := logger.WithComponent("engine")
		log.Error().Err(err).Msg("scheduled cycle failed")
	}
}

// TriggerCycle runs one monitoring cycle: observe all products, dispatch the
// collected alerts to the sink and persist the updated history. Only one
// cycle runs at a time.
func (e *Engine) TriggerCycle(ctx context.Context) ([]models.Alert, error) {
	if !e.cycleMu.TryLock() {
		return nil, ErrCycleRunning
	}
	defer e.cycleMu.Unlock()

	log := logger.WithComponent("engine")

	alerts := e.loop.RunCycle(ctx, e.products)
	e.cycles.Add(1)

	for _, alert := range alerts {
		if err := e.alertSink.Send(ctx, alert); err != nil {
			log.Error().
				Err(err).
				Str("product", alert.Product).
				Str("kind", string(alert.Kind)).
				Msg("failed to dispatch alert")
			continue
		}
		e.dispatched.Add(1)
	}

	if err := e.saveSnapshot(ctx); err != nil {
		log.Error().Err(err).Msg("failed to persist history")
	}

	return alerts, nil
}

// saveSnapshot persists the current history.
func (e *Engine) saveSnapshot(ctx context.Context) error {
	if err := e.persister.Save(ctx, e.store.Snapshot()); err != nil {
		metrics.SnapshotSavesTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.SnapshotSavesTotal.WithLabelValues("success").Inc()
	return nil
}

// initHTTPServer initializes the HTTP server with handlers
func (e *Engine) initHTTPServer() {
	mux := http.NewServeMux()

	api := handlers.New(e.store, e.products, e)

	mux.Handle("/products", middleware.Chain(
		http.HandlerFunc(api.Products),
		middleware.Recovery,
		middleware.Logging,
	))
	mux.Handle("/products/{id}/history", middleware.Chain(
		http.HandlerFunc(api.History),
		middleware.Recovery,
		middleware.Logging,
	))
	mux.Handle("/check", middleware.Chain(
		http.HandlerFunc(api.Check),
		middleware.Recovery,
		middleware.Logging,
	))

	mux.HandleFunc("/health", e.healthHandler)
	mux.HandleFunc("/stats", e.statsHandler)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	e.httpServer = &http.Server{
		Addr:         e.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// shutdown performs graceful shutdown
func (e *Engine) shutdown() error {
	log := logger.WithComponent("engine")
	log.Info().Msg("initiating graceful shutdown")

	// 1. Stop accepting new HTTP requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := e.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Wait for an in-flight cycle to finish, then persist final state
	e.cycleMu.Lock()
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := e.saveSnapshot(saveCtx); err != nil {
		log.Error().Err(err).Msg("final snapshot save failed")
	}
	saveCancel()
	e.cycleMu.Unlock()

	// 3. Close sink and persister
	if err := e.alertSink.Close(); err != nil {
		log.Error().Err(err).Msg("sink close error")
	}
	if err := e.persister.Close(); err != nil {
		log.Error().Err(err).Msg("persister close error")
	}

	// 4. Wait for all goroutines
	e.wg.Wait()

	log.Info().Msg("engine stopped gracefully")
	return nil
}

// reportStats periodically logs statistics
func (e *Engine) reportStats(ctx context.Context) {
	log := logger.WithComponent("engine")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loopStats := e.loop.Stats()
			log.Info().
				Uint64("cycles", e.cycles.Load()).
				Uint64("observed", loopStats.Observed).
				Uint64("skipped", loopStats.Skipped).
				Uint64("alerts_raised", loopStats.Raised).
				Uint64("alerts_dispatched", e.dispatched.Load()).
				Int("history_records", e.store.Size()).
				Msg("stats")
		}
	}
}

// healthHandler handles health check requests
func (e *Engine) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","products":%d,"timestamp":"%s"}`,
		len(e.products), time.Now().Format(time.RFC3339))
}

// statsHandler returns current statistics
func (e *Engine) statsHandler(w http.ResponseWriter, r *http.Request) {
	loopStats := e.loop.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"cycles": %d,
		"observed": %d,
		"skipped": %d,
		"alerts_raised": %d,
		"alerts_dispatched": %d,
		"history_records": %d,
		"products": %d
	}`,
		e.cycles.Load(),
		loopStats.Observed,
		loopStats.Skipped,
		loopStats.Raised,
		e.dispatched.Load(),
		e.store.Size(),
		len(e.products),
	)
}
