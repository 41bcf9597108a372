// Package monitor sequences price observations across the product set:
// fetch, parse, evaluate against history, append, collect alerts.
package monitor

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"pricewatch/internal/alerts"
	"pricewatch/internal/fetcher"
	"pricewatch/internal/history"
	"pricewatch/internal/logger"
	"pricewatch/internal/metrics"
	"pricewatch/internal/models"
	"pricewatch/internal/parser"
)

// Config holds monitor loop configuration
type Config struct {
	Source fetcher.Source
	Store  *history.Store

	// Delay between products in sequential mode
	Pacing time.Duration

	// Number of products observed concurrently; <= 1 means sequential with
	// pacing, matching the external source's rate-limit expectations
	Concurrency int
}

// Loop runs monitoring cycles over a product set.
type Loop struct {
	source      fetcher.Source
	store       *history.Store
	pacing      time.Duration
	concurrency int

	// Per-product locks making read-evaluate-append atomic per product
	locks sync.Map // models.ProductID -> *sync.Mutex

	// Metrics
	observed atomic.Uint64
	skipped  atomic.Uint64
	raised   atomic.Uint64
}

// New creates a monitor loop
func New(cfg Config) *Loop {
	if cfg.Pacing <= 0 {
		cfg.Pacing = 2 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	return &Loop{
		source:      cfg.Source,
		store:       cfg.Store,
		pacing:      cfg.Pacing,
		concurrency: cfg.Concurrency,
	}
}

// RunCycle observes every product once and returns the collected alerts.
// Failures are per-product: a failed fetch or parse skips that product with no
// history mutation and never aborts the cycle. Cancellation is honored between
// products; a product whose sequence has started runs to completion.
func (l *Loop) RunCycle(ctx context.Context, products []models.Product) []models.Alert {
	log := logger.WithComponent("monitor")
	start := time.Now()
	defer func() {
		metrics.CyclesTotal.Inc()
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
		metrics.HistoryRecords.Set(float64(l.store.Size()))
	}()

	log.Info().Int("products", len(products)).Int("concurrency", l.concurrency).Msg("cycle started")

	var collected []models.Alert
	if l.concurrency > 1 {
		collected = l.runConcurrent(ctx, products)
	} else {
		collected = l.runSequential(ctx, products)
	}

	log.Info().
		Int("products", len(products)).
		Int("alerts", len(collected)).
		Dur("duration", time.Since(start)).
		Msg("cycle completed")

	return collected
}

// runSequential observes products one at a time with a fixed pacing delay.
func (l *Loop) runSequential(ctx context.Context, products []models.Product) []models.Alert {
	var collected []models.Alert

	for i, p := range products {
		select {
		case <-ctx.Done():
			return collected
		default:
		}

		if alert, ok := l.checkProduct(ctx, p); ok {
			collected = append(collected, alert)
		}

		if i < len(products)-1 {
			select {
			case <-time.After(l.pacing):
			case <-ctx.Done():
				return collected
			}
		}
	}

	return collected
}

// runConcurrent observes products with a bounded worker count. Alert order
// across products is unordered; per-product history access stays serialized
// via the keyed lock in checkProduct.
func (l *Loop) runConcurrent(ctx context.Context, products []models.Product) []models.Alert {
	sem := make(chan struct{}, l.concurrency)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var collected []models.Alert

	for _, p := range products {
		select {
		case <-ctx.Done():
			// Stop launching; already-started products run to completion
			wg.Wait()
			return collected
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(p models.Product) {
			defer wg.Done()
			defer func() { <-sem }()

			// Panic recovery
			defer func() {
				if r := recover(); r != nil {
					log := logger.WithComponent("monitor")
					log.Error().
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Str("product", p.Name).
						Msg("worker panic recovered")
					metrics.PanicsRecovered.WithLabelValues("monitor").Inc()
				}
			}()

			if alert, ok := l.checkProduct(ctx, p); ok {
				mu.Lock()
				collected = append(collected, alert)
				mu.Unlock()
			}
		}(p)
	}

	wg.Wait()
	return collected
}

// checkProduct runs one product through fetch, parse, evaluate, append.
func (l *Loop) checkProduct(ctx context.Context, p models.Product) (models.Alert, bool) {
	log := logger.WithProduct(p.Name, string(p.ID))

	text, err := l.source.Fetch(ctx, p.URL, p.Selector)
	if err != nil {
		log.Warn().Err(err).Msg("observation unavailable, skipping")
		metrics.ObservationsTotal.WithLabelValues("fetch_failed").Inc()
		l.skipped.Add(1)
		return models.Alert{}, false
	}

	price, ok, currency := parser.Parse(text)
	if !ok {
		log.Warn().Str("currency", currency).Msg("no price in observed text, skipping")
		metrics.ObservationsTotal.WithLabelValues("parse_failed").Inc()
		l.skipped.Add(1)
		return models.Alert{}, false
	}

	record := models.NewPriceRecord(p, price, currency, time.Now().UTC())

	// The last-record read, evaluation and append form one atomic sequence
	// per product. No blocking I/O happens under this lock.
	mu := l.productLock(p.ID)
	mu.Lock()
	var prior *models.PriceRecord
	if last, exists := l.store.Last(p.ID); exists {
		prior = &last
	}
	alert, fired := alerts.Evaluate(p, prior, record)
	err = l.store.Append(record)
	mu.Unlock()

	if err != nil {
		// Unreachable given the parse guard above; treated as a contract bug
		log.Error().Err(err).Msg("history rejected record")
		return models.Alert{}, false
	}

	metrics.ObservationsTotal.WithLabelValues("ok").Inc()
	l.observed.Add(1)

	log.Debug().
		Float64("price", price).
		Str("currency", currency).
		Msg("observation recorded")

	if !fired {
		return models.Alert{}, false
	}

	metrics.AlertsTotal.WithLabelValues(string(alert.Kind)).Inc()
	l.raised.Add(1)

	log.Info().
		Str("kind", string(alert.Kind)).
		Float64("old_price", alert.OldPrice).
		Float64("new_price", alert.NewPrice).
		Float64("change_percent", alert.ChangePercent).
		Msg("alert raised")

	return alert, true
}

// productLock returns the mutex guarding one product's history sequence.
func (l *Loop) productLock(id models.ProductID) *sync.Mutex {
	if mu, ok := l.locks.Load(id); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Stats returns loop statistics
func (l *Loop) Stats() Stats {
	return Stats{
		Observed: l.observed.Load(),
		Skipped:  l.skipped.Load(),
		Raised:   l.raised.Load(),
	}
}

// Stats holds monitor loop counters
type Stats struct {
	Observed uint64
	Skipped  uint64
	Raised   uint64
}
