package engine_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/engine"
	"pricewatch/internal/logger"
	"pricewatch/internal/models"
)

func TestMain(m *testing.M) {
	logger.Init("disabled")
	os.Exit(m.Run())
}

// priceServer serves a mutable price as page text.
type priceServer struct {
	mu    sync.Mutex
	price string
}

func (s *priceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(w, `<span class="price">%s</span>`, s.price)
}

func (s *priceServer) set(price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
}

func testConfig(t *testing.T, productURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	productsFile := filepath.Join(dir, "products.json")
	content := fmt.Sprintf(`{"products": [{"name": "Widget", "url": %q, "price_selector": ".price"}]}`, productURL)
	if err := os.WriteFile(productsFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ProductsFile = productsFile
	cfg.HistoryFile = filepath.Join(dir, "history.json")
	cfg.Pacing = time.Millisecond
	cfg.FetchTimeout = 5 * time.Second
	return cfg
}

func TestTriggerCycleEndToEnd(t *testing.T) {
	srv := &priceServer{price: "$50.00"}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	ctx := context.Background()

	e, err := engine.New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// First cycle seeds history and must not alert
	alerts, err := e.TriggerCycle(ctx)
	if err != nil {
		t.Fatalf("TriggerCycle: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("seeding cycle produced %d alerts", len(alerts))
	}

	// Price drops 10%: the second cycle raises a drop alert
	srv.set("$45.00")
	alerts, err = e.TriggerCycle(ctx)
	if err != nil {
		t.Fatalf("TriggerCycle: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Kind != models.KindDrop {
		t.Errorf("kind = %s, want drop", alerts[0].Kind)
	}

	// History snapshot was persisted after the cycle
	if _, err := os.Stat(cfg.HistoryFile); err != nil {
		t.Errorf("history file not written: %v", err)
	}
}

func TestEngineRestoresHistoryAcrossRestarts(t *testing.T) {
	srv := &priceServer{price: "$50.00"}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cfg := testConfig(t, ts.URL)
	ctx := context.Background()

	e, err := engine.New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.TriggerCycle(ctx); err != nil {
		t.Fatal(err)
	}

	// A fresh engine loads the persisted record, so a drop alerts immediately
	srv.set("$40.00")
	e2, err := engine.New(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	alerts, err := e2.TriggerCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].Kind != models.KindDrop {
		t.Fatalf("restarted engine alerts = %+v, want one drop", alerts)
	}
	if alerts[0].OldPrice != 50.00 {
		t.Errorf("old price = %v, want the persisted 50.00", alerts[0].OldPrice)
	}
}

func TestEngineNewFailsWithoutProducts(t *testing.T) {
	cfg := config.Default()
	cfg.ProductsFile = filepath.Join(t.TempDir(), "missing.json")

	if _, err := engine.New(context.Background(), cfg); err == nil {
		t.Error("expected an error for a missing products file")
	}
}
