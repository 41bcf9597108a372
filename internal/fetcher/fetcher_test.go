package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricewatch/internal/fetcher"
)

func TestHTTPSourceFetch(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<span class="price">$19.99</span>`))
	}))
	defer ts.Close()

	src := fetcher.NewHTTPSource(5 * time.Second)
	body, err := src.Fetch(context.Background(), ts.URL, ".price")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(body, "$19.99") {
		t.Errorf("body %q does not contain the price text", body)
	}
	if gotUA == "" {
		t.Error("request sent without a User-Agent header")
	}
}

func TestHTTPSourceFetchNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	src := fetcher.NewHTTPSource(5 * time.Second)
	if _, err := src.Fetch(context.Background(), ts.URL, ""); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestHTTPSourceFetchCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	src := fetcher.NewHTTPSource(5 * time.Second)
	if _, err := src.Fetch(ctx, ts.URL, ""); err == nil {
		t.Error("expected an error when the context expires")
	}
}

func TestHTTPSourceFetchBadURL(t *testing.T) {
	src := fetcher.NewHTTPSource(time.Second)
	if _, err := src.Fetch(context.Background(), "http://127.0.0.1:1", ""); err == nil {
		t.Error("expected a connection error")
	}
}
