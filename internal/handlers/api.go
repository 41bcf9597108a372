// Package handlers exposes the read/manage HTTP API over the monitor state.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"pricewatch/internal/history"
	"pricewatch/internal/models"
)

// CycleRunner triggers an on-demand monitoring cycle.
type CycleRunner interface {
	TriggerCycle(ctx context.Context) ([]models.Alert, error)
}

// API serves product and history state over HTTP.
type API struct {
	store    *history.Store
	products []models.Product
	runner   CycleRunner
}

// New creates the HTTP API
func New(store *history.Store, products []models.Product, runner CycleRunner) *API {
	return &API{
		store:    store,
		products: products,
		runner:   runner,
	}
}

// Products handles GET /products
func (a *API) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": a.products,
		"count":    len(a.products),
	})
}

// History handles GET /products/{id}/history
func (a *API) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := models.ProductID(r.PathValue("id"))

	// Unknown products yield an empty history, not an error
	records := a.store.Get(id)
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": id,
		"records":    records,
		"count":      len(records),
	})
}

// Check handles POST /check: runs one cycle immediately and returns its alerts
func (a *API) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	alerts, err := a.runner.TriggerCycle(r.Context())
	if err != nil {
		a.writeError(w, http.StatusConflict, err.Error())
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// writeJSON writes a JSON response
func (a *API) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response
func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
