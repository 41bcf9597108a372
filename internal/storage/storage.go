// Package storage persists history snapshots between runs. The engine exposes
// its state as a flat snapshot; how it is stored is a collaborator decision.
package storage

import (
	"context"

	"pricewatch/internal/history"
)

// Persister saves and reloads the full history snapshot.
type Persister interface {
	Save(ctx context.Context, snap history.Snapshot) error
	Load(ctx context.Context) (history.Snapshot, error)
	Close() error
}
