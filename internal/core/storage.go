package core

import (
	"context"
	"time"
)

// CatalogEntry indexes a saved snapshot. The snapshot itself stays on disk.
type CatalogEntry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type CatalogRepository interface {
	Record(ctx context.Context, entry CatalogEntry) error
	List(ctx context.Context, kind Kind, limit int) ([]CatalogEntry, error)
	Get(ctx context.Context, id string) (CatalogEntry, error)
}
