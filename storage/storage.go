// Package storage selects and wraps one of the three catalog backends:
// Supabase (hosted REST), Postgres (server database), or SQLite
// (embedded file database). The choice is made once at startup from
// configuration; there is no runtime failover between backends.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage/postgres"
	"github.com/rsquare-id/rsquare/storage/sqlite"
	"github.com/rsquare-id/rsquare/storage/supabase"
)

// Store is the uniform CRUD contract every backend implements.
type Store interface {
	// ListProducts returns the catalog ordered by order_number
	// ascending, ties broken by title. Inactive products are excluded
	// unless includeInactive is set. An empty catalog is an empty
	// slice, not an error.
	ListProducts(ctx context.Context, includeInactive bool) ([]catalog.Product, error)

	// ListFeatured returns minimal fields for featured, active products.
	ListFeatured(ctx context.Context) ([]catalog.Summary, error)

	// ListFree returns minimal fields for free (harga=0), active products.
	ListFree(ctx context.Context) ([]catalog.Summary, error)

	// GetProduct returns (nil, nil) when the id does not exist.
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)

	// SaveProduct upserts the product row and fully replaces all child
	// relations (details, links, gallery, seo) from the payload. On
	// insert the product becomes active with order_number max+1; on
	// update active and order_number are left untouched.
	SaveProduct(ctx context.Context, p *catalog.Product) error

	// SetFeatured flips the featured flag. The "at least one featured"
	// rule is enforced by the API layer, not here.
	SetFeatured(ctx context.Context, id string, featured bool) error

	// SetActive flips the soft-visibility flag.
	SetActive(ctx context.Context, id string, active bool) error

	// Reorder assigns each id a 1-based order_number equal to its
	// index in ids.
	Reorder(ctx context.Context, ids []string) error

	// DeleteProduct removes the product and all child rows, reporting
	// whether a row existed.
	DeleteProduct(ctx context.Context, id string) (bool, error)

	Close() error
}

// Config carries everything backend selection needs.
type Config struct {
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	Environment string
	SQLitePath  string
}

// Open resolves the backend once: Supabase credentials win, then a
// server database URL in production, then the embedded database.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch {
	case cfg.SupabaseURL != "" && cfg.SupabaseKey != "":
		slog.Info("using supabase backend", "url", cfg.SupabaseURL)
		return supabase.New(cfg.SupabaseURL, cfg.SupabaseKey), nil
	case cfg.DatabaseURL != "" && cfg.Environment == "production":
		slog.Info("using postgres backend")
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return store, nil
	default:
		slog.Info("using sqlite backend", "path", cfg.SQLitePath)
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return store, nil
	}
}
