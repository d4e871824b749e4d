// Package source hands raw catalog batches to the catalog engine. A Source
// knows where entries come from and tags every batch with its name so the
// entries can show their provenance.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/repo"
)

// NameAPI is the provenance tag of batches read from the database.
const NameAPI = "api"

// Source loads one raw batch.
type Source interface {
	Name() string
	Load(ctx context.Context) (catalog.Batch, error)
}

// DBSource reads the stored batch written by the editing surface.
type DBSource struct {
	DB  *gorm.DB
	Now func() time.Time
}

// Name implements Source.
func (s *DBSource) Name() string { return NameAPI }

// Load implements Source.
func (s *DBSource) Load(ctx context.Context) (catalog.Batch, error) {
	if s.DB == nil {
		return catalog.Batch{}, errors.New("source: no database configured")
	}
	items, err := repo.ListCatalogItems(ctx, s.DB)
	if err != nil {
		return catalog.Batch{}, fmt.Errorf("source %s: %w", NameAPI, err)
	}
	entries := make([]catalog.Entry, 0, len(items))
	for _, it := range items {
		e, err := it.Entry()
		if err != nil {
			return catalog.Batch{}, fmt.Errorf("source %s: row %s: %w", NameAPI, it.ID, err)
		}
		entries = append(entries, e)
	}
	return catalog.Batch{Entries: entries, Source: NameAPI, LoadedAt: now(s.Now)}, nil
}

// Fallback tries Primary first and Secondary when Primary fails. The error
// is returned only when both fail.
type Fallback struct {
	Primary   Source
	Secondary Source
	// OnFallback, when set, observes the primary failure.
	OnFallback func(err error)
}

// Name implements Source.
func (f *Fallback) Name() string {
	return f.Primary.Name() + "|" + f.Secondary.Name()
}

// Load implements Source.
func (f *Fallback) Load(ctx context.Context) (catalog.Batch, error) {
	b, err := f.Primary.Load(ctx)
	if err == nil {
		return b, nil
	}
	if f.OnFallback != nil {
		f.OnFallback(err)
	}
	if ctx.Err() != nil {
		return catalog.Batch{}, ctx.Err()
	}
	b, err2 := f.Secondary.Load(ctx)
	if err2 != nil {
		return catalog.Batch{}, errors.Join(err, err2)
	}
	return b, nil
}

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}
