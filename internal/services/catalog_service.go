// Package services – CatalogService
//
// This file implements the CatalogService, which owns the current catalog
// snapshot. Reload hands the data source's batch to the engine and swaps the
// snapshot in; a failed reload leaves the previous snapshot in place. Queries
// run lock-free against whatever snapshot is current.
//
// Observability: public methods are OpenTelemetry-instrumented and feed the
// catalog Prometheus metrics; reload outcomes are logged with zerolog.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/metrics"
	"github.com/tbourn/go-waiter-catalog/internal/repo"
	"github.com/tbourn/go-waiter-catalog/internal/source"
)

const tracerName = "services/CatalogService"

// CatalogService coordinates the data source, the catalog engine and the
// stored batch.
type CatalogService struct {
	// DB is the GORM handle of the stored batch; optional.
	DB *gorm.DB
	// Source provides raw batches on reload.
	Source source.Source
	// Catalog holds the current snapshot.
	Catalog *catalog.Catalog
	// Metrics is optional.
	Metrics *metrics.Metrics

	mu          sync.Mutex // serializes reloads
	state       sync.RWMutex
	loaded      bool
	lastErr     error
	lastAttempt time.Time
}

// NewCatalogService constructs a CatalogService over a fresh catalog.
func NewCatalogService(db *gorm.DB, src source.Source, opts catalog.Options, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		DB:      db,
		Source:  src,
		Catalog: catalog.New(opts),
		Metrics: m,
	}
}

// Reload loads a batch from the source and makes it the current snapshot.
// Concurrent calls are serialized. On failure the error wraps
// ErrReloadFailed and the previous snapshot is kept.
func (s *CatalogService) Reload(ctx context.Context) (*catalog.Snapshot, error) {
	tr := otel.Tracer(tracerName)
	ctx, span := tr.Start(ctx, "Reload",
		trace.WithAttributes(attribute.String("catalog.source", s.Source.Name())),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	b, err := s.Source.Load(ctx)
	took := time.Since(start)

	s.state.Lock()
	s.lastAttempt = start
	s.lastErr = err
	s.state.Unlock()

	if err != nil {
		s.Metrics.ObserveReload(s.Source.Name(), took, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		log.Warn().Err(err).
			Str("source", s.Source.Name()).
			Uint64("kept_version", s.Catalog.Snapshot().Version).
			Msg("catalog reload failed")
		return nil, fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}

	snap := s.Catalog.Load(b)
	took = time.Since(start)

	s.state.Lock()
	s.loaded = true
	s.state.Unlock()

	s.Metrics.ObserveReload(b.Source, took, nil)
	s.Metrics.ObserveSnapshot(snap.Len(), len(snap.DuplicateIDs), snap.Version)
	span.SetAttributes(
		attribute.String("catalog.batch_source", b.Source),
		attribute.Int("catalog.entries", snap.Len()),
		attribute.Int64("catalog.version", int64(snap.Version)),
	)

	ev := log.Info()
	if len(snap.DuplicateIDs) > 0 {
		ev = log.Warn().Strs("duplicate_ids", snap.DuplicateIDs)
	}
	ev.Str("source", b.Source).
		Int("entries", snap.Len()).
		Uint64("version", snap.Version).
		Dur("took", took).
		Msg("catalog reloaded")
	return snap, nil
}

// Snapshot returns the current snapshot, or ErrCatalogNotLoaded before the
// first successful reload.
func (s *CatalogService) Snapshot() (*catalog.Snapshot, error) {
	s.state.RLock()
	loaded := s.loaded
	s.state.RUnlock()
	if !loaded {
		return nil, ErrCatalogNotLoaded
	}
	return s.Catalog.Snapshot(), nil
}

// Query evaluates st against the current snapshot.
func (s *CatalogService) Query(ctx context.Context, st catalog.FilterState) (catalog.View, error) {
	tr := otel.Tracer(tracerName)
	_, span := tr.Start(ctx, "Query",
		trace.WithAttributes(
			attribute.Int("query.runes", len([]rune(st.Query))),
			attribute.Bool("query.facets", st.HasFacets()),
		),
	)
	defer span.End()

	snap, err := s.Snapshot()
	if err != nil {
		return catalog.View{}, err
	}
	start := time.Now()
	v := snap.Query(st)
	s.Metrics.ObserveQuery(snap.QueryActive(st.Query), time.Since(start), v.Count)
	span.SetAttributes(attribute.Int("query.results", v.Count))
	return v, nil
}

// Get returns the enriched entry with the given id.
func (s *CatalogService) Get(ctx context.Context, id string) (catalog.Entry, error) {
	tr := otel.Tracer(tracerName)
	_, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("entry.id", id)))
	defer span.End()

	snap, err := s.Snapshot()
	if err != nil {
		return catalog.Entry{}, err
	}
	e, ok := snap.Lookup(id)
	if !ok {
		return catalog.Entry{}, ErrEntryNotFound
	}
	return e, nil
}

// Facets returns the facet index with st's surviving selections marked and
// the pruned state.
func (s *CatalogService) Facets(ctx context.Context, st catalog.FilterState) (catalog.FacetIndex, catalog.FilterState, error) {
	tr := otel.Tracer(tracerName)
	_, span := tr.Start(ctx, "Facets")
	defer span.End()

	snap, err := s.Snapshot()
	if err != nil {
		return catalog.FacetIndex{}, catalog.FilterState{}, err
	}
	fi, pruned := snap.Facets(st)
	return fi, pruned, nil
}

// Status describes the current snapshot and the last reload attempt.
type Status struct {
	Loaded          bool       `json:"loaded"`
	Version         uint64     `json:"version"`
	Source          string     `json:"source,omitempty"`
	LoadedAt        *time.Time `json:"loaded_at,omitempty"`
	Entries         int        `json:"entries"`
	DuplicateIDs    []string   `json:"duplicate_ids,omitempty"`
	LastAttempt     *time.Time `json:"last_attempt,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	StoredEntries   *int64     `json:"stored_entries,omitempty"`
	StoredUpdatedAt *time.Time `json:"stored_updated_at,omitempty"`
}

// Status reports provenance and health. Stored row statistics are included
// when a database is configured and reachable.
func (s *CatalogService) Status(ctx context.Context) Status {
	tr := otel.Tracer(tracerName)
	ctx, span := tr.Start(ctx, "Status")
	defer span.End()

	s.state.RLock()
	st := Status{Loaded: s.loaded}
	if !s.lastAttempt.IsZero() {
		at := s.lastAttempt
		st.LastAttempt = &at
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.state.RUnlock()

	if st.Loaded {
		snap := s.Catalog.Snapshot()
		at := snap.LoadedAt
		st.Version = snap.Version
		st.Source = snap.Source
		st.LoadedAt = &at
		st.Entries = snap.Len()
		st.DuplicateIDs = snap.DuplicateIDs
	}

	if s.DB != nil {
		n, maxAt, err := repo.CatalogStats(ctx, s.DB)
		if err != nil {
			log.Debug().Err(err).Msg("catalog stats unavailable")
		} else {
			st.StoredEntries = &n
			st.StoredUpdatedAt = maxAt
		}
	}
	return st
}

// Import replaces the stored batch with entries. Blank ids are generated
// first. It does not reload; callers decide when the new batch goes live.
func (s *CatalogService) Import(ctx context.Context, entries []catalog.Entry) (int, error) {
	tr := otel.Tracer(tracerName)
	ctx, span := tr.Start(ctx, "Import", trace.WithAttributes(attribute.Int("import.entries", len(entries))))
	defer span.End()

	if s.DB == nil {
		return 0, ErrNoDatabase
	}
	catalog.AssignIDs(entries)
	n, err := repo.ReplaceCatalog(ctx, s.DB, entries)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	log.Info().Int("entries", n).Msg("catalog imported")
	return n, nil
}
