package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/metrics"
	"github.com/tbourn/go-waiter-catalog/internal/repo"
	"github.com/tbourn/go-waiter-catalog/internal/source"
)

// ----- Fake source -----

type fakeSource struct {
	mu    sync.Mutex
	batch catalog.Batch
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) (catalog.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.batch, f.err
}

func (f *fakeSource) set(b catalog.Batch, err error) {
	f.mu.Lock()
	f.batch, f.err = b, err
	f.mu.Unlock()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func menuBatch() catalog.Batch {
	return catalog.Batch{
		Source: "api",
		Entries: []catalog.Entry{
			{ID: "D1", Title: "Steak", Category: "Кухня", Allergens: catalog.StringList{"nuts", "gluten"},
				Pairings: catalog.Pairings{Wines: catalog.StringList{"Malbec 2019"}}},
			{ID: "D2", Title: "Grilled Salmon", Category: "Кухня", Allergens: catalog.StringList{"nuts"}},
			{ID: "W1", Title: "Malbec 2019", Category: "Wines"},
		},
	}
}

func newService(t *testing.T, src source.Source, db *gorm.DB) (*CatalogService, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewCatalogService(db, src, catalog.DefaultOptions(), m), m
}

func TestCatalogService_NotLoaded(t *testing.T) {
	svc, _ := newService(t, &fakeSource{}, nil)
	ctx := context.Background()

	if _, err := svc.Query(ctx, catalog.FilterState{}); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("Query err = %v; want ErrCatalogNotLoaded", err)
	}
	if _, err := svc.Get(ctx, "D1"); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("Get err = %v; want ErrCatalogNotLoaded", err)
	}
	if _, _, err := svc.Facets(ctx, catalog.FilterState{}); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("Facets err = %v; want ErrCatalogNotLoaded", err)
	}
	if st := svc.Status(ctx); st.Loaded || st.LastAttempt != nil {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestCatalogService_ReloadQueryGet(t *testing.T) {
	src := &fakeSource{batch: menuBatch()}
	svc, m := newService(t, src, nil)
	ctx := context.Background()

	snap, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap.Version != 1 || snap.Len() != 3 {
		t.Fatalf("snapshot version=%d len=%d", snap.Version, snap.Len())
	}

	w1, err := svc.Get(ctx, "W1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(w1.Pairings.Dishes) != 1 || w1.Pairings.Dishes[0] != "Steak" {
		t.Fatalf("expected back-reference Steak on W1, got %+v", w1.Pairings)
	}
	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Get missing err = %v; want ErrEntryNotFound", err)
	}

	v, err := svc.Query(ctx, catalog.FilterState{Allergens: catalog.NewSelection("nuts", "gluten")})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if v.Count != 1 || v.Entries[0].ID != "D1" {
		t.Fatalf("allergen AND filter = %+v; want [D1]", v.Entries)
	}

	v, err = svc.Query(ctx, catalog.FilterState{Query: "salm"})
	if err != nil || v.Count != 1 || v.Entries[0].ID != "D2" {
		t.Fatalf("search salm = %+v err=%v", v.Entries, err)
	}

	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("search")); got != 1 {
		t.Fatalf("search queries = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.Entries); got != 3 {
		t.Fatalf("entries gauge = %v; want 3", got)
	}

	st := svc.Status(ctx)
	if !st.Loaded || st.Version != 1 || st.Source != "api" || st.Entries != 3 || st.LoadedAt == nil {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.StoredEntries != nil {
		t.Fatalf("no DB configured; stored stats should be absent")
	}
}

func TestCatalogService_FailedReloadKeepsSnapshot(t *testing.T) {
	src := &fakeSource{batch: menuBatch()}
	svc, m := newService(t, src, nil)
	ctx := context.Background()

	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	boom := errors.New("source down")
	src.set(catalog.Batch{}, boom)
	_, err := svc.Reload(ctx)
	if !errors.Is(err, ErrReloadFailed) || !errors.Is(err, boom) {
		t.Fatalf("Reload err = %v; want ErrReloadFailed wrapping source error", err)
	}

	v, err := svc.Query(ctx, catalog.FilterState{})
	if err != nil || v.Count != 3 || v.Version != 1 {
		t.Fatalf("previous snapshot not kept: count=%d version=%d err=%v", v.Count, v.Version, err)
	}

	st := svc.Status(ctx)
	if st.LastError != boom.Error() || !st.Loaded {
		t.Fatalf("status after failure = %+v", st)
	}
	if got := testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("fake", metrics.OutcomeFailed)); got != 1 {
		t.Fatalf("failed reloads = %v; want 1", got)
	}
}

func TestCatalogService_FacetsPrune(t *testing.T) {
	svc, _ := newService(t, &fakeSource{batch: menuBatch()}, nil)
	ctx := context.Background()
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	fi, pruned, err := svc.Facets(ctx, catalog.FilterState{Allergens: catalog.NewSelection("nuts", "shellfish")})
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}
	if got := pruned.Allergens.Values(); len(got) != 1 || got[0] != "nuts" {
		t.Fatalf("pruned allergens = %v; want [nuts]", got)
	}
	if len(fi.Allergens) != 2 || fi.Allergens[0].Key != "nuts" || !fi.Allergens[0].Selected {
		t.Fatalf("allergen facet = %+v", fi.Allergens)
	}
}

func TestCatalogService_ConcurrentReloadsAreSerialized(t *testing.T) {
	svc, _ := newService(t, &fakeSource{batch: menuBatch()}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Reload(ctx); err != nil {
				t.Errorf("Reload: %v", err)
			}
			if _, err := svc.Query(ctx, catalog.FilterState{Query: "steak"}); err != nil {
				t.Errorf("Query: %v", err)
			}
		}()
	}
	wg.Wait()

	if v := svc.Catalog.Snapshot().Version; v != 8 {
		t.Fatalf("version = %d; want 8", v)
	}
}

func TestCatalogService_ImportThenReloadFromDB(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newService(t, &source.DBSource{DB: db}, db)
	ctx := context.Background()

	entries := []catalog.Entry{
		{Title: "Negroni", Category: "Bar", Pairings: catalog.Pairings{Dishes: catalog.StringList{"Olives"}}},
		{Title: "Olives", Category: "Закуски"},
	}
	n, err := svc.Import(ctx, entries)
	if err != nil || n != 2 {
		t.Fatalf("Import: n=%d err=%v", n, err)
	}

	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	olives, err := svc.Get(ctx, "закуски-olives")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(olives.Pairings.Drinks) != 1 || olives.Pairings.Drinks[0] != "Negroni" {
		t.Fatalf("expected Negroni back-reference, got %+v", olives.Pairings)
	}
	if olives.Provenance.Source != source.NameAPI {
		t.Fatalf("provenance = %q; want %q", olives.Provenance.Source, source.NameAPI)
	}

	st := svc.Status(ctx)
	if st.StoredEntries == nil || *st.StoredEntries != 2 || st.StoredUpdatedAt == nil {
		t.Fatalf("stored stats missing: %+v", st)
	}
	if time.Since(*st.StoredUpdatedAt) > time.Hour {
		t.Fatalf("stored_updated_at looks stale: %v", st.StoredUpdatedAt)
	}
}

func TestCatalogService_ImportWithoutDB(t *testing.T) {
	svc, _ := newService(t, &fakeSource{}, nil)
	if _, err := svc.Import(context.Background(), []catalog.Entry{{ID: "x"}}); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("Import err = %v; want ErrNoDatabase", err)
	}
}
