// Catalog HTTP handlers.
//
// This file exposes the read-side REST endpoints of the waiter catalog:
//   - GET  /catalog/entries        (query + facets, paginated, ETag support)
//   - GET  /catalog/entries/{id}   (single enriched entry)
//   - GET  /catalog/facets         (facet index with selection state)
//   - GET  /catalog/status         (provenance and reload health)
//   - POST /catalog/reload         (re-run the data source hand-off)
//
// Handlers are transport-thin: they parse the filter state from the query
// string, call the catalog service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/services"
	"github.com/tbourn/go-waiter-catalog/internal/sysutil"
	"github.com/tbourn/go-waiter-catalog/internal/utils"
)

//
// Service contract (context-aware)
//

// CatalogService defines the catalog operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	// Query evaluates a filter state against the current snapshot.
	Query(ctx context.Context, st catalog.FilterState) (catalog.View, error)
	// Get returns one enriched entry by id.
	Get(ctx context.Context, id string) (catalog.Entry, error)
	// Facets returns the facet index and the pruned selection.
	Facets(ctx context.Context, st catalog.FilterState) (catalog.FacetIndex, catalog.FilterState, error)
	// Status reports provenance and reload health.
	Status(ctx context.Context) services.Status
	// Reload re-reads the data source and swaps the snapshot.
	Reload(ctx context.Context) (*catalog.Snapshot, error)
}

//
// Handler wiring
//

// Handlers groups the catalog HTTP endpoints.
type Handlers struct {
	svc CatalogService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(svc CatalogService) *Handlers {
	return &Handlers{svc: svc}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListEntriesResponse wraps a page of visible entries.
type ListEntriesResponse struct {
	Items      []catalog.Entry     `json:"items"`
	Count      int                 `json:"count" example:"42"`
	Pagination Pagination          `json:"pagination"`
	Facets     *catalog.FacetIndex `json:"facets,omitempty"`
	Selection  catalog.FilterState `json:"selection"`
	Version    uint64              `json:"version" example:"3"`
}

// FacetsResponse is the facet index with the pruned selection.
type FacetsResponse struct {
	Facets    catalog.FacetIndex  `json:"facets"`
	Selection catalog.FilterState `json:"selection"`
}

// ReloadResponse describes the snapshot installed by a reload.
type ReloadResponse struct {
	Version      uint64    `json:"version" example:"4"`
	Source       string    `json:"source" example:"api"`
	Entries      int       `json:"entries" example:"312"`
	LoadedAt     time.Time `json:"loaded_at"`
	DuplicateIDs []string  `json:"duplicate_ids,omitempty"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// filterState reads q, category (alias menu), allergen and tag. Facet params
// may repeat and may hold comma-separated values.
func filterState(c *gin.Context) catalog.FilterState {
	multi := func(keys ...string) []string {
		var vals []string
		for _, k := range keys {
			vals = append(vals, c.QueryArray(k)...)
		}
		return utils.SplitMulti(vals...)
	}
	return catalog.FilterState{
		Query:      c.Query("q"),
		Categories: catalog.NewSelection(multi("category", "menu")...),
		Allergens:  catalog.NewSelection(multi("allergen", "allergens")...),
		Tags:       catalog.NewSelection(multi("tag", "tags")...),
	}
}

// etagNamespace scopes name-based ETag UUIDs.
var etagNamespace = uuid.MustParse("5b0e3f0c-8f7a-4c57-9f39-7d1b8f0c2a11")

// listETag derives a weak ETag from the snapshot version and the normalized
// request. Equal selections in any parameter order share a tag.
func listETag(version uint64, st catalog.FilterState, page, pageSize int, facets bool) string {
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%d|%d|%t",
		version,
		strings.Join(strings.Fields(strings.ToLower(st.Query)), " "),
		strings.Join(st.Categories.Values(), ","),
		strings.Join(st.Allergens.Values(), ","),
		strings.Join(st.Tags.Values(), ","),
		page, pageSize, facets)
	return fmt.Sprintf(`W/"catalog:%d:%s"`, version, uuid.NewSHA1(etagNamespace, []byte(key)))
}

// failService maps service errors to HTTP responses.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogNotLoaded):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "catalog is not loaded yet")
	case errors.Is(err, services.ErrEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "entry not found")
	case errors.Is(err, services.ErrReloadFailed):
		fail(c, http.StatusBadGateway, ErrCodeReloadFailed, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeTimeout, "request cancelled")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// ListEntries godoc
// @ID          listEntries
// @Summary     Query the catalog
// @Description Returns the visible entries for a free-text query combined with facet selections.
// @Description With a query the order is relevance order; without one it is collection order.
// @Description Categories combine with OR; allergens and tags require every selected value.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Catalog
// @Produce     json
//
// @Param       q              query   string  false "Free-text query (at least 2 characters)"  example(salm)
// @Param       category       query   []string false "Category selection (repeatable or CSV)"  collectionFormat(multi)
// @Param       allergen       query   []string false "Allergen selection (repeatable or CSV)"  collectionFormat(multi)
// @Param       tag            query   []string false "Tag selection (repeatable or CSV)"       collectionFormat(multi)
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
// @Param       facets         query   bool    false "Include the facet index"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"catalog:3:abc\")
//
// @Success     200  {object} handlers.ListEntriesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     503  {object} handlers.ErrorResponse "Catalog not loaded"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /catalog/entries [get]
func (h *Handlers) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	withFacets := sysutil.IsTruthy(c.Query("facets"))

	v, err := h.svc.Query(ctx, filterState(c))
	if err != nil {
		failService(c, err)
		return
	}

	if notModified(c, listETag(v.Version, v.State, page, pageSize, withFacets)) {
		return
	}

	start, end, totalPages := utils.PageBounds(v.Count, page, pageSize)
	resp := ListEntriesResponse{
		Items: v.Entries[start:end],
		Count: v.Count,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int64(v.Count),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
		Selection: v.State,
		Version:   v.Version,
	}
	if withFacets {
		fi := v.Facets
		resp.Facets = &fi
	}
	ok(c, http.StatusOK, resp)
}

// GetEntry godoc
// @ID          getEntry
// @Summary     Get one entry
// @Description Returns the enriched entry with the given id.
// @Description With lang=en the English card is returned instead; it carries no pairings or ingredients.
// @Tags        Catalog
// @Produce     json
// @Param       id   path     string  true  "Entry id"  example(bar-negroni)
// @Param       lang query    string  false "Card language"  Enums(ru, en)
// @Success     200  {object} catalog.Entry
// @Failure     400  {object} handlers.ErrorResponse "Unknown language"
// @Failure     404  {object} handlers.ErrorResponse "Entry or translation not found"
// @Failure     503  {object} handlers.ErrorResponse "Catalog not loaded"
// @Router      /catalog/entries/{id} [get]
func (h *Handlers) GetEntry(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "entry id required")
		return
	}
	lang := strings.ToLower(strings.TrimSpace(c.Query("lang")))
	if lang != "" && lang != "ru" && lang != "en" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lang must be ru or en")
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	if lang == "en" {
		en, found := e.English()
		if !found {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "entry has no English translation")
			return
		}
		e = en
	}
	ok(c, http.StatusOK, e)
}

// ListFacets godoc
// @ID          listFacets
// @Summary     Facet index
// @Description Returns categories (collated), allergens (priority first) and tags (flat and grouped),
// @Description with the selection from the query string pruned to values that still exist.
// @Tags        Catalog
// @Produce     json
// @Param       category  query  []string false "Category selection"  collectionFormat(multi)
// @Param       allergen  query  []string false "Allergen selection"  collectionFormat(multi)
// @Param       tag       query  []string false "Tag selection"       collectionFormat(multi)
// @Success     200  {object} handlers.FacetsResponse
// @Failure     503  {object} handlers.ErrorResponse "Catalog not loaded"
// @Router      /catalog/facets [get]
func (h *Handlers) ListFacets(c *gin.Context) {
	fi, st, err := h.svc.Facets(c.Request.Context(), filterState(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, FacetsResponse{Facets: fi, Selection: st})
}

// Status godoc
// @ID          catalogStatus
// @Summary     Catalog status
// @Description Reports the data source, load time, entry count and the last reload outcome.
// @Tags        Catalog
// @Produce     json
// @Success     200  {object} services.Status
// @Router      /catalog/status [get]
func (h *Handlers) Status(c *gin.Context) {
	ok(c, http.StatusOK, h.svc.Status(c.Request.Context()))
}

// Reload godoc
// @ID          reloadCatalog
// @Summary     Reload the catalog
// @Description Re-reads the data source and swaps in a freshly enriched snapshot.
// @Description On failure the previous snapshot stays current.
// @Tags        Catalog
// @Produce     json
// @Success     200  {object} handlers.ReloadResponse
// @Failure     502  {object} handlers.ErrorResponse "Data source failed"
// @Router      /catalog/reload [post]
func (h *Handlers) Reload(c *gin.Context) {
	snap, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ReloadResponse{
		Version:      snap.Version,
		Source:       snap.Source,
		Entries:      snap.Len(),
		LoadedAt:     snap.LoadedAt,
		DuplicateIDs: snap.DuplicateIDs,
	})
}
