// Package domain defines the persistence model for the raw catalog batch.
// The stored rows are the unenriched input of the catalog engine: pairings
// are kept exactly as the editing surface wrote them and are enriched on
// every load.
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
)

// CatalogItem is one stored dish, wine or bar item.
//
// Fields:
//   - ID: stable slug id (e.g. "bar-negroni"); primary key.
//   - Position: load order of the batch; the catalog preserves it.
//   - Menu / Section: display category and sub-section.
//   - Features, Ingredients, Allergens, Tags: JSON string lists.
//   - Pairings, I18n: JSON objects stored as written.
//   - EditedAt: the editor's own updated_at string, kept verbatim.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type CatalogItem struct {
	ID          string         `json:"id"          gorm:"type:varchar(191);primaryKey"`
	Position    int            `json:"position"    gorm:"not null;index:idx_catalog_position"`
	Title       string         `json:"title"       gorm:"type:varchar(255);not null;default:''"`
	Menu        string         `json:"menu"        gorm:"type:varchar(255);not null;default:'';index:idx_catalog_menu"`
	Section     string         `json:"section"     gorm:"type:varchar(255);not null;default:''"`
	Description string         `json:"description" gorm:"type:text"`
	Contains    string         `json:"contains"    gorm:"type:text"`
	Status      string         `json:"status"      gorm:"type:varchar(64)"`
	SourceFile  string         `json:"source_file" gorm:"type:varchar(255)"`
	Features    datatypes.JSON `json:"features"`
	Ingredients datatypes.JSON `json:"ingredients"`
	Allergens   datatypes.JSON `json:"allergens"`
	Tags        datatypes.JSON `json:"tags"`
	Pairings    datatypes.JSON `json:"pairings"`
	I18n        datatypes.JSON `json:"i18n"`

	UpdateSource string    `json:"update_source" gorm:"type:varchar(64)"`
	EditedAt     string    `json:"edited_at"     gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    gorm:"index:idx_catalog_updated"`
}

// TableName returns the database table name for CatalogItem.
func (CatalogItem) TableName() string { return "catalog_items" }

// NewCatalogItem maps an entry at the given batch position to its row.
// Provenance is not stored; it is attached again on load.
func NewCatalogItem(pos int, e catalog.Entry) (CatalogItem, error) {
	it := CatalogItem{
		ID:           e.ID,
		Position:     pos,
		Title:        e.Title,
		Menu:         e.Category,
		Section:      e.Section,
		Description:  e.Description,
		Contains:     e.Contains,
		Status:       e.Status,
		SourceFile:   e.SourceFile,
		UpdateSource: e.UpdateSource,
		EditedAt:     e.UpdatedAt,
	}
	var err error
	if it.Features, err = jsonColumn(e.Features); err != nil {
		return CatalogItem{}, err
	}
	if it.Ingredients, err = jsonColumn(e.Ingredients); err != nil {
		return CatalogItem{}, err
	}
	if it.Allergens, err = jsonColumn(e.Allergens); err != nil {
		return CatalogItem{}, err
	}
	if it.Tags, err = jsonColumn(e.Tags); err != nil {
		return CatalogItem{}, err
	}
	if it.Pairings, err = jsonColumn(e.Pairings); err != nil {
		return CatalogItem{}, err
	}
	if e.I18n != nil {
		if it.I18n, err = jsonColumn(e.I18n); err != nil {
			return CatalogItem{}, err
		}
	}
	return it, nil
}

// Entry maps the row back to a raw catalog entry. A missing editor timestamp
// falls back to the row's UpdatedAt.
func (it CatalogItem) Entry() (catalog.Entry, error) {
	e := catalog.Entry{
		ID:           it.ID,
		Title:        it.Title,
		Category:     it.Menu,
		Section:      it.Section,
		Description:  it.Description,
		Contains:     it.Contains,
		Status:       it.Status,
		SourceFile:   it.SourceFile,
		UpdateSource: it.UpdateSource,
		UpdatedAt:    it.EditedAt,
	}
	if e.UpdatedAt == "" && !it.UpdatedAt.IsZero() {
		e.UpdatedAt = it.UpdatedAt.UTC().Format(time.RFC3339)
	}
	for _, c := range []struct {
		raw datatypes.JSON
		dst any
	}{
		{it.Features, &e.Features},
		{it.Ingredients, &e.Ingredients},
		{it.Allergens, &e.Allergens},
		{it.Tags, &e.Tags},
		{it.Pairings, &e.Pairings},
		{it.I18n, &e.I18n},
	} {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return catalog.Entry{}, err
		}
	}
	return e, nil
}

func jsonColumn(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
