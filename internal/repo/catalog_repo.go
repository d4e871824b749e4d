package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
	"github.com/tbourn/go-waiter-catalog/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateID is returned by ReplaceCatalog when two entries share an id.
var ErrDuplicateID = errors.New("duplicate catalog id")

// ErrMissingID is returned by ReplaceCatalog for entries without an id.
var ErrMissingID = errors.New("catalog entry without id")

const insertBatchSize = 200

// ListCatalogItems returns every stored row in batch order.
func ListCatalogItems(ctx context.Context, db *gorm.DB) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	err := db.WithContext(ctx).
		Order("position ASC").
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// GetCatalogItem fetches a single stored row by id, or ErrNotFound.
func GetCatalogItem(ctx context.Context, db *gorm.DB, id string) (*domain.CatalogItem, error) {
	var it domain.CatalogItem
	if err := db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ReplaceCatalog swaps the stored batch for entries in one transaction. Row
// positions follow the slice order. Every entry must carry a unique id.
func ReplaceCatalog(ctx context.Context, db *gorm.DB, entries []catalog.Entry) (int, error) {
	items := make([]domain.CatalogItem, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return 0, fmt.Errorf("entry %d (%q): %w", i, e.Title, ErrMissingID)
		}
		if _, dup := seen[e.ID]; dup {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
		it, err := domain.NewCatalogItem(i, e)
		if err != nil {
			return 0, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		items = append(items, it)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.CatalogItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(&items, insertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
