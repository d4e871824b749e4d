package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-waiter-catalog/internal/domain"
)

// CatalogStats returns the number of stored catalog rows and the greatest
// UpdatedAt among them. When the table is empty the count is 0 and
// maxUpdatedAt is nil.
func CatalogStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.CatalogItem{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.CatalogItem{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
