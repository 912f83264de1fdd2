package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID with named units preloaded
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Preload("Units").
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCompany lists items for a company
func (r *GormItemRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := r.db.WithContext(ctx).Model(&catalog.Item{}).
		Preload("Units").
		Where("company_id = ?", companyID)

	for key, value := range filter.Filters {
		switch key {
		case "name":
			if s, ok := value.(string); ok {
				query = query.Where("name ILIKE ?", "%"+s+"%")
			}
		case "vat_category":
			query = query.Where("vat_category = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
