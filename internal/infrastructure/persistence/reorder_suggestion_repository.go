package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// GormReorderSuggestionRepository implements ReorderSuggestionRepository using GORM
type GormReorderSuggestionRepository struct {
	db *gorm.DB
}

// NewGormReorderSuggestionRepository creates a new GormReorderSuggestionRepository
func NewGormReorderSuggestionRepository(db *gorm.DB) *GormReorderSuggestionRepository {
	return &GormReorderSuggestionRepository{db: db}
}

// Save creates or updates a reorder suggestion
func (r *GormReorderSuggestionRepository) Save(ctx context.Context, suggestion *inventory.ReorderSuggestion) error {
	return r.db.WithContext(ctx).Save(suggestion).Error
}

// FindByBranch lists suggestions for a branch
func (r *GormReorderSuggestionRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.ReorderSuggestion, error) {
	var suggestions []inventory.ReorderSuggestion
	query := r.db.WithContext(ctx).Model(&inventory.ReorderSuggestion{}).
		Where("branch_id = ?", branchID)

	for key, value := range filter.Filters {
		switch key {
		case "fulfilled":
			query = query.Where("fulfilled = ?", value)
		case "reason":
			query = query.Where("reason = ?", value)
		case "item_id":
			query = query.Where("item_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

// FindOpenByItemAndBranch returns the unfulfilled suggestion for an item at a
// branch, or ErrNotFound when none is open
func (r *GormReorderSuggestionRepository) FindOpenByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID) (*inventory.ReorderSuggestion, error) {
	var suggestion inventory.ReorderSuggestion
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND branch_id = ? AND fulfilled = ?", itemID, branchID, false).
		Order("created_at DESC").
		First(&suggestion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

// Ensure GormReorderSuggestionRepository implements ReorderSuggestionRepository
var _ inventory.ReorderSuggestionRepository = (*GormReorderSuggestionRepository)(nil)
