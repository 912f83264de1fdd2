package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// ReorderReason tags how a reorder suggestion came to exist
type ReorderReason string

const (
	// ReorderReasonAutoSale marks a suggestion generated after a committed sale
	ReorderReasonAutoSale ReorderReason = "AUTO_SALE"
	// ReorderReasonManualAdd marks a suggestion entered explicitly by a user
	ReorderReasonManualAdd ReorderReason = "MANUAL_ADD"
)

// ReorderSuggestion is a system-proposed purchase quantity, expressed in the
// item's supplier unit (whole purchasable packs).
type ReorderSuggestion struct {
	shared.BaseEntity
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_reorder_item_branch,priority:1"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_reorder_item_branch,priority:2"`
	UnitName      string          `gorm:"type:varchar(50);not null"` // supplier unit
	QuantityPacks decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason        ReorderReason   `gorm:"type:varchar(20);not null"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid"`
	Fulfilled     bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReorderSuggestion) TableName() string {
	return "reorder_suggestions"
}

var (
	// negligiblePacksCutoff is the shortfall (in packs) below which no
	// suggestion is made at all.
	negligiblePacksCutoff = decimal.NewFromFloat(0.5)
	// onePackCutoff is the shortfall (in packs) up to which exactly one pack
	// is suggested instead of rounding up.
	onePackCutoff = decimal.NewFromFloat(1.5)
)

// ReplenishmentSizer computes reorder suggestions from a stock threshold.
// It is invoked only after a stock-decreasing event has been durably
// committed, never for draft documents or quotations.
type ReplenishmentSizer struct{}

// NewReplenishmentSizer creates a new ReplenishmentSizer
func NewReplenishmentSizer() *ReplenishmentSizer {
	return &ReplenishmentSizer{}
}

// Evaluate compares current stock against the reorder threshold (both in base
// units) and sizes the shortfall in whole supplier packs. Returns nil when no
// reorder is needed.
//
// Rounding is biased toward avoiding under-ordering without over-ordering for
// negligible shortfalls. A shortfall below half a pack produces no suggestion;
// up to one and a half packs exactly one pack is suggested; anything larger
// rounds up to whole packs.
func (s *ReplenishmentSizer) Evaluate(
	item *catalog.Item,
	branchID uuid.UUID,
	currentBaseStock decimal.Decimal,
	reorderThresholdBase decimal.Decimal,
	createdBy uuid.UUID,
) *ReorderSuggestion {
	shortfall := reorderThresholdBase.Sub(currentBaseStock)
	if !shortfall.IsPositive() {
		return nil
	}

	packs := shortfall.Div(decimal.NewFromInt(item.PackSize))
	if packs.LessThan(negligiblePacksCutoff) {
		return nil
	}

	var quantityPacks decimal.Decimal
	if packs.LessThanOrEqual(onePackCutoff) {
		quantityPacks = decimal.NewFromInt(1)
	} else {
		quantityPacks = packs.Ceil()
	}

	return &ReorderSuggestion{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     item.CompanyID,
		ItemID:        item.ID,
		BranchID:      branchID,
		UnitName:      item.SupplierUnit,
		QuantityPacks: quantityPacks,
		Reason:        ReorderReasonAutoSale,
		CreatedBy:     createdBy,
	}
}

// ManualSuggestion builds a user-entered suggestion with the supplied
// quantity taken verbatim, bypassing the sizing rules.
func (s *ReplenishmentSizer) ManualSuggestion(
	item *catalog.Item,
	branchID uuid.UUID,
	quantityPacks decimal.Decimal,
	createdBy uuid.UUID,
) (*ReorderSuggestion, error) {
	if !quantityPacks.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Suggested quantity must be positive")
	}

	return &ReorderSuggestion{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     item.CompanyID,
		ItemID:        item.ID,
		BranchID:      branchID,
		UnitName:      item.SupplierUnit,
		QuantityPacks: quantityPacks,
		Reason:        ReorderReasonManualAdd,
		CreatedBy:     createdBy,
	}, nil
}
