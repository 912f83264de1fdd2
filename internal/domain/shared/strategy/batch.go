package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch represents an on-hand stock batch offered to a selection strategy.
// OnHand is in base units. ExpiryDate is nil for batches without expiry.
type Batch struct {
	BatchNumber  string
	ExpiryDate   *time.Time
	OnHand       decimal.Decimal
	UnitCost     decimal.Decimal
	FirstEntryAt time.Time
}

// BatchSelection represents a selection of batch for consumption
type BatchSelection struct {
	BatchNumber string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// BatchSelectionContext provides context for batch selection
type BatchSelectionContext struct {
	ItemID   uuid.UUID
	BranchID uuid.UUID
	Quantity decimal.Decimal
}

// BatchSelectionResult contains the result of batch selection.
// ShortfallQty is zero when the full quantity could be covered.
type BatchSelectionResult struct {
	Selections   []BatchSelection
	TotalQty     decimal.Decimal
	ShortfallQty decimal.Decimal
}

// BatchSelectionStrategy defines the interface for batch selection ordering
type BatchSelectionStrategy interface {
	Strategy
	// SelectBatches selects batches for consumption based on strategy rules
	SelectBatches(ctx context.Context, selCtx BatchSelectionContext, batches []Batch) (BatchSelectionResult, error)
	// ConsidersExpiry returns true if the strategy considers expiry dates
	ConsidersExpiry() bool
}
