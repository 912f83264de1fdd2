package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared"
)

// Event types
const (
	EventTypeStockMovementRecorded = "inventory.stock_movement_recorded"
	EventTypeReorderSuggested      = "inventory.reorder_suggested"
)

// StockMovementRecordedEvent is emitted after a ledger append commits
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	BranchID        uuid.UUID       `json:"branch_id"`
	TransactionType TransactionType `json:"transaction_type"`
	QuantityDelta   decimal.Decimal `json:"quantity_delta"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	EntryCount      int             `json:"entry_count"`
}

// NewStockMovementRecordedEvent creates an event for a committed movement.
// EntryCount is the number of ledger entries the movement fanned out into
// (one per allocated batch for sales).
func NewStockMovementRecordedEvent(companyID, itemID, branchID uuid.UUID, txType TransactionType, delta decimal.Decimal, refType, refID string, entryCount int) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, "LedgerEntry", itemID, companyID),
		BranchID:        branchID,
		TransactionType: txType,
		QuantityDelta:   delta,
		ReferenceType:   refType,
		ReferenceID:     refID,
		EntryCount:      entryCount,
	}
}

// ReorderSuggestedEvent is emitted when the replenishment sizer produces a
// suggestion after a committed stock-decreasing event
type ReorderSuggestedEvent struct {
	shared.BaseDomainEvent
	BranchID      uuid.UUID       `json:"branch_id"`
	UnitName      string          `json:"unit_name"`
	QuantityPacks decimal.Decimal `json:"quantity_packs"`
	Reason        ReorderReason   `json:"reason"`
}

// NewReorderSuggestedEvent creates an event for a new reorder suggestion
func NewReorderSuggestedEvent(suggestion *ReorderSuggestion) *ReorderSuggestedEvent {
	return &ReorderSuggestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReorderSuggested, "ReorderSuggestion", suggestion.ItemID, suggestion.CompanyID),
		BranchID:        suggestion.BranchID,
		UnitName:        suggestion.UnitName,
		QuantityPacks:   suggestion.QuantityPacks,
		Reason:          suggestion.Reason,
	}
}
