package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared"
	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

// InsufficientStockError is returned when an allocation cannot cover the
// requested quantity. It carries the available total so the caller can offer
// partial fulfillment. The failed allocation performs zero ledger writes.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	BranchID  uuid.UUID
	Available decimal.Decimal
	Requested decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: available %s, requested %s",
		e.ItemID, e.Available, e.Requested)
}

// BatchAllocation is one slice of an allocation plan, consuming from a batch
type BatchAllocation struct {
	BatchNumber string
	ExpiryDate  *time.Time
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// AllocationPlan is the ordered list of batch consumptions covering a request.
// The plan either fully covers the requested quantity or does not exist.
type AllocationPlan []BatchAllocation

// TotalQuantity returns the summed quantity across all allocations
func (p AllocationPlan) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p {
		total = total.Add(a.Quantity)
	}
	return total
}

// FefoAllocator selects batches to fulfill a requested quantity. Ordering and
// greedy selection are delegated to a batch strategy; the default strategy is
// first-expired-first-out.
type FefoAllocator struct {
	projector *StockProjector
	strategy  strategy.BatchSelectionStrategy
}

// NewFefoAllocator creates an allocator using the given batch strategy
func NewFefoAllocator(projector *StockProjector, batchStrategy strategy.BatchSelectionStrategy) *FefoAllocator {
	return &FefoAllocator{
		projector: projector,
		strategy:  batchStrategy,
	}
}

// Allocate builds an allocation plan covering the needed base-unit quantity,
// or returns InsufficientStockError reporting what was available. Allocate is
// a pure read; composing it with the subsequent ledger append inside a
// StockTxManager transaction is the caller's responsibility.
func (a *FefoAllocator) Allocate(ctx context.Context, itemID, branchID uuid.UUID, needed decimal.Decimal) (AllocationPlan, error) {
	if needed.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	batches, err := a.projector.StockByBatch(ctx, itemID, branchID)
	if err != nil {
		return nil, err
	}

	candidates := make([]strategy.Batch, len(batches))
	for i, b := range batches {
		candidates[i] = strategy.Batch{
			BatchNumber:  b.BatchNumber,
			ExpiryDate:   b.ExpiryDate,
			OnHand:       b.OnHand,
			UnitCost:     b.UnitCost,
			FirstEntryAt: b.FirstEntryAt,
		}
	}

	result, err := a.strategy.SelectBatches(ctx, strategy.BatchSelectionContext{
		ItemID:   itemID,
		BranchID: branchID,
		Quantity: needed,
	}, candidates)
	if err != nil {
		return nil, err
	}

	if result.ShortfallQty.IsPositive() {
		return nil, &InsufficientStockError{
			ItemID:    itemID,
			BranchID:  branchID,
			Available: result.TotalQty,
			Requested: needed,
		}
	}

	plan := make(AllocationPlan, len(result.Selections))
	for i, sel := range result.Selections {
		plan[i] = BatchAllocation{
			BatchNumber: sel.BatchNumber,
			ExpiryDate:  sel.ExpiryDate,
			Quantity:    sel.Quantity,
			UnitCost:    sel.UnitCost,
		}
	}
	return plan, nil
}
