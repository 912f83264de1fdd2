package batch

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

// FIFOBatchStrategy implements First In First Out batch selection.
// Batches are consumed in order of first ledger appearance, ignoring expiry.
type FIFOBatchStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOBatchStrategy creates a new FIFO batch strategy
func NewFIFOBatchStrategy() *FIFOBatchStrategy {
	return &FIFOBatchStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			strategy.StrategyTypeBatch,
			"First In First Out - consumes batches by first ledger entry (oldest first)",
		),
	}
}

// SelectBatches selects batches in FIFO order by first ledger entry
func (s *FIFOBatchStrategy) SelectBatches(
	ctx context.Context,
	selCtx strategy.BatchSelectionContext,
	batches []strategy.Batch,
) (strategy.BatchSelectionResult, error) {
	candidates := filterAvailable(batches)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FirstEntryAt.Before(candidates[j].FirstEntryAt)
	})

	return selectFromBatches(candidates, selCtx.Quantity), nil
}

// ConsidersExpiry returns false as FIFO doesn't consider expiry dates
func (s *FIFOBatchStrategy) ConsidersExpiry() bool {
	return false
}

// filterAvailable keeps only batches with positive on-hand quantity
func filterAvailable(batches []strategy.Batch) []strategy.Batch {
	filtered := make([]strategy.Batch, 0, len(batches))
	for _, b := range batches {
		if b.OnHand.IsPositive() {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// selectFromBatches greedily takes quantity from already-sorted batches
func selectFromBatches(batches []strategy.Batch, quantity decimal.Decimal) strategy.BatchSelectionResult {
	remainingQty := quantity
	selections := make([]strategy.BatchSelection, 0)
	totalQty := decimal.Zero

	for _, b := range batches {
		if !remainingQty.IsPositive() {
			break
		}

		selectedQty := decimal.Min(remainingQty, b.OnHand)
		selections = append(selections, strategy.BatchSelection{
			BatchNumber: b.BatchNumber,
			ExpiryDate:  b.ExpiryDate,
			Quantity:    selectedQty,
			UnitCost:    b.UnitCost,
		})

		remainingQty = remainingQty.Sub(selectedQty)
		totalQty = totalQty.Add(selectedQty)
	}

	return strategy.BatchSelectionResult{
		Selections:   selections,
		TotalQty:     totalQty,
		ShortfallQty: remainingQty,
	}
}
