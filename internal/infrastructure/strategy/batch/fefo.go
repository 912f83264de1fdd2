package batch

import (
	"context"
	"sort"

	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

// FEFOBatchStrategy implements First Expired First Out batch selection.
// Batches are consumed in ascending expiry order with no-expiry batches last,
// the required ordering for pharmaceuticals.
type FEFOBatchStrategy struct {
	strategy.BaseStrategy
}

// NewFEFOBatchStrategy creates a new FEFO batch strategy
func NewFEFOBatchStrategy() *FEFOBatchStrategy {
	return &FEFOBatchStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fefo",
			strategy.StrategyTypeBatch,
			"First Expired First Out - consumes batches by expiry date (earliest first)",
		),
	}
}

// SelectBatches selects batches in FEFO order by expiry date
func (s *FEFOBatchStrategy) SelectBatches(
	ctx context.Context,
	selCtx strategy.BatchSelectionContext,
	batches []strategy.Batch,
) (strategy.BatchSelectionResult, error) {
	candidates := filterAvailable(batches)

	sort.SliceStable(candidates, func(i, j int) bool {
		iExpiry := candidates[i].ExpiryDate
		jExpiry := candidates[j].ExpiryDate

		// Batches without expiry date go last; ties fall back to the
		// first time the batch appeared in the ledger
		if iExpiry == nil && jExpiry == nil {
			return candidates[i].FirstEntryAt.Before(candidates[j].FirstEntryAt)
		}
		if iExpiry == nil {
			return false
		}
		if jExpiry == nil {
			return true
		}
		if iExpiry.Equal(*jExpiry) {
			return candidates[i].FirstEntryAt.Before(candidates[j].FirstEntryAt)
		}
		return iExpiry.Before(*jExpiry)
	})

	return selectFromBatches(candidates, selCtx.Quantity), nil
}

// ConsidersExpiry returns true as FEFO considers expiry dates
func (s *FEFOBatchStrategy) ConsidersExpiry() bool {
	return true
}
