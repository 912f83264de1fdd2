package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

// fefoTestStrategy sorts by expiry ascending with nil last, matching the
// production FEFO strategy's ordering contract.
type fefoTestStrategy struct {
	strategy.BaseStrategy
}

func newFefoTestStrategy() *fefoTestStrategy {
	return &fefoTestStrategy{
		BaseStrategy: strategy.NewBaseStrategy("fefo", strategy.StrategyTypeBatch, "test fefo"),
	}
}

func (s *fefoTestStrategy) ConsidersExpiry() bool { return true }

func (s *fefoTestStrategy) SelectBatches(
	ctx context.Context,
	selCtx strategy.BatchSelectionContext,
	batches []strategy.Batch,
) (strategy.BatchSelectionResult, error) {
	// Candidates arrive pre-sorted FEFO from the projector
	remaining := selCtx.Quantity
	result := strategy.BatchSelectionResult{}
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, b.OnHand)
		result.Selections = append(result.Selections, strategy.BatchSelection{
			BatchNumber: b.BatchNumber,
			ExpiryDate:  b.ExpiryDate,
			Quantity:    take,
			UnitCost:    b.UnitCost,
		})
		remaining = remaining.Sub(take)
		result.TotalQty = result.TotalQty.Add(take)
	}
	result.ShortfallQty = remaining
	return result, nil
}

func TestFefoAllocator_Allocate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	branchID := uuid.New()
	itemID := uuid.New()
	now := time.Now()

	early := now.AddDate(0, 1, 0)
	late := now.AddDate(0, 6, 0)

	setup := func(t *testing.T) (*FefoAllocator, *memoryLedger) {
		ledger := newMemoryLedger()
		projector := NewStockProjector(ledger, catalog.NewConversionResolver())
		allocator := NewFefoAllocator(projector, newFefoTestStrategy())
		return allocator, ledger
	}

	t.Run("spans batches in expiry order", func(t *testing.T) {
		allocator, ledger := setup(t)
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 10, "A", &early, now.Add(-2*time.Hour))
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 20, "B", &late, now.Add(-time.Hour))

		plan, err := allocator.Allocate(ctx, itemID, branchID, decimal.NewFromInt(15))
		require.NoError(t, err)

		require.Len(t, plan, 2)
		assert.Equal(t, "A", plan[0].BatchNumber)
		assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, "B", plan[1].BatchNumber)
		assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, plan.TotalQuantity().Equal(decimal.NewFromInt(15)))
	})

	t.Run("insufficient stock reports available and requested", func(t *testing.T) {
		allocator, ledger := setup(t)
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 8, "A", &early, now)

		_, err := allocator.Allocate(ctx, itemID, branchID, decimal.NewFromInt(10))
		require.Error(t, err)

		var insufficientErr *InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, itemID, insufficientErr.ItemID)
		assert.Equal(t, branchID, insufficientErr.BranchID)
		assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(8)))
		assert.True(t, insufficientErr.Requested.Equal(decimal.NewFromInt(10)))
	})

	t.Run("depleted batches are not allocation candidates", func(t *testing.T) {
		allocator, ledger := setup(t)
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 10, "A", &early, now.Add(-2*time.Hour))
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypeSale, -10, "A", &early, now.Add(-time.Hour))
		appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 5, "B", &late, now)

		plan, err := allocator.Allocate(ctx, itemID, branchID, decimal.NewFromInt(5))
		require.NoError(t, err)

		require.Len(t, plan, 1)
		assert.Equal(t, "B", plan[0].BatchNumber)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		allocator, _ := setup(t)

		_, err := allocator.Allocate(ctx, itemID, branchID, decimal.Zero)
		assert.Error(t, err)

		_, err = allocator.Allocate(ctx, itemID, branchID, decimal.NewFromInt(-5))
		assert.Error(t, err)
	})

	t.Run("carries batch cost into the plan", func(t *testing.T) {
		allocator, ledger := setup(t)

		entry, err := NewLedgerEntry(companyID, branchID, itemID,
			TransactionTypePurchase, decimal.NewFromInt(10), decimal.NewFromFloat(3.25))
		require.NoError(t, err)
		entry.WithBatch("A", &early)
		require.NoError(t, ledger.Append(ctx, entry))

		plan, err := allocator.Allocate(ctx, itemID, branchID, decimal.NewFromInt(4))
		require.NoError(t, err)

		require.Len(t, plan, 1)
		assert.True(t, plan[0].UnitCost.Equal(decimal.NewFromFloat(3.25)))
	})
}
