package batch

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

func TestFIFOBatchStrategy_SelectBatches(t *testing.T) {
	s := NewFIFOBatchStrategy()
	ctx := context.Background()

	now := time.Now()
	batches := []strategy.Batch{
		{
			BatchNumber:  "B002",
			ExpiryDate:   datePtr(now.Add(5 * 24 * time.Hour)), // Earliest expiry, but newer
			OnHand:       decimal.NewFromInt(40),
			UnitCost:     decimal.NewFromFloat(11.0),
			FirstEntryAt: now.Add(-8 * 24 * time.Hour),
		},
		{
			BatchNumber:  "B001",
			ExpiryDate:   datePtr(now.Add(90 * 24 * time.Hour)),
			OnHand:       decimal.NewFromInt(50),
			UnitCost:     decimal.NewFromFloat(12.0),
			FirstEntryAt: now.Add(-20 * 24 * time.Hour),
		},
	}

	t.Run("selects batches by first ledger entry ignoring expiry", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			Quantity: decimal.NewFromInt(60),
		}, batches)
		require.NoError(t, err)

		require.Len(t, result.Selections, 2)
		assert.Equal(t, "B001", result.Selections[0].BatchNumber)
		assert.True(t, result.Selections[0].Quantity.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, "B002", result.Selections[1].BatchNumber)
		assert.True(t, result.Selections[1].Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, result.ShortfallQty.IsZero())
	})

	t.Run("reports shortfall when insufficient quantity", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			Quantity: decimal.NewFromInt(100),
		}, batches)
		require.NoError(t, err)

		assert.True(t, result.TotalQty.Equal(decimal.NewFromInt(90)))
		assert.True(t, result.ShortfallQty.Equal(decimal.NewFromInt(10)))
	})
}

func TestFIFOBatchStrategy_Metadata(t *testing.T) {
	s := NewFIFOBatchStrategy()

	assert.Equal(t, "fifo", s.Name())
	assert.Equal(t, strategy.StrategyTypeBatch, s.Type())
	assert.False(t, s.ConsidersExpiry())
}
