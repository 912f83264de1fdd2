package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// memoryLedger is an in-memory LedgerRepository deriving sums and batch
// summaries from the stored entries, mirroring how the SQL store aggregates.
type memoryLedger struct {
	mu      sync.Mutex
	entries []*LedgerEntry
	seq     int64
}

var _ LedgerRepository = (*memoryLedger)(nil)

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{}
}

func (l *memoryLedger) Append(ctx context.Context, entry *LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	entry.Sequence = l.seq
	l.entries = append(l.entries, entry)
	return nil
}

func (l *memoryLedger) AppendBatch(ctx context.Context, entries []*LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		l.seq++
		e.Sequence = l.seq
		l.entries = append(l.entries, e)
	}
	return nil
}

func (l *memoryLedger) SumQuantity(ctx context.Context, itemID, branchID uuid.UUID) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, e := range l.entries {
		if e.ItemID == itemID && e.BranchID == branchID {
			total = total.Add(e.QuantityDelta)
		}
	}
	return total, nil
}

func (l *memoryLedger) BatchSummaries(ctx context.Context, itemID, branchID uuid.UUID) ([]BatchStock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type key struct {
		batch  string
		expiry string
	}
	groups := make(map[key]*BatchStock)
	var order []key

	for _, e := range l.entries {
		if e.ItemID != itemID || e.BranchID != branchID {
			continue
		}
		k := key{batch: e.BatchNumber}
		if e.ExpiryDate != nil {
			k.expiry = e.ExpiryDate.Format("2006-01-02")
		}
		g, ok := groups[k]
		if !ok {
			g = &BatchStock{
				BatchNumber:  e.BatchNumber,
				ExpiryDate:   e.ExpiryDate,
				FirstEntryAt: e.CreatedAt,
			}
			groups[k] = g
			order = append(order, k)
		}
		g.OnHand = g.OnHand.Add(e.QuantityDelta)
		if e.QuantityDelta.IsPositive() {
			g.UnitCost = e.UnitCost
		}
		if e.CreatedAt.Before(g.FirstEntryAt) {
			g.FirstEntryAt = e.CreatedAt
		}
	}

	batches := make([]BatchStock, 0, len(order))
	for _, k := range order {
		batches = append(batches, *groups[k])
	}
	return batches, nil
}

func (l *memoryLedger) FindByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LedgerEntry
	for _, e := range l.entries {
		if e.ItemID == itemID && e.BranchID == branchID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (l *memoryLedger) FindByReference(ctx context.Context, referenceType, referenceID string) ([]LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LedgerEntry
	for _, e := range l.entries {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func appendEntry(t *testing.T, ledger *memoryLedger, companyID, branchID, itemID uuid.UUID, txType TransactionType, delta int64, batch string, expiry *time.Time, at time.Time) {
	t.Helper()
	entry, err := NewLedgerEntry(companyID, branchID, itemID, txType,
		decimal.NewFromInt(delta), decimal.NewFromFloat(2.0))
	require.NoError(t, err)
	entry.CreatedAt = at
	entry.WithBatch(batch, expiry)
	require.NoError(t, ledger.Append(context.Background(), entry))
}

func TestStockProjector_CurrentStock(t *testing.T) {
	ctx := context.Background()
	ledger := newMemoryLedger()
	projector := NewStockProjector(ledger, catalog.NewConversionResolver())

	companyID := uuid.New()
	branchID := uuid.New()
	itemID := uuid.New()
	now := time.Now()

	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypeOpeningBalance, 100, "", nil, now)
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypeSale, -30, "", nil, now)
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypeAdjustment, -5, "", nil, now)
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 60, "", nil, now)

	t.Run("on hand is the signed sum of all deltas", func(t *testing.T) {
		got, err := projector.CurrentStock(ctx, itemID, branchID)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(125)))
	})

	t.Run("other branches are not included", func(t *testing.T) {
		got, err := projector.CurrentStock(ctx, itemID, uuid.New())
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestStockProjector_StockByBatch(t *testing.T) {
	ctx := context.Background()
	ledger := newMemoryLedger()
	projector := NewStockProjector(ledger, catalog.NewConversionResolver())

	companyID := uuid.New()
	branchID := uuid.New()
	itemID := uuid.New()
	now := time.Now()

	late := now.AddDate(0, 6, 0)
	early := now.AddDate(0, 1, 0)

	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 50, "LATE", &late, now.Add(-3*time.Hour))
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 40, "NO-EXPIRY", nil, now.Add(-2*time.Hour))
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypePurchase, 30, "EARLY", &early, now.Add(-1*time.Hour))
	appendEntry(t, ledger, companyID, branchID, itemID, TransactionTypeSale, -30, "EARLY", &early, now)

	t.Run("orders batches FEFO with nil expiry last", func(t *testing.T) {
		batches, err := projector.StockByBatchIncludingEmpty(ctx, itemID, branchID)
		require.NoError(t, err)

		require.Len(t, batches, 3)
		assert.Equal(t, "EARLY", batches[0].BatchNumber)
		assert.Equal(t, "LATE", batches[1].BatchNumber)
		assert.Equal(t, "NO-EXPIRY", batches[2].BatchNumber)
	})

	t.Run("excludes depleted batches from allocation candidates", func(t *testing.T) {
		batches, err := projector.StockByBatch(ctx, itemID, branchID)
		require.NoError(t, err)

		require.Len(t, batches, 2)
		assert.Equal(t, "LATE", batches[0].BatchNumber)
		assert.Equal(t, "NO-EXPIRY", batches[1].BatchNumber)
	})
}

func TestSortBatchesFEFO(t *testing.T) {
	now := time.Now()
	expiry := now.AddDate(0, 3, 0)

	t.Run("equal expiry ties break by first entry", func(t *testing.T) {
		batches := []BatchStock{
			{BatchNumber: "SECOND", ExpiryDate: &expiry, FirstEntryAt: now},
			{BatchNumber: "FIRST", ExpiryDate: &expiry, FirstEntryAt: now.Add(-time.Hour)},
		}
		SortBatchesFEFO(batches)

		assert.Equal(t, "FIRST", batches[0].BatchNumber)
		assert.Equal(t, "SECOND", batches[1].BatchNumber)
	})

	t.Run("nil expiries order among themselves by first entry", func(t *testing.T) {
		batches := []BatchStock{
			{BatchNumber: "NEWER", FirstEntryAt: now},
			{BatchNumber: "OLDER", FirstEntryAt: now.Add(-time.Hour)},
		}
		SortBatchesFEFO(batches)

		assert.Equal(t, "OLDER", batches[0].BatchNumber)
	})
}

func TestStockProjector_StockDisplay(t *testing.T) {
	ctx := context.Background()
	ledger := newMemoryLedger()
	projector := NewStockProjector(ledger, catalog.NewConversionResolver())

	item, err := catalog.NewItem(uuid.New(), "Paracetamol 500mg", "carton", "packet", "tablet", 30)
	require.NoError(t, err)

	branchID := uuid.New()
	appendEntry(t, ledger, item.CompanyID, branchID, item.ID, TransactionTypeOpeningBalance, 157, "", nil, time.Now())

	display, err := projector.StockDisplay(ctx, item, branchID)
	require.NoError(t, err)
	assert.Equal(t, "5 carton + 7 tablet", display)
}
