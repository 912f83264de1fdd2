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
	"go.uber.org/zap"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/pricing"
	"github.com/pharmacore/backend/internal/domain/shared"
	"github.com/pharmacore/backend/internal/infrastructure/strategy/batch"
)

// fakeLedger is an in-memory LedgerRepository deriving sums and batch
// summaries by aggregation, the same contract the SQL store fulfills.
type fakeLedger struct {
	mu      sync.Mutex
	entries []*inventory.LedgerEntry
	seq     int64
}

var _ inventory.LedgerRepository = (*fakeLedger)(nil)

func (l *fakeLedger) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return l.AppendBatch(ctx, []*inventory.LedgerEntry{entry})
}

func (l *fakeLedger) AppendBatch(ctx context.Context, entries []*inventory.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		l.seq++
		e.Sequence = l.seq
		l.entries = append(l.entries, e)
	}
	return nil
}

func (l *fakeLedger) SumQuantity(ctx context.Context, itemID, branchID uuid.UUID) (decimal.Decimal, error) {
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

func (l *fakeLedger) BatchSummaries(ctx context.Context, itemID, branchID uuid.UUID) ([]inventory.BatchStock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	groups := make(map[string]*inventory.BatchStock)
	var order []string
	for _, e := range l.entries {
		if e.ItemID != itemID || e.BranchID != branchID {
			continue
		}
		k := e.BatchNumber
		if e.ExpiryDate != nil {
			k += "|" + e.ExpiryDate.Format("2006-01-02")
		}
		g, ok := groups[k]
		if !ok {
			g = &inventory.BatchStock{
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
	}

	batches := make([]inventory.BatchStock, 0, len(order))
	for _, k := range order {
		batches = append(batches, *groups[k])
	}
	return batches, nil
}

func (l *fakeLedger) FindByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range l.entries {
		if e.ItemID == itemID && e.BranchID == branchID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (l *fakeLedger) FindByReference(ctx context.Context, referenceType, referenceID string) ([]inventory.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []inventory.LedgerEntry
	for _, e := range l.entries {
		if e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// fakeTxManager serializes callbacks per (item, branch) with a mutex,
// standing in for the row-lock transaction of the SQL store.
type fakeTxManager struct {
	ledger *fakeLedger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ inventory.StockTxManager = (*fakeTxManager)(nil)

func newFakeTxManager(ledger *fakeLedger) *fakeTxManager {
	return &fakeTxManager{
		ledger: ledger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (m *fakeTxManager) WithStockLock(ctx context.Context, itemID, branchID uuid.UUID, fn func(ctx context.Context, ledger inventory.LedgerRepository) error) error {
	key := itemID.String() + "|" + branchID.String()
	m.mu.Lock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, m.ledger)
}

type fakeItemRepo struct {
	items map[uuid.UUID]*catalog.Item
}

var _ catalog.ItemRepository = (*fakeItemRepo)(nil)

func (r *fakeItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.items {
		if item.CompanyID == companyID {
			out = append(out, *item)
		}
	}
	return out, nil
}

type fakeReorderRepo struct {
	mu          sync.Mutex
	suggestions []*inventory.ReorderSuggestion
}

var _ inventory.ReorderSuggestionRepository = (*fakeReorderRepo)(nil)

func (r *fakeReorderRepo) Save(ctx context.Context, suggestion *inventory.ReorderSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions = append(r.suggestions, suggestion)
	return nil
}

func (r *fakeReorderRepo) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]inventory.ReorderSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.ReorderSuggestion
	for _, s := range r.suggestions {
		if s.BranchID == branchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeReorderRepo) FindOpenByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID) (*inventory.ReorderSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.suggestions {
		if s.ItemID == itemID && s.BranchID == branchID && !s.Fulfilled {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

type serviceFixture struct {
	service     *StockService
	ledger      *fakeLedger
	reorderRepo *fakeReorderRepo
	item        *catalog.Item
	companyID   uuid.UUID
	branchID    uuid.UUID
	userID      uuid.UUID
}

func newFixture(t *testing.T, replenishment ReplenishmentSettings) *serviceFixture {
	t.Helper()

	companyID := uuid.New()
	item, err := catalog.NewItem(companyID, "Amoxicillin 500mg", "carton", "packet", "tablet", 30)
	require.NoError(t, err)
	item.LastPurchaseUnitCost = decimal.NewFromFloat(2.0)
	item.RetailPricePerRetailUnit = decimal.NewFromFloat(3.0)

	ledger := &fakeLedger{}
	reorderRepo := &fakeReorderRepo{}
	converter := catalog.NewConversionResolver()
	resolver := pricing.NewPriceResolver(converter, pricing.Defaults{
		MarkupPercent: decimal.NewFromInt(25),
		RoundingRule:  catalog.RoundingNone,
	})

	service := NewStockService(
		&fakeItemRepo{items: map[uuid.UUID]*catalog.Item{item.ID: item}},
		newFakeTxManager(ledger),
		ledger,
		reorderRepo,
		batch.NewFEFOBatchStrategy(),
		converter,
		resolver,
		replenishment,
		zap.NewNop(),
	)

	return &serviceFixture{
		service:     service,
		ledger:      ledger,
		reorderRepo: reorderRepo,
		item:        item,
		companyID:   companyID,
		branchID:    uuid.New(),
		userID:      uuid.New(),
	}
}

func (f *serviceFixture) seedPurchase(t *testing.T, qty int64, batchNumber string, expiry *time.Time) {
	t.Helper()
	_, err := f.service.RecordPurchase(context.Background(), RecordPurchaseRequest{
		CompanyID:    f.companyID,
		BranchID:     f.branchID,
		ItemID:       f.item.ID,
		UnitName:     "tablet",
		Quantity:     decimal.NewFromInt(qty),
		UnitCostBase: decimal.NewFromFloat(2.0),
		BatchNumber:  batchNumber,
		ExpiryDate:   expiry,
		CreatedBy:    f.userID,
	})
	require.NoError(t, err)
}

func TestStockService_RecordSale(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	early := now.AddDate(0, 1, 0)
	late := now.AddDate(0, 6, 0)

	t.Run("allocates FEFO across batches and appends one entry per batch", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 20, "LATE", &late)
		f.seedPurchase(t, 10, "EARLY", &early)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(15),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 2)
		assert.Equal(t, "EARLY", resp.Entries[0].BatchNumber)
		assert.True(t, resp.Entries[0].QuantityDelta.Equal(decimal.NewFromInt(-10)))
		assert.Equal(t, "LATE", resp.Entries[1].BatchNumber)
		assert.True(t, resp.Entries[1].QuantityDelta.Equal(decimal.NewFromInt(-5)))

		remaining, err := f.ledger.SumQuantity(ctx, f.item.ID, f.branchID)
		require.NoError(t, err)
		assert.True(t, remaining.Equal(decimal.NewFromInt(15)))
	})

	t.Run("sale in named pack units converts to base", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 90, "B1", &late)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "carton",
			Quantity:  decimal.NewFromInt(2),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 1)
		assert.True(t, resp.Entries[0].QuantityDelta.Equal(decimal.NewFromInt(-60)))
	})

	t.Run("insufficient stock writes nothing", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 8, "B1", &early)
		before := f.ledger.count()

		_, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(10),
			CreatedBy: f.userID,
		})
		require.Error(t, err)

		var insufficientErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(8)))
		assert.True(t, insufficientErr.Requested.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, before, f.ledger.count())
	})

	t.Run("returns a quote priced from the allocated batch", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 50, "B1", &early)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(4),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)

		require.NotNil(t, resp.Quote)
		// Fixed retail price wins the waterfall
		assert.True(t, resp.Quote.UnitPrice.Equal(decimal.NewFromFloat(3.0)))
		assert.True(t, resp.Quote.LineTotal.Equal(decimal.NewFromInt(12)))
		assert.Equal(t, "RETAIL", resp.Quote.Tier)
	})

	t.Run("whole-pack items reject loose quantities", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.item.CanBreakBulk = false
		f.seedPurchase(t, 90, "B1", &early)

		_, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(10),
			CreatedBy: f.userID,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BULK_ONLY", domainErr.Code)

		// Whole packs still sell
		_, err = f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "carton",
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: f.userID,
		})
		assert.NoError(t, err)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 50, "B1", &early)

		_, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(1),
			Tier:      "vip",
			CreatedBy: f.userID,
		})
		assert.Error(t, err)
	})

	t.Run("concurrent sales never oversell", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 10, "B1", &early)

		const workers = 8
		var wg sync.WaitGroup
		results := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.RecordSale(ctx, RecordSaleRequest{
					CompanyID: f.companyID,
					BranchID:  f.branchID,
					ItemID:    f.item.ID,
					UnitName:  "tablet",
					Quantity:  decimal.NewFromInt(8),
					CreatedBy: f.userID,
				})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				var insufficientErr *inventory.InsufficientStockError
				require.ErrorAs(t, err, &insufficientErr)
			}
		}
		assert.Equal(t, 1, succeeded)

		remaining, err := f.ledger.SumQuantity(ctx, f.item.ID, f.branchID)
		require.NoError(t, err)
		assert.True(t, remaining.Equal(decimal.NewFromInt(2)))
	})
}

func TestStockService_RecordAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("appends signed delta", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 50, "B1", nil)

		resp, err := f.service.RecordAdjustment(ctx, RecordAdjustmentRequest{
			CompanyID:     f.companyID,
			BranchID:      f.branchID,
			ItemID:        f.item.ID,
			UnitName:      "tablet",
			QuantityDelta: decimal.NewFromInt(-5),
			CreatedBy:     f.userID,
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 1)
		assert.Equal(t, "ADJUSTMENT", resp.Entries[0].TransactionType)
		assert.True(t, resp.Entries[0].QuantityDelta.Equal(decimal.NewFromInt(-5)))
	})

	t.Run("downward adjustment cannot take stock negative", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 5, "B1", nil)

		_, err := f.service.RecordAdjustment(ctx, RecordAdjustmentRequest{
			CompanyID:     f.companyID,
			BranchID:      f.branchID,
			ItemID:        f.item.ID,
			UnitName:      "tablet",
			QuantityDelta: decimal.NewFromInt(-6),
			CreatedBy:     f.userID,
		})
		require.Error(t, err)

		var insufficientErr *inventory.InsufficientStockError
		assert.ErrorAs(t, err, &insufficientErr)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})

		_, err := f.service.RecordAdjustment(ctx, RecordAdjustmentRequest{
			CompanyID:     f.companyID,
			BranchID:      f.branchID,
			ItemID:        f.item.ID,
			UnitName:      "tablet",
			QuantityDelta: decimal.Zero,
			CreatedBy:     f.userID,
		})
		assert.Error(t, err)
	})
}

func TestStockService_RecordTransfer(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	early := now.AddDate(0, 1, 0)

	t.Run("moves stock with paired entries preserving batches", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 50, "B1", &early)
		destBranch := uuid.New()

		resp, err := f.service.RecordTransfer(ctx, RecordTransferRequest{
			CompanyID:    f.companyID,
			SourceBranch: f.branchID,
			DestBranch:   destBranch,
			ItemID:       f.item.ID,
			UnitName:     "tablet",
			Quantity:     decimal.NewFromInt(20),
			CreatedBy:    f.userID,
		})
		require.NoError(t, err)

		require.Len(t, resp.Entries, 2)
		assert.True(t, resp.Entries[0].QuantityDelta.Equal(decimal.NewFromInt(-20)))
		assert.Equal(t, f.branchID, resp.Entries[0].BranchID)
		assert.True(t, resp.Entries[1].QuantityDelta.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, destBranch, resp.Entries[1].BranchID)
		assert.Equal(t, "B1", resp.Entries[1].BatchNumber)

		sourceStock, err := f.ledger.SumQuantity(ctx, f.item.ID, f.branchID)
		require.NoError(t, err)
		assert.True(t, sourceStock.Equal(decimal.NewFromInt(30)))

		destStock, err := f.ledger.SumQuantity(ctx, f.item.ID, destBranch)
		require.NoError(t, err)
		assert.True(t, destStock.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects same-branch transfer", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})

		_, err := f.service.RecordTransfer(ctx, RecordTransferRequest{
			CompanyID:    f.companyID,
			SourceBranch: f.branchID,
			DestBranch:   f.branchID,
			ItemID:       f.item.ID,
			UnitName:     "tablet",
			Quantity:     decimal.NewFromInt(5),
		})
		assert.Error(t, err)
	})

	t.Run("insufficient source stock blocks the transfer", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{})
		f.seedPurchase(t, 5, "B1", &early)

		_, err := f.service.RecordTransfer(ctx, RecordTransferRequest{
			CompanyID:    f.companyID,
			SourceBranch: f.branchID,
			DestBranch:   uuid.New(),
			ItemID:       f.item.ID,
			UnitName:     "tablet",
			Quantity:     decimal.NewFromInt(10),
		})

		var insufficientErr *inventory.InsufficientStockError
		assert.ErrorAs(t, err, &insufficientErr)
	})
}

func TestStockService_Replenishment(t *testing.T) {
	ctx := context.Background()
	threshold := decimal.NewFromInt(100)

	settings := ReplenishmentSettings{
		Enabled:              true,
		DefaultThresholdBase: threshold,
	}

	t.Run("sale below threshold produces a suggestion", func(t *testing.T) {
		f := newFixture(t, settings)
		f.seedPurchase(t, 110, "B1", nil)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(30),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)

		// Stock 80, shortfall 20 tablets = 0.67 packs, one pack suggested
		require.NotNil(t, resp.Suggestion)
		assert.True(t, resp.Suggestion.QuantityPacks.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, "carton", resp.Suggestion.UnitName)
		assert.Equal(t, string(inventory.ReorderReasonAutoSale), resp.Suggestion.Reason)
	})

	t.Run("negligible shortfall yields no suggestion", func(t *testing.T) {
		f := newFixture(t, settings)
		f.seedPurchase(t, 110, "B1", nil)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(22),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)

		// Stock 88, shortfall 12 tablets = 0.4 packs, below the ordering cutoff
		assert.Nil(t, resp.Suggestion)
	})

	t.Run("open suggestion suppresses duplicates", func(t *testing.T) {
		f := newFixture(t, settings)
		f.seedPurchase(t, 110, "B1", nil)

		sell := func() *SaleResponse {
			resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
				CompanyID: f.companyID,
				BranchID:  f.branchID,
				ItemID:    f.item.ID,
				UnitName:  "tablet",
				Quantity:  decimal.NewFromInt(30),
				CreatedBy: f.userID,
			})
			require.NoError(t, err)
			return resp
		}

		first := sell()
		require.NotNil(t, first.Suggestion)

		second := sell()
		assert.Nil(t, second.Suggestion)

		suggestions, err := f.reorderRepo.FindByBranch(ctx, f.branchID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, suggestions, 1)
	})

	t.Run("request threshold overrides the default", func(t *testing.T) {
		f := newFixture(t, settings)
		f.seedPurchase(t, 110, "B1", nil)
		override := decimal.NewFromInt(50)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID:            f.companyID,
			BranchID:             f.branchID,
			ItemID:               f.item.ID,
			UnitName:             "tablet",
			Quantity:             decimal.NewFromInt(22),
			CreatedBy:            f.userID,
			ReorderThresholdBase: &override,
		})
		require.NoError(t, err)

		// Stock 88 is above the 50 override
		assert.Nil(t, resp.Suggestion)
	})

	t.Run("disabled replenishment never suggests", func(t *testing.T) {
		f := newFixture(t, ReplenishmentSettings{Enabled: false, DefaultThresholdBase: threshold})
		f.seedPurchase(t, 10, "B1", nil)

		resp, err := f.service.RecordSale(ctx, RecordSaleRequest{
			CompanyID: f.companyID,
			BranchID:  f.branchID,
			ItemID:    f.item.ID,
			UnitName:  "tablet",
			Quantity:  decimal.NewFromInt(5),
			CreatedBy: f.userID,
		})
		require.NoError(t, err)
		assert.Nil(t, resp.Suggestion)
	})
}

func TestStockService_AddManualReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReplenishmentSettings{})

	t.Run("records the quantity verbatim", func(t *testing.T) {
		resp, err := f.service.AddManualReorder(ctx, ManualReorderRequest{
			CompanyID:     f.companyID,
			BranchID:      f.branchID,
			ItemID:        f.item.ID,
			QuantityPacks: decimal.NewFromFloat(2.5),
			CreatedBy:     f.userID,
		})
		require.NoError(t, err)

		assert.True(t, resp.QuantityPacks.Equal(decimal.NewFromFloat(2.5)))
		assert.Equal(t, string(inventory.ReorderReasonManualAdd), resp.Reason)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := f.service.AddManualReorder(ctx, ManualReorderRequest{
			CompanyID:     f.companyID,
			BranchID:      f.branchID,
			ItemID:        f.item.ID,
			QuantityPacks: decimal.Zero,
			CreatedBy:     f.userID,
		})
		assert.Error(t, err)
	})
}

func TestStockService_GetStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ReplenishmentSettings{})
	f.seedPurchase(t, 157, "B1", nil)

	resp, err := f.service.GetStock(ctx, f.item.ID, f.branchID)
	require.NoError(t, err)

	assert.True(t, resp.OnHandBase.Equal(decimal.NewFromInt(157)))
	assert.Equal(t, "5 carton + 7 tablet", resp.Display)
	require.Len(t, resp.Batches, 1)
	assert.True(t, resp.Batches[0].OnHand.Equal(decimal.NewFromInt(157)))
}
