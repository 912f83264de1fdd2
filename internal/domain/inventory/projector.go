package inventory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/catalog"
)

// StockProjector derives stock positions from the ledger by summation.
// No cached counter exists anywhere: every read recomputes from the
// append-only entries, so the projection cannot drift from the ledger.
type StockProjector struct {
	ledger    LedgerRepository
	converter *catalog.ConversionResolver
}

// NewStockProjector creates a new StockProjector
func NewStockProjector(ledger LedgerRepository, converter *catalog.ConversionResolver) *StockProjector {
	return &StockProjector{
		ledger:    ledger,
		converter: converter,
	}
}

// CurrentStock returns the on-hand quantity in base units for the item at the
// branch, with no batch filter.
func (p *StockProjector) CurrentStock(ctx context.Context, itemID, branchID uuid.UUID) (decimal.Decimal, error) {
	return p.ledger.SumQuantity(ctx, itemID, branchID)
}

// StockByBatch returns allocation candidates in FEFO order: ascending expiry
// date with no-expiry batches last, ties broken by earliest first entry.
// Batches with on-hand <= 0 are excluded.
func (p *StockProjector) StockByBatch(ctx context.Context, itemID, branchID uuid.UUID) ([]BatchStock, error) {
	all, err := p.StockByBatchIncludingEmpty(ctx, itemID, branchID)
	if err != nil {
		return nil, err
	}

	batches := make([]BatchStock, 0, len(all))
	for _, b := range all {
		if b.HasStock() {
			batches = append(batches, b)
		}
	}
	return batches, nil
}

// StockByBatchIncludingEmpty returns all batches in FEFO order, retaining
// depleted batches for audit queries.
func (p *StockProjector) StockByBatchIncludingEmpty(ctx context.Context, itemID, branchID uuid.UUID) ([]BatchStock, error) {
	batches, err := p.ledger.BatchSummaries(ctx, itemID, branchID)
	if err != nil {
		return nil, err
	}
	SortBatchesFEFO(batches)
	return batches, nil
}

// StockDisplay returns the human-readable stock label for the item at the
// branch, e.g. "5 packet + 7 tablet".
func (p *StockProjector) StockDisplay(ctx context.Context, item *catalog.Item, branchID uuid.UUID) (string, error) {
	total, err := p.CurrentStock(ctx, item.ID, branchID)
	if err != nil {
		return "", err
	}
	return p.converter.StockDisplay(item, total), nil
}

// SortBatchesFEFO sorts batches in place by expiry date ascending with
// nil-expiry batches last; batches sharing an expiry date are ordered by
// earliest first entry. The sort is stable so equal batches keep their
// relative order.
func SortBatchesFEFO(batches []BatchStock) {
	sort.SliceStable(batches, func(i, j int) bool {
		iExpiry := batches[i].ExpiryDate
		jExpiry := batches[j].ExpiryDate

		if iExpiry == nil && jExpiry == nil {
			return batches[i].FirstEntryAt.Before(batches[j].FirstEntryAt)
		}
		if iExpiry == nil {
			return false
		}
		if jExpiry == nil {
			return true
		}
		if iExpiry.Equal(*jExpiry) {
			return batches[i].FirstEntryAt.Before(batches[j].FirstEntryAt)
		}
		return iExpiry.Before(*jExpiry)
	})
}
