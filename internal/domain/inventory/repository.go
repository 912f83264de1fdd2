package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared"
)

// BatchStock is a derived per-batch quantity, grouped from ledger entries by
// (batch number, expiry date). OnHand is SUM(quantity_delta) for the group.
// UnitCost is the cost of the most recent inbound entry for the batch.
// FirstEntryAt is when the batch first appeared in the ledger; it breaks
// ties between batches sharing an expiry date.
type BatchStock struct {
	BatchNumber  string
	ExpiryDate   *time.Time
	OnHand       decimal.Decimal
	UnitCost     decimal.Decimal
	FirstEntryAt time.Time
}

// HasStock returns true when the batch has positive on-hand quantity
func (b *BatchStock) HasStock() bool {
	return b.OnHand.IsPositive()
}

// LedgerRepository is the append-only store for ledger entries. There is
// deliberately no update or delete operation.
type LedgerRepository interface {
	// Append writes a single entry. The entry becomes visible to readers
	// immediately upon commit.
	Append(ctx context.Context, entry *LedgerEntry) error
	// AppendBatch writes multiple entries atomically; either all entries
	// commit or none do.
	AppendBatch(ctx context.Context, entries []*LedgerEntry) error
	// SumQuantity returns SUM(quantity_delta) for the item at the branch
	SumQuantity(ctx context.Context, itemID, branchID uuid.UUID) (decimal.Decimal, error)
	// BatchSummaries returns per-batch sums for the item at the branch,
	// including batches whose on-hand has dropped to zero or below.
	// Ordering is left to the caller.
	BatchSummaries(ctx context.Context, itemID, branchID uuid.UUID) ([]BatchStock, error)
	// FindByItemAndBranch returns entries for audit queries
	FindByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)
	// FindByReference returns entries produced by a source document
	FindByReference(ctx context.Context, referenceType, referenceID string) ([]LedgerEntry, error)
}

// StockTxManager scopes a unit of work to one (item, branch) stock position.
// The allocate-then-append composition for a sale must run inside WithStockLock
// so a concurrent caller observes post-commit stock instead of overselling.
// Serialization failures surface as shared.ErrConcurrencyConflict and the
// whole operation is safe to retry from scratch.
type StockTxManager interface {
	WithStockLock(ctx context.Context, itemID, branchID uuid.UUID, fn func(ctx context.Context, ledger LedgerRepository) error) error
}

// ReorderSuggestionRepository stores replenishment suggestions
type ReorderSuggestionRepository interface {
	Save(ctx context.Context, suggestion *ReorderSuggestion) error
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ReorderSuggestion, error)
	FindOpenByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID) (*ReorderSuggestion, error)
}
