package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// GormLedgerRepository implements LedgerRepository using GORM.
// The ledger is append-only: this type exposes no update or delete path.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append writes a single ledger entry
func (r *GormLedgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// AppendBatch writes multiple entries atomically
func (r *GormLedgerRepository) AppendBatch(ctx context.Context, entries []*inventory.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
}

// SumQuantity returns SUM(quantity_delta) for the item at the branch
func (r *GormLedgerRepository) SumQuantity(ctx context.Context, itemID, branchID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Select("COALESCE(SUM(quantity_delta), 0) as total").
		Where("item_id = ? AND branch_id = ?", itemID, branchID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// BatchSummaries returns per-batch quantity sums grouped by batch number and
// expiry date. UnitCost is taken from the most recent inbound entry of each
// batch so sales can be costed at what the batch was bought for.
func (r *GormLedgerRepository) BatchSummaries(ctx context.Context, itemID, branchID uuid.UUID) ([]inventory.BatchStock, error) {
	var rows []inventory.BatchStock
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			le.batch_number,
			le.expiry_date,
			COALESCE(SUM(le.quantity_delta), 0) AS on_hand,
			MIN(le.created_at) AS first_entry_at,
			COALESCE((
				SELECT li.unit_cost
				FROM ledger_entries li
				WHERE li.item_id = le.item_id
				  AND li.branch_id = le.branch_id
				  AND li.batch_number = le.batch_number
				  AND (li.expiry_date = le.expiry_date
				       OR (li.expiry_date IS NULL AND le.expiry_date IS NULL))
				  AND li.quantity_delta > 0
				ORDER BY li.created_at DESC, li.sequence DESC
				LIMIT 1
			), 0) AS unit_cost
		FROM ledger_entries le
		WHERE le.item_id = ? AND le.branch_id = ?
		GROUP BY le.item_id, le.branch_id, le.batch_number, le.expiry_date`,
		itemID, branchID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByItemAndBranch returns entries for an item at a branch for audit queries
func (r *GormLedgerRepository) FindByItemAndBranch(ctx context.Context, itemID, branchID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.LedgerEntry{}).
			Where("item_id = ? AND branch_id = ?", itemID, branchID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByReference returns entries produced by a source document. Ordering is
// by created_at with sequence as the tie-break: sequence is populated by the
// postgres BIGSERIAL and stays zero under the sqlite development driver.
func (r *GormLedgerRepository) FindByReference(ctx context.Context, referenceType, referenceID string) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at ASC, sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// applyFilter applies filter options to the query
func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "transaction_type":
			query = query.Where("transaction_type = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		case "created_by":
			query = query.Where("created_by = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC, sequence DESC")
	}

	return query
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
