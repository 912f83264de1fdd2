package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// StockGuard is the per-(item, branch) lock row serializing concurrent stock
// movements. It carries no quantity; on-hand stock is always derived from the
// ledger. The row exists purely to be selected FOR UPDATE.
type StockGuard struct {
	ItemID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (StockGuard) TableName() string {
	return "stock_guards"
}

// GormStockTxManager implements StockTxManager using GORM transactions and a
// row lock on stock_guards. Holding the guard row FOR UPDATE for the duration
// of the transaction means a concurrent movement on the same (item, branch)
// waits and then reads post-commit ledger state, so stock checks cannot race.
type GormStockTxManager struct {
	db *gorm.DB
}

// NewGormStockTxManager creates a new GormStockTxManager
func NewGormStockTxManager(db *gorm.DB) *GormStockTxManager {
	return &GormStockTxManager{db: db}
}

// WithStockLock runs fn inside a transaction holding the (item, branch) guard
// row lock. The ledger repository passed to fn is bound to the transaction.
func (m *GormStockTxManager) WithStockLock(
	ctx context.Context,
	itemID, branchID uuid.UUID,
	fn func(ctx context.Context, ledger inventory.LedgerRepository) error,
) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Create the guard row on first movement for this position
		guard := StockGuard{ItemID: itemID, BranchID: branchID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&guard).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_id = ? AND branch_id = ?", itemID, branchID).
			First(&StockGuard{}).Error; err != nil {
			return err
		}

		return fn(ctx, NewGormLedgerRepository(tx))
	})
	if err != nil && isSerializationFailure(err) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// isSerializationFailure detects deadlocks and serialization aborts, which
// are safe to retry from scratch
func isSerializationFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access")
}

// Ensure GormStockTxManager implements StockTxManager
var _ inventory.StockTxManager = (*GormStockTxManager)(nil)
