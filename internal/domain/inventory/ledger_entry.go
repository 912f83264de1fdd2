package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared"
)

// TransactionType represents the type of ledger movement
type TransactionType string

const (
	// TransactionTypePurchase represents stock received from a supplier
	TransactionTypePurchase TransactionType = "PURCHASE"
	// TransactionTypeSale represents stock sold to a customer
	TransactionTypeSale TransactionType = "SALE"
	// TransactionTypeAdjustment represents a manual stock correction
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	// TransactionTypeTransfer represents stock moved between branches
	TransactionTypeTransfer TransactionType = "TRANSFER"
	// TransactionTypeOpeningBalance represents initial stock setup
	TransactionTypeOpeningBalance TransactionType = "OPENING_BALANCE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is a recognized value
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypePurchase,
		TransactionTypeSale,
		TransactionTypeAdjustment,
		TransactionTypeTransfer,
		TransactionTypeOpeningBalance:
		return true
	}
	return false
}

// LedgerEntry is an immutable stock movement fact. The ledger is the sole
// source of truth for on-hand quantities: corrections are new offsetting
// entries, never updates or deletes. QuantityDelta is signed and always in
// base (retail) units.
type LedgerEntry struct {
	shared.BaseEntity
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_company"`
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_item_branch,priority:2"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_item_branch,priority:1"`
	BatchNumber     string          `gorm:"type:varchar(100);index"` // empty for untracked stock
	ExpiryDate      *time.Time      `gorm:"type:date"`
	TransactionType TransactionType `gorm:"type:varchar(30);not null;index"`
	ReferenceType   string          `gorm:"type:varchar(50)"`
	ReferenceID     string          `gorm:"type:varchar(50);index"`
	QuantityDelta   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid"`
	Notes           string          `gorm:"type:varchar(255)"`
	// Sequence breaks CreatedAt ties when ordering entries. It is assigned
	// by the postgres BIGSERIAL and stays zero under the sqlite development
	// driver, where CreatedAt alone orders entries.
	Sequence int64 `gorm:"autoIncrement;uniqueIndex"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a validated ledger entry
func NewLedgerEntry(
	companyID uuid.UUID,
	branchID uuid.UUID,
	itemID uuid.UUID,
	txType TransactionType,
	quantityDelta decimal.Decimal,
	unitCost decimal.Decimal,
) (*LedgerEntry, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Company ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Branch ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Item ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Unrecognized transaction type")
	}
	if quantityDelta.IsZero() {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Quantity delta cannot be zero")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_LEDGER_ENTRY", "Unit cost cannot be negative")
	}

	return &LedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		CompanyID:       companyID,
		BranchID:        branchID,
		ItemID:          itemID,
		TransactionType: txType,
		QuantityDelta:   quantityDelta,
		UnitCost:        unitCost,
		TotalCost:       quantityDelta.Abs().Mul(unitCost),
	}, nil
}

// WithBatch sets the batch number and expiry date
func (e *LedgerEntry) WithBatch(batchNumber string, expiryDate *time.Time) *LedgerEntry {
	e.BatchNumber = batchNumber
	e.ExpiryDate = expiryDate
	return e
}

// WithReference sets the source document reference
func (e *LedgerEntry) WithReference(refType, refID string) *LedgerEntry {
	e.ReferenceType = refType
	e.ReferenceID = refID
	return e
}

// WithCreatedBy sets the operator who caused the movement
func (e *LedgerEntry) WithCreatedBy(userID uuid.UUID) *LedgerEntry {
	e.CreatedBy = userID
	return e
}

// WithNotes sets free-form notes
func (e *LedgerEntry) WithNotes(notes string) *LedgerEntry {
	e.Notes = notes
	return e
}

// IsIncrease returns true when the entry adds stock
func (e *LedgerEntry) IsIncrease() bool {
	return e.QuantityDelta.IsPositive()
}

// IsDecrease returns true when the entry removes stock
func (e *LedgerEntry) IsDecrease() bool {
	return e.QuantityDelta.IsNegative()
}
