package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/inventory"
)

// RecordSaleRequest is a request to sell stock at a branch
type RecordSaleRequest struct {
	CompanyID        uuid.UUID
	BranchID         uuid.UUID
	ItemID           uuid.UUID
	UnitName         string
	Quantity         decimal.Decimal
	Tier             string
	ReferenceType    string
	ReferenceID      string
	CreatedBy        uuid.UUID
	Notes            string
	AllowBelowMargin bool
	// ReorderThresholdBase overrides the configured replenishment threshold
	// for this item, in base units
	ReorderThresholdBase *decimal.Decimal
}

// RecordPurchaseRequest is a request to receive stock at a branch
type RecordPurchaseRequest struct {
	CompanyID     uuid.UUID
	BranchID      uuid.UUID
	ItemID        uuid.UUID
	UnitName      string
	Quantity      decimal.Decimal
	UnitCostBase  decimal.Decimal // cost per base unit
	BatchNumber   string
	ExpiryDate    *time.Time
	ReferenceType string
	ReferenceID   string
	CreatedBy     uuid.UUID
	Notes         string
}

// RecordAdjustmentRequest is a request to correct stock by a signed delta
type RecordAdjustmentRequest struct {
	CompanyID     uuid.UUID
	BranchID      uuid.UUID
	ItemID        uuid.UUID
	UnitName      string
	QuantityDelta decimal.Decimal // signed, in UnitName units
	BatchNumber   string
	ExpiryDate    *time.Time
	ReferenceType string
	ReferenceID   string
	CreatedBy     uuid.UUID
	Notes         string
}

// RecordTransferRequest is a request to move stock between branches
type RecordTransferRequest struct {
	CompanyID     uuid.UUID
	SourceBranch  uuid.UUID
	DestBranch    uuid.UUID
	ItemID        uuid.UUID
	UnitName      string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	CreatedBy     uuid.UUID
	Notes         string
}

// RecordOpeningBalanceRequest is a request to seed initial stock
type RecordOpeningBalanceRequest struct {
	CompanyID    uuid.UUID
	BranchID     uuid.UUID
	ItemID       uuid.UUID
	UnitName     string
	Quantity     decimal.Decimal
	UnitCostBase decimal.Decimal
	BatchNumber  string
	ExpiryDate   *time.Time
	CreatedBy    uuid.UUID
	Notes        string
}

// ManualReorderRequest is a user-entered reorder suggestion
type ManualReorderRequest struct {
	CompanyID     uuid.UUID
	BranchID      uuid.UUID
	ItemID        uuid.UUID
	QuantityPacks decimal.Decimal
	CreatedBy     uuid.UUID
}

// LedgerEntryResponse is the API view of a committed ledger entry
type LedgerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	BranchID        uuid.UUID       `json:"branch_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	BatchNumber     string          `json:"batch_number,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	TransactionType string          `json:"transaction_type"`
	QuantityDelta   decimal.Decimal `json:"quantity_delta"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse maps a domain entry to its API view
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              e.ID,
		BranchID:        e.BranchID,
		ItemID:          e.ItemID,
		BatchNumber:     e.BatchNumber,
		ExpiryDate:      e.ExpiryDate,
		TransactionType: e.TransactionType.String(),
		QuantityDelta:   e.QuantityDelta,
		UnitCost:        e.UnitCost,
		TotalCost:       e.TotalCost,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		CreatedAt:       e.CreatedAt,
	}
}

// QuoteResponse is the API view of a price quote
type QuoteResponse struct {
	UnitPrice      decimal.Decimal `json:"unit_price"`
	UnitName       string          `json:"unit_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	TotalInclusive decimal.Decimal `json:"total_inclusive"`
	Source         string          `json:"source"`
	Tier           string          `json:"tier"`
}

// ReorderSuggestionResponse is the API view of a reorder suggestion
type ReorderSuggestionResponse struct {
	ID            uuid.UUID       `json:"id"`
	ItemID        uuid.UUID       `json:"item_id"`
	BranchID      uuid.UUID       `json:"branch_id"`
	UnitName      string          `json:"unit_name"`
	QuantityPacks decimal.Decimal `json:"quantity_packs"`
	Reason        string          `json:"reason"`
	Fulfilled     bool            `json:"fulfilled"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToReorderSuggestionResponse maps a domain suggestion to its API view
func ToReorderSuggestionResponse(s *inventory.ReorderSuggestion) ReorderSuggestionResponse {
	return ReorderSuggestionResponse{
		ID:            s.ID,
		ItemID:        s.ItemID,
		BranchID:      s.BranchID,
		UnitName:      s.UnitName,
		QuantityPacks: s.QuantityPacks,
		Reason:        string(s.Reason),
		Fulfilled:     s.Fulfilled,
		CreatedAt:     s.CreatedAt,
	}
}

// SaleResponse is returned after a committed sale
type SaleResponse struct {
	Entries    []LedgerEntryResponse      `json:"entries"`
	Quote      *QuoteResponse             `json:"quote,omitempty"`
	Suggestion *ReorderSuggestionResponse `json:"reorder_suggestion,omitempty"`
}

// MovementResponse is returned after other committed movements
type MovementResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
}

// BatchStockResponse is the API view of one batch's derived stock
type BatchStockResponse struct {
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	OnHand       decimal.Decimal `json:"on_hand"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	FirstEntryAt time.Time       `json:"first_entry_at"`
}

// StockResponse is the derived stock position for an item at a branch
type StockResponse struct {
	ItemID     uuid.UUID            `json:"item_id"`
	BranchID   uuid.UUID            `json:"branch_id"`
	OnHandBase decimal.Decimal      `json:"on_hand_base"`
	Display    string               `json:"display"`
	Batches    []BatchStockResponse `json:"batches"`
}
