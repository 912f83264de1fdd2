package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/inventory"
	"github.com/pharmacore/backend/internal/domain/pricing"
	"github.com/pharmacore/backend/internal/domain/shared"
	"github.com/pharmacore/backend/internal/domain/shared/strategy"
)

// ReplenishmentSettings carries resolved replenishment configuration
type ReplenishmentSettings struct {
	Enabled              bool
	DefaultThresholdBase decimal.Decimal
}

// StockService composes the ledger engine into stock movement operations.
// Every stock-decreasing operation runs its allocate-then-append sequence
// inside a StockTxManager transaction so concurrent movements on the same
// (item, branch) serialize instead of overselling.
type StockService struct {
	itemRepo      catalog.ItemRepository
	txManager     inventory.StockTxManager
	ledger        inventory.LedgerRepository
	reorderRepo   inventory.ReorderSuggestionRepository
	batchStrategy strategy.BatchSelectionStrategy
	converter     *catalog.ConversionResolver
	resolver      *pricing.PriceResolver
	sizer         *inventory.ReplenishmentSizer
	publisher     shared.EventPublisher
	replenishment ReplenishmentSettings
	logger        *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	itemRepo catalog.ItemRepository,
	txManager inventory.StockTxManager,
	ledger inventory.LedgerRepository,
	reorderRepo inventory.ReorderSuggestionRepository,
	batchStrategy strategy.BatchSelectionStrategy,
	converter *catalog.ConversionResolver,
	resolver *pricing.PriceResolver,
	replenishment ReplenishmentSettings,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		itemRepo:      itemRepo,
		txManager:     txManager,
		ledger:        ledger,
		reorderRepo:   reorderRepo,
		batchStrategy: batchStrategy,
		converter:     converter,
		resolver:      resolver,
		sizer:         inventory.NewReplenishmentSizer(),
		replenishment: replenishment,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// RecordSale allocates stock FEFO and appends one SALE entry per consumed
// batch, all inside the (item, branch) stock transaction. On insufficient
// stock nothing is written. After commit it prices the sale from the first
// allocated batch's cost and evaluates replenishment.
func (s *StockService) RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	qtyBase, err := s.converter.ToBaseUnits(item, req.UnitName, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !qtyBase.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if err := s.checkBreakBulk(item, qtyBase); err != nil {
		return nil, err
	}

	tier, err := parseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	var entries []*inventory.LedgerEntry
	var plan inventory.AllocationPlan

	err = s.txManager.WithStockLock(ctx, req.ItemID, req.BranchID, func(ctx context.Context, ledger inventory.LedgerRepository) error {
		projector := inventory.NewStockProjector(ledger, s.converter)
		allocator := inventory.NewFefoAllocator(projector, s.batchStrategy)

		plan, err = allocator.Allocate(ctx, req.ItemID, req.BranchID, qtyBase)
		if err != nil {
			return err
		}

		entries = entries[:0]
		for _, alloc := range plan {
			entry, err := inventory.NewLedgerEntry(
				req.CompanyID, req.BranchID, req.ItemID,
				inventory.TransactionTypeSale,
				alloc.Quantity.Neg(),
				alloc.UnitCost,
			)
			if err != nil {
				return err
			}
			entry.WithBatch(alloc.BatchNumber, alloc.ExpiryDate).
				WithReference(req.ReferenceType, req.ReferenceID).
				WithCreatedBy(req.CreatedBy).
				WithNotes(req.Notes)
			entries = append(entries, entry)
		}

		return ledger.AppendBatch(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("item_id", req.ItemID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("quantity_base", qtyBase.String()),
		zap.Int("batches", len(plan)),
	)
	s.publishMovement(ctx, req.CompanyID, req.ItemID, req.BranchID,
		inventory.TransactionTypeSale, qtyBase.Neg(), req.ReferenceType, req.ReferenceID, len(entries))

	resp := &SaleResponse{Entries: toEntryResponses(entries)}

	if quote := s.quoteAfterSale(item, tier, req, plan); quote != nil {
		resp.Quote = quote
	}
	if suggestion := s.evaluateReplenishment(ctx, item, req.BranchID, req.ReorderThresholdBase, req.CreatedBy); suggestion != nil {
		sr := ToReorderSuggestionResponse(suggestion)
		resp.Suggestion = &sr
	}

	return resp, nil
}

// RecordPurchase appends a PURCHASE entry for received stock
func (s *StockService) RecordPurchase(ctx context.Context, req RecordPurchaseRequest) (*MovementResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	qtyBase, err := s.converter.ToBaseUnits(item, req.UnitName, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !qtyBase.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	entry, err := inventory.NewLedgerEntry(
		req.CompanyID, req.BranchID, req.ItemID,
		inventory.TransactionTypePurchase,
		qtyBase,
		req.UnitCostBase,
	)
	if err != nil {
		return nil, err
	}
	entry.WithBatch(req.BatchNumber, req.ExpiryDate).
		WithReference(req.ReferenceType, req.ReferenceID).
		WithCreatedBy(req.CreatedBy).
		WithNotes(req.Notes)

	err = s.txManager.WithStockLock(ctx, req.ItemID, req.BranchID, func(ctx context.Context, ledger inventory.LedgerRepository) error {
		return ledger.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase recorded",
		zap.String("item_id", req.ItemID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("quantity_base", qtyBase.String()),
		zap.String("batch_number", req.BatchNumber),
	)
	s.publishMovement(ctx, req.CompanyID, req.ItemID, req.BranchID,
		inventory.TransactionTypePurchase, qtyBase, req.ReferenceType, req.ReferenceID, 1)

	return &MovementResponse{Entries: toEntryResponses([]*inventory.LedgerEntry{entry})}, nil
}

// RecordAdjustment appends an ADJUSTMENT entry with a signed delta. Downward
// adjustments may not take on-hand stock below zero.
func (s *StockService) RecordAdjustment(ctx context.Context, req RecordAdjustmentRequest) (*MovementResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	deltaBase, err := s.converter.ToBaseUnits(item, req.UnitName, req.QuantityDelta)
	if err != nil {
		return nil, err
	}
	if deltaBase.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}

	entry, err := inventory.NewLedgerEntry(
		req.CompanyID, req.BranchID, req.ItemID,
		inventory.TransactionTypeAdjustment,
		deltaBase,
		item.LastPurchaseUnitCost,
	)
	if err != nil {
		return nil, err
	}
	entry.WithBatch(req.BatchNumber, req.ExpiryDate).
		WithReference(req.ReferenceType, req.ReferenceID).
		WithCreatedBy(req.CreatedBy).
		WithNotes(req.Notes)

	err = s.txManager.WithStockLock(ctx, req.ItemID, req.BranchID, func(ctx context.Context, ledger inventory.LedgerRepository) error {
		if deltaBase.IsNegative() {
			current, err := ledger.SumQuantity(ctx, req.ItemID, req.BranchID)
			if err != nil {
				return err
			}
			if current.Add(deltaBase).IsNegative() {
				return &inventory.InsufficientStockError{
					ItemID:    req.ItemID,
					BranchID:  req.BranchID,
					Available: current,
					Requested: deltaBase.Neg(),
				}
			}
		}
		return ledger.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("adjustment recorded",
		zap.String("item_id", req.ItemID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("delta_base", deltaBase.String()),
	)
	s.publishMovement(ctx, req.CompanyID, req.ItemID, req.BranchID,
		inventory.TransactionTypeAdjustment, deltaBase, req.ReferenceType, req.ReferenceID, 1)

	if deltaBase.IsNegative() {
		if suggestion := s.evaluateReplenishment(ctx, item, req.BranchID, nil, req.CreatedBy); suggestion != nil {
			s.logger.Info("reorder suggested after adjustment",
				zap.String("item_id", req.ItemID.String()),
				zap.String("quantity_packs", suggestion.QuantityPacks.String()),
			)
		}
	}

	return &MovementResponse{Entries: toEntryResponses([]*inventory.LedgerEntry{entry})}, nil
}

// RecordOpeningBalance seeds initial stock with an OPENING_BALANCE entry
func (s *StockService) RecordOpeningBalance(ctx context.Context, req RecordOpeningBalanceRequest) (*MovementResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	qtyBase, err := s.converter.ToBaseUnits(item, req.UnitName, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !qtyBase.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	entry, err := inventory.NewLedgerEntry(
		req.CompanyID, req.BranchID, req.ItemID,
		inventory.TransactionTypeOpeningBalance,
		qtyBase,
		req.UnitCostBase,
	)
	if err != nil {
		return nil, err
	}
	entry.WithBatch(req.BatchNumber, req.ExpiryDate).
		WithCreatedBy(req.CreatedBy).
		WithNotes(req.Notes)

	err = s.txManager.WithStockLock(ctx, req.ItemID, req.BranchID, func(ctx context.Context, ledger inventory.LedgerRepository) error {
		return ledger.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("opening balance recorded",
		zap.String("item_id", req.ItemID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("quantity_base", qtyBase.String()),
	)
	s.publishMovement(ctx, req.CompanyID, req.ItemID, req.BranchID,
		inventory.TransactionTypeOpeningBalance, qtyBase, "", "", 1)

	return &MovementResponse{Entries: toEntryResponses([]*inventory.LedgerEntry{entry})}, nil
}

// RecordTransfer moves stock between branches in one atomic batch: FEFO
// outbound entries at the source plus mirrored inbound entries at the
// destination, preserving batch numbers and expiry dates.
//
// Only the decreasing side can oversell, so the transaction locks the
// source position; the destination entries ride in the same append.
func (s *StockService) RecordTransfer(ctx context.Context, req RecordTransferRequest) (*MovementResponse, error) {
	if req.SourceBranch == req.DestBranch {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination branches must differ")
	}

	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	qtyBase, err := s.converter.ToBaseUnits(item, req.UnitName, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !qtyBase.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var entries []*inventory.LedgerEntry

	err = s.txManager.WithStockLock(ctx, req.ItemID, req.SourceBranch, func(ctx context.Context, ledger inventory.LedgerRepository) error {
		projector := inventory.NewStockProjector(ledger, s.converter)
		allocator := inventory.NewFefoAllocator(projector, s.batchStrategy)

		plan, err := allocator.Allocate(ctx, req.ItemID, req.SourceBranch, qtyBase)
		if err != nil {
			return err
		}

		entries = entries[:0]
		for _, alloc := range plan {
			out, err := inventory.NewLedgerEntry(
				req.CompanyID, req.SourceBranch, req.ItemID,
				inventory.TransactionTypeTransfer,
				alloc.Quantity.Neg(),
				alloc.UnitCost,
			)
			if err != nil {
				return err
			}
			out.WithBatch(alloc.BatchNumber, alloc.ExpiryDate).
				WithReference(req.ReferenceType, req.ReferenceID).
				WithCreatedBy(req.CreatedBy).
				WithNotes(req.Notes)

			in, err := inventory.NewLedgerEntry(
				req.CompanyID, req.DestBranch, req.ItemID,
				inventory.TransactionTypeTransfer,
				alloc.Quantity,
				alloc.UnitCost,
			)
			if err != nil {
				return err
			}
			in.WithBatch(alloc.BatchNumber, alloc.ExpiryDate).
				WithReference(req.ReferenceType, req.ReferenceID).
				WithCreatedBy(req.CreatedBy).
				WithNotes(req.Notes)

			entries = append(entries, out, in)
		}

		return ledger.AppendBatch(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer recorded",
		zap.String("item_id", req.ItemID.String()),
		zap.String("source_branch", req.SourceBranch.String()),
		zap.String("dest_branch", req.DestBranch.String()),
		zap.String("quantity_base", qtyBase.String()),
	)
	s.publishMovement(ctx, req.CompanyID, req.ItemID, req.SourceBranch,
		inventory.TransactionTypeTransfer, qtyBase.Neg(), req.ReferenceType, req.ReferenceID, len(entries))

	return &MovementResponse{Entries: toEntryResponses(entries)}, nil
}

// GetStock returns the derived stock position for an item at a branch
func (s *StockService) GetStock(ctx context.Context, itemID, branchID uuid.UUID) (*StockResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	projector := inventory.NewStockProjector(s.ledger, s.converter)
	total, err := projector.CurrentStock(ctx, itemID, branchID)
	if err != nil {
		return nil, err
	}
	batches, err := projector.StockByBatch(ctx, itemID, branchID)
	if err != nil {
		return nil, err
	}

	batchResponses := make([]BatchStockResponse, len(batches))
	for i, b := range batches {
		batchResponses[i] = BatchStockResponse{
			BatchNumber:  b.BatchNumber,
			ExpiryDate:   b.ExpiryDate,
			OnHand:       b.OnHand,
			UnitCost:     b.UnitCost,
			FirstEntryAt: b.FirstEntryAt,
		}
	}

	return &StockResponse{
		ItemID:     itemID,
		BranchID:   branchID,
		OnHandBase: total,
		Display:    s.converter.StockDisplay(item, total),
		Batches:    batchResponses,
	}, nil
}

// GetLedger returns ledger entries for an item at a branch
func (s *StockService) GetLedger(ctx context.Context, itemID, branchID uuid.UUID, filter shared.Filter) ([]LedgerEntryResponse, error) {
	entries, err := s.ledger.FindByItemAndBranch(ctx, itemID, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses, nil
}

// AddManualReorder records a user-entered reorder suggestion
func (s *StockService) AddManualReorder(ctx context.Context, req ManualReorderRequest) (*ReorderSuggestionResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	suggestion, err := s.sizer.ManualSuggestion(item, req.BranchID, req.QuantityPacks, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.reorderRepo.Save(ctx, suggestion); err != nil {
		return nil, err
	}
	s.publishReorder(ctx, suggestion)

	resp := ToReorderSuggestionResponse(suggestion)
	return &resp, nil
}

// ListReorderSuggestions lists suggestions for a branch
func (s *StockService) ListReorderSuggestions(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ReorderSuggestionResponse, error) {
	suggestions, err := s.reorderRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ReorderSuggestionResponse, len(suggestions))
	for i := range suggestions {
		responses[i] = ToReorderSuggestionResponse(&suggestions[i])
	}
	return responses, nil
}

// checkBreakBulk rejects sub-pack quantities for items that may only move in
// whole packs
func (s *StockService) checkBreakBulk(item *catalog.Item, qtyBase decimal.Decimal) error {
	if item.CanBreakBulk {
		return nil
	}
	pack := decimal.NewFromInt(item.PackSize)
	if !qtyBase.Mod(pack).IsZero() {
		return shared.NewDomainError("BULK_ONLY", "Item can only be sold in whole packs")
	}
	return nil
}

// quoteAfterSale prices the committed sale from the first allocated batch's
// cost. A pricing failure never unwinds the sale; it is logged and the quote
// omitted.
func (s *StockService) quoteAfterSale(item *catalog.Item, tier catalog.Tier, req RecordSaleRequest, plan inventory.AllocationPlan) *QuoteResponse {
	opts := pricing.QuoteOptions{AllowBelowMargin: req.AllowBelowMargin}
	if len(plan) > 0 {
		opts.BatchUnitCost = &plan[0].UnitCost
	}

	quote, err := s.resolver.Quote(item, tier, req.UnitName, req.Quantity, opts)
	if err != nil {
		s.logger.Warn("sale committed but pricing failed",
			zap.String("item_id", item.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	return &QuoteResponse{
		UnitPrice:      quote.UnitPrice,
		UnitName:       quote.UnitName,
		Quantity:       quote.Quantity,
		LineTotal:      quote.LineTotal,
		VATRate:        quote.VATRate,
		VATAmount:      quote.VATAmount,
		TotalInclusive: quote.TotalInclusive(),
		Source:         string(quote.Source),
		Tier:           quote.Tier.String(),
	}
}

// evaluateReplenishment runs the sizer after a committed stock-decreasing
// event. It skips when an open suggestion already exists for the position,
// and never fails the movement; errors are logged.
func (s *StockService) evaluateReplenishment(ctx context.Context, item *catalog.Item, branchID uuid.UUID, thresholdOverride *decimal.Decimal, createdBy uuid.UUID) *inventory.ReorderSuggestion {
	if !s.replenishment.Enabled {
		return nil
	}

	threshold := s.replenishment.DefaultThresholdBase
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}
	if !threshold.IsPositive() {
		return nil
	}

	current, err := s.ledger.SumQuantity(ctx, item.ID, branchID)
	if err != nil {
		s.logger.Warn("replenishment check failed", zap.Error(err))
		return nil
	}

	suggestion := s.sizer.Evaluate(item, branchID, current, threshold, createdBy)
	if suggestion == nil {
		return nil
	}

	if _, err := s.reorderRepo.FindOpenByItemAndBranch(ctx, item.ID, branchID); err == nil {
		// An open suggestion already covers this position
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("replenishment lookup failed", zap.Error(err))
		return nil
	}

	if err := s.reorderRepo.Save(ctx, suggestion); err != nil {
		s.logger.Warn("failed to save reorder suggestion", zap.Error(err))
		return nil
	}
	s.publishReorder(ctx, suggestion)

	return suggestion
}

// publishMovement publishes a StockMovementRecordedEvent if a publisher is set
func (s *StockService) publishMovement(ctx context.Context, companyID, itemID, branchID uuid.UUID, txType inventory.TransactionType, delta decimal.Decimal, refType, refID string, entryCount int) {
	if s.publisher == nil {
		return
	}
	event := inventory.NewStockMovementRecordedEvent(companyID, itemID, branchID, txType, delta, refType, refID, entryCount)
	_ = s.publisher.Publish(ctx, event)
}

// publishReorder publishes a ReorderSuggestedEvent if a publisher is set
func (s *StockService) publishReorder(ctx context.Context, suggestion *inventory.ReorderSuggestion) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, inventory.NewReorderSuggestedEvent(suggestion))
}

// parseTier maps a request tier string to a domain tier, defaulting to retail
func parseTier(raw string) (catalog.Tier, error) {
	if raw == "" {
		return catalog.TierRetail, nil
	}
	tier := catalog.Tier(strings.ToUpper(raw))
	if !tier.IsValid() {
		return "", shared.NewDomainError("INVALID_TIER", "Unrecognized pricing tier")
	}
	return tier, nil
}

func toEntryResponses(entries []*inventory.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToLedgerEntryResponse(e)
	}
	return responses
}
