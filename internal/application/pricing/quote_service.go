package pricing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/pricing"
	"github.com/pharmacore/backend/internal/domain/shared"
)

// QuoteRequest is a request to price a quantity of an item
type QuoteRequest struct {
	ItemID           uuid.UUID
	Tier             string
	UnitName         string
	Quantity         decimal.Decimal
	BatchUnitCost    *decimal.Decimal
	AllowBelowMargin bool
}

// QuoteResponse is the API view of a price quote
type QuoteResponse struct {
	ItemID         uuid.UUID       `json:"item_id"`
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

// QuoteService prices items without touching stock
type QuoteService struct {
	itemRepo catalog.ItemRepository
	resolver *pricing.PriceResolver
	logger   *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(itemRepo catalog.ItemRepository, resolver *pricing.PriceResolver, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		itemRepo: itemRepo,
		resolver: resolver,
		logger:   logger,
	}
}

// Quote resolves a price quote for the requested item, tier, and unit
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	tier := catalog.TierRetail
	if req.Tier != "" {
		tier = catalog.Tier(strings.ToUpper(req.Tier))
		if !tier.IsValid() {
			return nil, shared.NewDomainError("INVALID_TIER", "Unrecognized pricing tier")
		}
	}

	unitName := req.UnitName
	if unitName == "" {
		unitName = item.UnitForTier(tier)
	}

	quote, err := s.resolver.Quote(item, tier, unitName, req.Quantity, pricing.QuoteOptions{
		BatchUnitCost:    req.BatchUnitCost,
		AllowBelowMargin: req.AllowBelowMargin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("quote resolved",
		zap.String("item_id", req.ItemID.String()),
		zap.String("tier", tier.String()),
		zap.String("unit_price", quote.UnitPrice.String()),
		zap.String("source", string(quote.Source)),
	)

	return &QuoteResponse{
		ItemID:         req.ItemID,
		UnitPrice:      quote.UnitPrice,
		UnitName:       quote.UnitName,
		Quantity:       quote.Quantity,
		LineTotal:      quote.LineTotal,
		VATRate:        quote.VATRate,
		VATAmount:      quote.VATAmount,
		TotalInclusive: quote.TotalInclusive(),
		Source:         string(quote.Source),
		Tier:           quote.Tier.String(),
	}, nil
}
