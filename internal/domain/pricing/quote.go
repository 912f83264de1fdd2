package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/catalog"
)

// PriceSource is the tagged variant describing which branch of the price
// waterfall produced a quote.
type PriceSource string

const (
	// PriceSourceTier means a fixed tier price was configured for the item
	PriceSourceTier PriceSource = "TIER"
	// PriceSourceCostPlusMarkup means the price was derived from cost
	PriceSourceCostPlusMarkup PriceSource = "COST_PLUS_MARKUP"
)

// PriceQuote is the priced line for a requested quantity of one item.
// VATRate is copied from the item at quote time and is immutable afterward:
// transaction lines recorded from a quote keep this rate even if the item's
// rate later changes.
type PriceQuote struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitName  string          `json:"unit_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"` // VAT-exclusive
	VATRate   decimal.Decimal `json:"vat_rate"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Source    PriceSource     `json:"source"`
	Tier      catalog.Tier    `json:"tier"`
}

// TotalInclusive returns the line total including VAT
func (q *PriceQuote) TotalInclusive() decimal.Decimal {
	return q.LineTotal.Add(q.VATAmount)
}

// PriceNotConfiguredError is returned when an item has neither a fixed tier
// price nor any usable cost source. The caller decides whether to block the
// sale or require manual price entry.
type PriceNotConfiguredError struct {
	ItemID uuid.UUID
	Tier   catalog.Tier
}

// Error implements the error interface
func (e *PriceNotConfiguredError) Error() string {
	return fmt.Sprintf("no price configured for item %s at tier %s", e.ItemID, e.Tier)
}

// Defaults holds company-level pricing defaults, resolved once and passed
// explicitly into the resolver rather than read from ambient configuration.
type Defaults struct {
	MarkupPercent decimal.Decimal
	RoundingRule  catalog.RoundingRule
}

// effectiveMarkup returns the item's markup, falling back to the company default
func (d Defaults) effectiveMarkup(item *catalog.Item) decimal.Decimal {
	if item.MarkupPercent.IsPositive() {
		return item.MarkupPercent
	}
	return d.MarkupPercent
}

// effectiveRounding returns the item's rounding rule, falling back to the
// company default
func (d Defaults) effectiveRounding(item *catalog.Item) catalog.RoundingRule {
	if item.RoundingRule != "" {
		return item.RoundingRule
	}
	return d.RoundingRule
}
