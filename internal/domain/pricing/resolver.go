package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/catalog"
	"github.com/pharmacore/backend/internal/domain/shared"
)

var oneHundred = decimal.NewFromInt(100)

// QuoteOptions carries per-quote inputs to the price waterfall
type QuoteOptions struct {
	// BatchUnitCost is the base-unit cost of the batch selected by the
	// allocator for this sale, when known at quote time. It takes priority
	// over the item's last purchase cost and default cost.
	BatchUnitCost *decimal.Decimal
	// AllowBelowMargin permits the computed price to fall below the item's
	// margin floor. Without it the price is raised to the floor.
	AllowBelowMargin bool
}

// PriceResolver resolves a unit price and VAT for an item, tier, and unit.
//
// Resolution order:
//  1. fixed tier price, pro-rated to the requested unit;
//  2. cost-plus-markup from the cost waterfall (allocated batch cost, last
//     purchase cost, configured default cost), then the rounding rule;
//  3. the min-margin floor, unless explicitly overridden.
type PriceResolver struct {
	converter *catalog.ConversionResolver
	defaults  Defaults
}

// NewPriceResolver creates a resolver with company-level pricing defaults
func NewPriceResolver(converter *catalog.ConversionResolver, defaults Defaults) *PriceResolver {
	return &PriceResolver{
		converter: converter,
		defaults:  defaults,
	}
}

// Quote resolves the unit price and VAT for the requested quantity.
// The returned quote carries a value copy of the item's VAT rate; later
// changes to the item never re-price recorded lines.
func (r *PriceResolver) Quote(
	item *catalog.Item,
	tier catalog.Tier,
	unitName string,
	quantity decimal.Decimal,
	opts QuoteOptions,
) (*PriceQuote, error) {
	if !tier.IsValid() {
		return nil, shared.NewDomainError("INVALID_TIER", "Unrecognized pricing tier")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	requestedMult, err := r.converter.ToBaseUnits(item, unitName, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}

	costPerBase, hasCost := r.resolveCost(item, opts)

	unitPrice, source, err := r.resolveUnitPrice(item, tier, requestedMult, costPerBase, hasCost)
	if err != nil {
		return nil, err
	}

	// Margin floor relative to cost. Skipped when no cost source exists,
	// since the floor cannot be computed.
	if hasCost && item.MinMarginPercent.IsPositive() && !opts.AllowBelowMargin {
		floor := costPerBase.Mul(requestedMult).
			Mul(oneHundred.Add(item.MinMarginPercent)).Div(oneHundred)
		if unitPrice.LessThan(floor) {
			unitPrice = floor
		}
	}

	lineTotal := unitPrice.Mul(quantity)
	vatRate := item.EffectiveVATRate()
	vatAmount := lineTotal.Mul(vatRate).Div(oneHundred)

	return &PriceQuote{
		UnitPrice: unitPrice,
		UnitName:  unitName,
		Quantity:  quantity,
		LineTotal: lineTotal,
		VATRate:   vatRate,
		VATAmount: vatAmount,
		Source:    source,
		Tier:      tier,
	}, nil
}

// resolveUnitPrice runs steps 1 and 2 of the waterfall
func (r *PriceResolver) resolveUnitPrice(
	item *catalog.Item,
	tier catalog.Tier,
	requestedMult decimal.Decimal,
	costPerBase decimal.Decimal,
	hasCost bool,
) (decimal.Decimal, PriceSource, error) {
	if item.HasFixedTierPrice(tier) {
		tierPrice := item.FixedTierPrice(tier)
		nativeMult, err := r.converter.ToBaseUnits(item, item.UnitForTier(tier), decimal.NewFromInt(1))
		if err != nil {
			return decimal.Zero, "", err
		}
		// Pro-rate when the requested unit differs from the tier's native unit
		unitPrice := tierPrice.Mul(requestedMult).Div(nativeMult)
		return unitPrice, PriceSourceTier, nil
	}

	if !hasCost {
		return decimal.Zero, "", &PriceNotConfiguredError{ItemID: item.ID, Tier: tier}
	}

	markup := r.defaults.effectiveMarkup(item)
	unitPrice := costPerBase.Mul(requestedMult).
		Mul(oneHundred.Add(markup)).Div(oneHundred)
	unitPrice = applyRounding(unitPrice, r.defaults.effectiveRounding(item))
	return unitPrice, PriceSourceCostPlusMarkup, nil
}

// resolveCost runs the cost waterfall: allocated batch cost, then last
// purchase cost, then the configured default cost.
func (r *PriceResolver) resolveCost(item *catalog.Item, opts QuoteOptions) (decimal.Decimal, bool) {
	if opts.BatchUnitCost != nil && opts.BatchUnitCost.IsPositive() {
		return *opts.BatchUnitCost, true
	}
	if item.LastPurchaseUnitCost.IsPositive() {
		return item.LastPurchaseUnitCost, true
	}
	if item.DefaultUnitCost.IsPositive() {
		return item.DefaultUnitCost, true
	}
	return decimal.Zero, false
}

// applyRounding rounds a price to the nearest multiple dictated by the rule.
// Exact halves round up, the conventional choice for retail currency.
func applyRounding(price decimal.Decimal, rule catalog.RoundingRule) decimal.Decimal {
	multiple := rule.Multiple()
	if multiple.IsZero() {
		return price
	}
	// Round half away from zero; prices are non-negative so this is half-up
	return price.Div(multiple).Round(0).Mul(multiple)
}
