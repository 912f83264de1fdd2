package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmacore/backend/internal/domain/shared"
)

// Tier represents a packaging/pricing tier of an item
type Tier string

const (
	// TierSupplier is the purchasing tier (e.g. a carton of 30 tablets)
	TierSupplier Tier = "SUPPLIER"
	// TierWholesale is the bulk selling tier
	TierWholesale Tier = "WHOLESALE"
	// TierRetail is the single-unit selling tier (= base unit)
	TierRetail Tier = "RETAIL"
)

// String returns the string representation of Tier
func (t Tier) String() string {
	return string(t)
}

// IsValid returns true if the tier is a recognized value
func (t Tier) IsValid() bool {
	switch t {
	case TierSupplier, TierWholesale, TierRetail:
		return true
	}
	return false
}

// RoundingRule controls how a computed cost-plus-markup price is rounded
type RoundingRule string

const (
	RoundingNone      RoundingRule = "NONE"
	RoundingNearest1  RoundingRule = "NEAREST_1"
	RoundingNearest5  RoundingRule = "NEAREST_5"
	RoundingNearest10 RoundingRule = "NEAREST_10"
)

// IsValid returns true if the rounding rule is a recognized value
func (r RoundingRule) IsValid() bool {
	switch r {
	case RoundingNone, RoundingNearest1, RoundingNearest5, RoundingNearest10:
		return true
	}
	return false
}

// Multiple returns the rounding multiple for the rule, or zero for RoundingNone
func (r RoundingRule) Multiple() decimal.Decimal {
	switch r {
	case RoundingNearest1:
		return decimal.NewFromInt(1)
	case RoundingNearest5:
		return decimal.NewFromInt(5)
	case RoundingNearest10:
		return decimal.NewFromInt(10)
	}
	return decimal.Zero
}

// VATCategory classifies an item for VAT purposes
type VATCategory string

const (
	VATCategoryZeroRated VATCategory = "ZERO_RATED"
	VATCategoryStandard  VATCategory = "STANDARD"
	VATCategoryExempt    VATCategory = "EXEMPT"
)

// IsValid returns true if the VAT category is a recognized value
func (c VATCategory) IsValid() bool {
	switch c {
	case VATCategoryZeroRated, VATCategoryStandard, VATCategoryExempt:
		return true
	}
	return false
}

// Item holds the packaging and pricing reference data for a stocked product.
// It is owned by the item-management module and read-only from the ledger
// engine's point of view.
type Item struct {
	shared.BaseEntity
	CompanyID                     uuid.UUID       `gorm:"type:uuid;not null;index:idx_items_company"`
	Name                          string          `gorm:"type:varchar(255);not null"`
	SupplierUnit                  string          `gorm:"type:varchar(50);not null"`
	WholesaleUnit                 string          `gorm:"type:varchar(50);not null"`
	RetailUnit                    string          `gorm:"type:varchar(50);not null"` // base unit
	PackSize                      int64           `gorm:"not null;default:1"`        // retail units per supplier/wholesale unit
	CanBreakBulk                  bool            `gorm:"not null;default:true"`
	PurchasePricePerSupplierUnit  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WholesalePricePerWholesaleUnit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RetailPricePerRetailUnit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MarkupPercent                 decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	RoundingRule                  RoundingRule    `gorm:"type:varchar(20);not null;default:'NONE'"`
	MinMarginPercent              decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	VATRate                       decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	VATCategory                   VATCategory     `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	DefaultUnitCost               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LastPurchaseUnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive                      bool            `gorm:"not null;default:true"`
	Units                         []ItemUnit      `gorm:"foreignKey:ItemID"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// ItemUnit maps an arbitrary named unit of an item to its multiplier to base
// (retail) units, e.g. "strip" -> 10 tablets.
type ItemUnit struct {
	shared.BaseEntity
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_item_units_name,priority:1"`
	UnitName         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_item_units_name,priority:2"`
	MultiplierToBase decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ItemUnit) TableName() string {
	return "item_units"
}

// NewItem creates an item with validated packaging and pricing fields
func NewItem(companyID uuid.UUID, name, supplierUnit, wholesaleUnit, retailUnit string, packSize int64) (*Item, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if retailUnit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Retail unit cannot be empty")
	}
	if packSize < 1 {
		return nil, shared.NewDomainError("INVALID_PACK_SIZE", "Pack size must be at least 1")
	}

	return &Item{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     companyID,
		Name:          name,
		SupplierUnit:  supplierUnit,
		WholesaleUnit: wholesaleUnit,
		RetailUnit:    retailUnit,
		PackSize:      packSize,
		CanBreakBulk:  true,
		RoundingRule:  RoundingNone,
		VATCategory:   VATCategoryStandard,
		IsActive:      true,
	}, nil
}

// BaseUnit returns the base unit of the item (= retail unit)
func (i *Item) BaseUnit() string {
	return i.RetailUnit
}

// UnitForTier returns the native unit name of the given tier
func (i *Item) UnitForTier(tier Tier) string {
	switch tier {
	case TierSupplier:
		return i.SupplierUnit
	case TierWholesale:
		return i.WholesaleUnit
	default:
		return i.RetailUnit
	}
}

// FixedTierPrice returns the configured fixed price for the tier's native
// unit, or zero when no fixed price is configured for that tier.
func (i *Item) FixedTierPrice(tier Tier) decimal.Decimal {
	switch tier {
	case TierSupplier:
		return i.PurchasePricePerSupplierUnit
	case TierWholesale:
		return i.WholesalePricePerWholesaleUnit
	default:
		return i.RetailPricePerRetailUnit
	}
}

// HasFixedTierPrice returns true when a fixed price is configured for the tier
func (i *Item) HasFixedTierPrice(tier Tier) bool {
	return i.FixedTierPrice(tier).IsPositive()
}

// EffectiveVATRate returns the VAT rate to apply, forcing zero for
// zero-rated and exempt categories.
func (i *Item) EffectiveVATRate() decimal.Decimal {
	if i.VATCategory == VATCategoryZeroRated || i.VATCategory == VATCategoryExempt {
		return decimal.Zero
	}
	return i.VATRate
}

// Validate checks the item's packaging and pricing invariants
func (i *Item) Validate() error {
	if i.PackSize < 1 {
		return shared.NewDomainError("INVALID_PACK_SIZE", "Pack size must be at least 1")
	}
	for _, p := range []decimal.Decimal{
		i.PurchasePricePerSupplierUnit,
		i.WholesalePricePerWholesaleUnit,
		i.RetailPricePerRetailUnit,
		i.DefaultUnitCost,
		i.LastPurchaseUnitCost,
	} {
		if p.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
		}
	}
	if !i.RoundingRule.IsValid() {
		return shared.NewDomainError("INVALID_ROUNDING_RULE", "Unrecognized rounding rule")
	}
	if !i.VATCategory.IsValid() {
		return shared.NewDomainError("INVALID_VAT_CATEGORY", "Unrecognized VAT category")
	}
	return nil
}
