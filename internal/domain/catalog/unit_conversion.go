package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownUnitError is returned when a unit name cannot be resolved for an item
type UnknownUnitError struct {
	ItemID uuid.UUID
	Unit   string
}

// Error implements the error interface
func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q for item %s", e.Unit, e.ItemID)
}

// ConversionResolver translates quantities between an item's named units and
// base (retail) units. All ledger quantities are stored in base units; this
// resolver is the only place unit multipliers are interpreted.
type ConversionResolver struct{}

// NewConversionResolver creates a new ConversionResolver
func NewConversionResolver() *ConversionResolver {
	return &ConversionResolver{}
}

// multiplier resolves the multiplier-to-base for a unit name.
// Resolution order: retail unit (x1), wholesale/supplier unit (x pack size),
// then the item's named-unit table.
func (r *ConversionResolver) multiplier(item *Item, unitName string) (decimal.Decimal, error) {
	name := strings.TrimSpace(unitName)

	if strings.EqualFold(name, item.RetailUnit) {
		return decimal.NewFromInt(1), nil
	}
	if strings.EqualFold(name, item.WholesaleUnit) || strings.EqualFold(name, item.SupplierUnit) {
		return decimal.NewFromInt(item.PackSize), nil
	}
	for _, u := range item.Units {
		if strings.EqualFold(name, u.UnitName) {
			return u.MultiplierToBase, nil
		}
	}
	return decimal.Zero, &UnknownUnitError{ItemID: item.ID, Unit: name}
}

// ToBaseUnits converts a quantity expressed in unitName to base (retail) units
func (r *ConversionResolver) ToBaseUnits(item *Item, unitName string, quantity decimal.Decimal) (decimal.Decimal, error) {
	m, err := r.multiplier(item, unitName)
	if err != nil {
		return decimal.Zero, err
	}
	return quantity.Mul(m), nil
}

// FromBaseUnits converts a base-unit quantity into unitName
func (r *ConversionResolver) FromBaseUnits(item *Item, unitName string, baseQuantity decimal.Decimal) (decimal.Decimal, error) {
	m, err := r.multiplier(item, unitName)
	if err != nil {
		return decimal.Zero, err
	}
	return baseQuantity.Div(m), nil
}

// StockDisplay renders a base-unit total as a human label using the item's
// supplier and retail units, e.g. "5 packet + 7 tablet" for 157 tablets with
// a pack size of 30.
func (r *ConversionResolver) StockDisplay(item *Item, totalBase decimal.Decimal) string {
	pack := decimal.NewFromInt(item.PackSize)
	full := totalBase.Div(pack).Floor()
	remainder := totalBase.Sub(full.Mul(pack))

	switch {
	case full.IsPositive() && !remainder.IsZero():
		return fmt.Sprintf("%s %s + %s %s", full, item.SupplierUnit, remainder, item.RetailUnit)
	case full.IsPositive():
		return fmt.Sprintf("%s %s (%s %s)", full, item.SupplierUnit, totalBase, item.RetailUnit)
	default:
		return fmt.Sprintf("%s %s", totalBase, item.RetailUnit)
	}
}
