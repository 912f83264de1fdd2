package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/pharmacore/backend/internal/domain/shared"
)

// ItemRepository provides read access to item reference data. The ledger
// engine never writes items; they are maintained by the item-management
// module.
type ItemRepository interface {
	// FindByID loads an item with its named units preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByCompany lists items for a company
	FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Item, error)
}
