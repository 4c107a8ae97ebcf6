package shipments

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/pkg/pagination"
)

// System defines the public contract for shipment domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Shipment], error)

	Find(ctx context.Context, id uuid.UUID) (*Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Export returns every shipment matching filters with its items,
	// newest first.
	Export(ctx context.Context, filters Filters) ([]Shipment, error)
}
