package drafts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/pagination"
)

// Repository is the persistence boundary of the draft lifecycle.
// Find and Lock return ErrNotFound for unknown ids; Insert returns
// ErrDuplicate when the (fingerprint, version_no) pair exists.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (*Draft, error)
	// FindByFingerprint returns the highest version for fingerprint.
	FindByFingerprint(ctx context.Context, fingerprint string) (*Draft, error)
	// Lock reads a draft and holds it against concurrent writers until the
	// enclosing Atomic call returns.
	Lock(ctx context.Context, id uuid.UUID) (*Draft, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Draft], error)

	Insert(ctx context.Context, d *Draft) error
	UpdateData(ctx context.Context, id uuid.UUID, rec extraction.Record) (*Draft, error)

	InsertComment(ctx context.Context, c *Comment) error
	Comments(ctx context.Context, draftID uuid.UUID) ([]Comment, error)

	// CreateShipment commits the draft's record and returns the shipment id.
	CreateShipment(ctx context.Context, d *Draft) (uuid.UUID, error)
	MarkFrozen(ctx context.Context, id uuid.UUID, shipmentID uuid.UUID) error

	// Atomic runs fn against a Repository bound to a single transaction.
	// Any error from fn rolls every write back.
	Atomic(ctx context.Context, fn func(Repository) error) error
}
