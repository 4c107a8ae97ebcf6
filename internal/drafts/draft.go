// Package drafts implements the review lifecycle of an extracted record.
// A draft is opened per document fingerprint, edited and commented while in
// draft status, and frozen exactly once into an immutable shipment.
package drafts

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// Status is the lifecycle state of a draft.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusFrozen Status = "frozen"
)

// Draft is the editable record of one document version.
type Draft struct {
	ID          uuid.UUID         `json:"id"`
	Fingerprint string            `json:"fingerprint"`
	VersionNo   int               `json:"version_no"`
	Status      Status            `json:"status"`
	Data        extraction.Record `json:"data"`
	ShipmentID  *uuid.UUID        `json:"shipment_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Frozen reports whether the draft has been committed.
func (d *Draft) Frozen() bool {
	return d.Status == StatusFrozen
}

// Comment is an advisory reviewer note on one field of a draft.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	DraftID   uuid.UUID `json:"draft_id"`
	FieldName string    `json:"field_name"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentCommand carries a new comment. An empty Author is replaced by the
// request identity, then by AnonymousAuthor.
type CommentCommand struct {
	FieldName string `json:"field_name"`
	Message   string `json:"message"`
	Author    string `json:"author,omitempty"`
}

// AnonymousAuthor is recorded when a comment has no author.
const AnonymousAuthor = "anonymous"

// Detail is a draft together with its comments, oldest first.
type Detail struct {
	Draft    Draft     `json:"draft"`
	Comments []Comment `json:"comments"`
}

// FreezeResult reports the shipment a freeze created.
type FreezeResult struct {
	DraftID    uuid.UUID `json:"draft_id"`
	ShipmentID uuid.UUID `json:"shipment_id"`
}
