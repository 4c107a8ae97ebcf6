// Package shipments implements the committed shipment domain. A shipment
// is created only by freezing a draft and is never edited afterwards; the
// package serves queries, deletion and tabular export over them.
package shipments

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// Shipment is a committed copy of a frozen draft's record.
type Shipment struct {
	ID          uuid.UUID `json:"id"`
	DraftID     uuid.UUID `json:"draft_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	extraction.Record
}

// FromRecord builds the shipment committed for a draft. The record lists
// are copied so later edits to rec do not reach the shipment.
func FromRecord(draftID uuid.UUID, fingerprint string, rec extraction.Record) *Shipment {
	rec.Normalize()
	rec.Items = append([]extraction.LineItem{}, rec.Items...)
	rec.Warnings = append([]string{}, rec.Warnings...)
	rec.Evidence = append([]extraction.Evidence{}, rec.Evidence...)

	return &Shipment{
		ID:          uuid.New(),
		DraftID:     draftID,
		Fingerprint: fingerprint,
		Record:      rec,
	}
}
