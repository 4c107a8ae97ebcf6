package drafts

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/waybill/pkg/query"
	"github.com/JaimeStill/waybill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "drafts", "d").
	Project("id", "ID").
	Project("fingerprint", "Fingerprint").
	Project("version_no", "VersionNo").
	Project("status", "Status").
	Project("data", "Data").
	Project("shipment_id", "ShipmentID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

var versionSort = query.SortField{
	Field:      "VersionNo",
	Descending: true,
}

const commentColumns = "id, draft_id, field_name, message, author, created_at"

// Filters contains optional filtering criteria for draft queries.
// Nil fields are ignored. Both fields use exact matching.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	Fingerprint *string `json:"fingerprint,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Fingerprint", f.Fingerprint)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if fp := values.Get("fingerprint"); fp != "" {
		f.Fingerprint = &fp
	}

	return f
}

func scanDraft(s repository.Scanner) (Draft, error) {
	var (
		d    Draft
		data []byte
	)

	err := s.Scan(
		&d.ID,
		&d.Fingerprint,
		&d.VersionNo,
		&d.Status,
		&data,
		&d.ShipmentID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	if err := json.Unmarshal(data, &d.Data); err != nil {
		return d, fmt.Errorf("decode draft data: %w", err)
	}
	d.Data.Normalize()

	return d, nil
}

func scanComment(s repository.Scanner) (Comment, error) {
	var c Comment
	err := s.Scan(
		&c.ID,
		&c.DraftID,
		&c.FieldName,
		&c.Message,
		&c.Author,
		&c.CreatedAt,
	)
	return c, err
}
