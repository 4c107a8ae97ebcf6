package shipments

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/pkg/query"
	"github.com/JaimeStill/waybill/pkg/repository"
)

// View names equal the column names so clients sort and filter by the same
// keys the JSON body carries.
var projection = newProjection()

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

var searchFields = []string{
	"shipment_no",
	"order_no",
	"customer_no",
	"carrier_name",
	"shipper_name",
	"consignee_name",
}

func newProjection() *query.ProjectionMap {
	p := query.
		NewProjectionMap("public", "shipments", "s").
		Project("id", "id").
		Project("draft_id", "draft_id").
		Project("fingerprint", "fingerprint")

	for _, f := range extraction.TextFields {
		p.Project(f.Name, f.Name)
	}

	return p.
		Project("total_net_kg", "total_net_kg").
		Project("total_pkgs", "total_pkgs").
		Project("total_gross_kg", "total_gross_kg").
		Project("confidence", "confidence").
		Project("warnings", "warnings").
		Project("evidence", "evidence").
		Project("created_at", "created_at")
}

// Filters contains optional filtering criteria for shipment queries.
// Nil fields are ignored. ShipmentNo, OrderNo, CustomerNo and Fingerprint
// match exactly; party and carrier names use case-insensitive contains.
// MinConfidence and the created range are inclusive.
type Filters struct {
	ShipmentNo    *string    `json:"shipment_no,omitempty"`
	OrderNo       *string    `json:"order_no,omitempty"`
	CustomerNo    *string    `json:"customer_no,omitempty"`
	Fingerprint   *string    `json:"fingerprint,omitempty"`
	CarrierName   *string    `json:"carrier_name,omitempty"`
	ShipperName   *string    `json:"shipper_name,omitempty"`
	ConsigneeName *string    `json:"consignee_name,omitempty"`
	MinConfidence *int       `json:"min_confidence,omitempty"`
	CreatedFrom   *time.Time `json:"created_from,omitempty"`
	CreatedTo     *time.Time `json:"created_to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("shipment_no", f.ShipmentNo).
		WhereEquals("order_no", f.OrderNo).
		WhereEquals("customer_no", f.CustomerNo).
		WhereEquals("fingerprint", f.Fingerprint).
		WhereContains("carrier_name", f.CarrierName).
		WhereContains("shipper_name", f.ShipperName).
		WhereContains("consignee_name", f.ConsigneeName).
		WhereRange("confidence", f.MinConfidence, nil).
		WhereRange("created_at", f.CreatedFrom, f.CreatedTo)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable numeric and time values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	str := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}

	f.ShipmentNo = str("shipment_no")
	f.OrderNo = str("order_no")
	f.CustomerNo = str("customer_no")
	f.Fingerprint = str("fingerprint")
	f.CarrierName = str("carrier_name")
	f.ShipperName = str("shipper_name")
	f.ConsigneeName = str("consignee_name")

	if mc := values.Get("min_confidence"); mc != "" {
		if v, err := strconv.Atoi(mc); err == nil {
			f.MinConfidence = &v
		}
	}

	f.CreatedFrom = parseTime(values.Get("created_from"))
	f.CreatedTo = parseTime(values.Get("created_to"))

	return f
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func scanShipment(s repository.Scanner) (Shipment, error) {
	var (
		sh       Shipment
		warnings []byte
		evidence []byte
	)

	dest := []any{&sh.ID, &sh.DraftID, &sh.Fingerprint}
	for _, f := range extraction.TextFields {
		dest = append(dest, f.Ref(&sh.Record))
	}
	dest = append(dest,
		&sh.TotalNetKg,
		&sh.TotalPkgs,
		&sh.TotalGrossKg,
		&sh.Confidence,
		&warnings,
		&evidence,
		&sh.CreatedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return sh, err
	}

	if err := unmarshalList(warnings, &sh.Warnings); err != nil {
		return sh, fmt.Errorf("decode warnings: %w", err)
	}
	if err := unmarshalList(evidence, &sh.Evidence); err != nil {
		return sh, fmt.Errorf("decode evidence: %w", err)
	}

	sh.Normalize()
	return sh, nil
}

func unmarshalList(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func scanItem(s repository.Scanner) (extraction.LineItem, error) {
	var it extraction.LineItem
	err := s.Scan(
		&it.ProductName,
		&it.NetWeight,
		&it.GrossWeight,
		&it.PackageCount,
		&it.PackagingDescription,
		&it.PalletCount,
	)
	return it, err
}
