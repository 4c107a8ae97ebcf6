package shipments

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// Export formats accepted by the export endpoint.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	shipmentsSheet = "Shipments"
	itemsSheet     = "Items"
)

var itemHeaders = []string{
	"shipment_id",
	"position",
	"product_name",
	"net_weight",
	"gross_weight",
	"package_count",
	"packaging_description",
	"pallet_count",
}

// ContentType returns the response content type of an export format.
func ContentType(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return "", ErrInvalidFormat
}

// Write renders shipments to w in the given format.
func Write(w io.Writer, format string, shipments []Shipment) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, shipments)
	case FormatXLSX:
		return WriteXLSX(w, shipments)
	}
	return ErrInvalidFormat
}

func shipmentHeaders() []string {
	h := []string{"id", "draft_id", "fingerprint"}
	for _, f := range extraction.TextFields {
		h = append(h, f.Name)
	}
	return append(h,
		"total_net_kg",
		"total_pkgs",
		"total_gross_kg",
		"item_count",
		"confidence",
		"warnings",
		"created_at",
	)
}

func shipmentRow(s *Shipment) []any {
	row := []any{s.ID.String(), s.DraftID.String(), s.Fingerprint}
	for _, f := range extraction.TextFields {
		row = append(row, *f.Ref(&s.Record))
	}
	return append(row,
		floatCell(s.TotalNetKg),
		intCell(s.TotalPkgs),
		floatCell(s.TotalGrossKg),
		len(s.Items),
		s.Confidence,
		strings.Join(s.Warnings, "; "),
		s.CreatedAt.UTC().Format(time.RFC3339),
	)
}

func itemRow(s *Shipment, i int) []any {
	it := s.Items[i]
	return []any{
		s.ID.String(),
		i + 1,
		it.ProductName,
		floatCell(it.NetWeight),
		floatCell(it.GrossWeight),
		intCell(it.PackageCount),
		it.PackagingDescription,
		intCell(it.PalletCount),
	}
}

// floatCell and intCell return "" for missing values so blank cells stay
// distinguishable from zero.
func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// WriteCSV writes one row per shipment, headed by the column names.
func WriteCSV(w io.Writer, shipments []Shipment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(shipmentHeaders()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range shipments {
		cells := shipmentRow(&shipments[i])
		record := make([]string, len(cells))
		for j, c := range cells {
			record[j] = csvValue(c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// WriteXLSX writes a workbook with a Shipments sheet holding one row per
// shipment and an Items sheet holding one row per line item.
func WriteXLSX(w io.Writer, shipments []Shipment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), shipmentsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, shipmentsSheet, 1, toAny(shipmentHeaders())); err != nil {
		return err
	}
	if err := writeRow(f, itemsSheet, 1, toAny(itemHeaders)); err != nil {
		return err
	}

	itemRowNo := 2
	for i := range shipments {
		s := &shipments[i]
		if err := writeRow(f, shipmentsSheet, i+2, shipmentRow(s)); err != nil {
			return err
		}
		for j := range s.Items {
			if err := writeRow(f, itemsSheet, itemRowNo, itemRow(s, j)); err != nil {
				return err
			}
			itemRowNo++
		}
	}

	if err := f.SetColWidth(shipmentsSheet, "A", "C", 38); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for col, v := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
