package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// Patch is a reconciliation response. Nil values mean the service had no
// value for the field.
type Patch struct {
	Text         map[string]*string
	TotalNetKg   *float64
	TotalPkgs    *int
	TotalGrossKg *float64
	Items        []extraction.LineItem
	Evidence     []extraction.Evidence
}

// UnmarshalJSON reads the record-shaped response body.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Text = make(map[string]*string, len(extraction.TextFields))
	for _, f := range extraction.TextFields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		p.Text[f.Name] = s
	}

	if err := decodeOptional(raw, "total_net_kg", &p.TotalNetKg); err != nil {
		return err
	}
	if err := decodeOptional(raw, "total_gross_kg", &p.TotalGrossKg); err != nil {
		return err
	}

	var pkgs *float64
	if err := decodeOptional(raw, "total_pkgs", &pkgs); err != nil {
		return err
	}
	if pkgs != nil {
		n := int(math.Round(*pkgs))
		p.TotalPkgs = &n
	}

	if err := decodeOptional(raw, "items", &p.Items); err != nil {
		return err
	}
	return decodeOptional(raw, "evidence", &p.Evidence)
}

func decodeOptional(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// Merge applies patch over seed. A string field is replaced only by a
// non-blank value, a numeric field only by a non-nil value, and the item
// list only by a non-empty list. Patch evidence is attached.
func Merge(seed extraction.Record, patch *Patch) extraction.Record {
	out := seed
	out.Normalize()
	if patch == nil {
		return out
	}

	for _, f := range extraction.TextFields {
		v := patch.Text[f.Name]
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			*f.Ref(&out) = s
		}
	}

	if patch.TotalNetKg != nil {
		out.TotalNetKg = patch.TotalNetKg
	}
	if patch.TotalPkgs != nil {
		out.TotalPkgs = patch.TotalPkgs
	}
	if patch.TotalGrossKg != nil {
		out.TotalGrossKg = patch.TotalGrossKg
	}

	if len(patch.Items) > 0 {
		out.Items = append([]extraction.LineItem(nil), patch.Items...)
	}
	if len(patch.Evidence) > 0 {
		out.Evidence = append([]extraction.Evidence(nil), patch.Evidence...)
	}

	return out
}
