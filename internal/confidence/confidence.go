// Package confidence grades an extracted record with additive sanity checks.
package confidence

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/JaimeStill/waybill/internal/extraction"
)

// Score bounds.
const (
	MinScore = 5
	MaxScore = 100
)

// Result is the graded confidence of a record.
type Result struct {
	Score    int      `json:"score"`
	Warnings []string `json:"warnings"`
}

type check struct {
	points  int
	warning string
	pass    func(*extraction.Record) bool
}

var reShipmentNo = regexp.MustCompile(`^\d{6,}$`)

var checks = []check{
	{20, "shipment number missing or malformed", func(r *extraction.Record) bool {
		return reShipmentNo.MatchString(strings.TrimSpace(r.ShipmentNo))
	}},
	{5, "order number missing", func(r *extraction.Record) bool {
		return strings.TrimSpace(r.OrderNo) != ""
	}},
	{5, "customer number missing", func(r *extraction.Record) bool {
		return strings.TrimSpace(r.CustomerNo) != ""
	}},
	{10, "shipment date missing or unparseable", func(r *extraction.Record) bool {
		_, ok := extraction.ParseDate(r.ShipmentDate)
		return ok
	}},
	{5, "delivery date missing or unparseable", func(r *extraction.Record) bool {
		_, ok := extraction.ParseDate(r.DeliveryDate)
		return ok
	}},
	{10, "shipper address incomplete", func(r *extraction.Record) bool {
		return r.Shipper().Lines() >= 2
	}},
	{10, "consignee address incomplete", func(r *extraction.Record) bool {
		return r.Consignee().Lines() >= 2
	}},
	{5, "shipping point address incomplete", func(r *extraction.Record) bool {
		return r.ShippingPoint().Lines() >= 2
	}},
	{15, "no line items found", func(r *extraction.Record) bool {
		return len(r.Items) > 0
	}},
	{10, "totals missing", func(r *extraction.Record) bool {
		return r.TotalNetKg != nil && r.TotalPkgs != nil && r.TotalGrossKg != nil
	}},
	{10, "totals inconsistent: gross weight below net weight", func(r *extraction.Record) bool {
		return r.TotalNetKg != nil && r.TotalGrossKg != nil && *r.TotalGrossKg >= *r.TotalNetKg
	}},
}

// Evaluate runs every check against rec. Each pass adds its points and each
// failure appends its warning; the sum is clamped to [MinScore, MaxScore].
// The result depends only on rec.
func Evaluate(rec extraction.Record) Result {
	score := 0
	warnings := make([]string, 0)

	for _, c := range checks {
		if c.pass(&rec) {
			score += c.points
			continue
		}
		warnings = append(warnings, c.warning)
	}

	if w, ok := itemDrift(&rec); ok {
		warnings = append(warnings, w)
	}

	return Result{
		Score:    min(max(score, MinScore), MaxScore),
		Warnings: warnings,
	}
}

// Apply evaluates rec and stores the score and warnings on it.
func Apply(rec *extraction.Record) Result {
	result := Evaluate(*rec)
	rec.Confidence = result.Score
	rec.Warnings = result.Warnings
	return result
}

// itemDrift reports when summed item net weights deviate from the net
// total by more than one percent. Informational only.
func itemDrift(r *extraction.Record) (string, bool) {
	if r.TotalNetKg == nil || *r.TotalNetKg <= 0 || len(r.Items) == 0 {
		return "", false
	}

	var sum float64
	for _, item := range r.Items {
		if item.NetWeight == nil {
			return "", false
		}
		sum += *item.NetWeight
	}

	if math.Abs(sum-*r.TotalNetKg)/(*r.TotalNetKg) <= 0.01 {
		return "", false
	}

	return fmt.Sprintf("item net weights sum to %.2f kg, total states %.2f kg", sum, *r.TotalNetKg), true
}
