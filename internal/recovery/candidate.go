// Package recovery produces raw text candidates from a shipment PDF using
// independent strategies and ranks them by how much they read like a
// shipment document.
package recovery

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Source identifies the strategy that produced a candidate. Sources are
// ordered; the order breaks score ties.
type Source string

const (
	SourceEmbedded Source = "embedded-text"
	SourceLayout   Source = "layout-text"
	SourceOCR      Source = "ocr-text"
)

// Sources lists every source in tie-break order.
var Sources = []Source{SourceEmbedded, SourceLayout, SourceOCR}

// Candidate is the text one strategy recovered.
type Candidate struct {
	Source Source `json:"source"`
	Text   string `json:"text"`
}

// Keywords is the anchor vocabulary counted by Score.
var Keywords = []string{
	"shipment", "delivery", "consignee", "shipper", "carrier",
	"customer", "order", "gross", "net", "weight",
	"total", "pallet", "packaging", "incoterms", "shipping point",
}

var (
	reLongDigits = regexp.MustCompile(`\b\d{6,}\b`)
	reDateToken  = regexp.MustCompile(`\b\d{1,2}[./\-]\d{1,2}[./\-]\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)
)

// Score rates text by document likeness:
// 10 per keyword found, plus up to 20 for long digit runs, up to 10 for
// date tokens and up to 20 for length at one point per 2000 characters.
func Score(text string) int {
	lower := strings.ToLower(text)

	keywords := 0
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			keywords++
		}
	}

	digits := len(reLongDigits.FindAllStringIndex(text, -1))
	dates := len(reDateToken.FindAllStringIndex(text, -1))
	length := utf8.RuneCountInString(text) / 2000

	return 10*keywords + min(20, digits) + min(10, dates) + min(20, length)
}

// Select returns the highest scoring candidate and its score. Ties keep the
// earlier candidate, so callers pass candidates in source order.
// ok is false when candidates is empty.
func Select(candidates []Candidate) (best Candidate, score int, ok bool) {
	for i, c := range candidates {
		s := Score(c.Text)
		if i == 0 || s > score {
			best, score = c, s
		}
	}
	return best, score, len(candidates) > 0
}
