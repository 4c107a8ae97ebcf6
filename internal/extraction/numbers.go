package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number is the locale number token: dot thousands separators and a comma
// decimal, as in "24.500,75".
const Number = `\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d+(?:,\d+)?`

var reNumber = regexp.MustCompile(Number)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseLocaleNumber parses the first locale number token in s. Thousands
// dots are stripped and the decimal comma becomes a point, so
// "24.500,75 KG" yields 24500.75.
func ParseLocaleNumber(s string) (float64, bool) {
	token := reNumber.FindString(s)
	if token == "" {
		return 0, false
	}

	token = strings.ReplaceAll(token, ".", "")
	token = strings.Replace(token, ",", ".", 1)

	d, err := decimal.NewFromString(token)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseDate parses the date formats found on shipment documents.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
