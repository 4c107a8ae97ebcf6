package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// Window bounds for NearLabel lookahead.
const (
	MinWindow = 80
	MaxWindow = 140
)

var (
	reEmailSpacing = regexp.MustCompile(`[ \t]*([@.])[ \t]*`)
	reEmail        = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)
)

// ClampWindow bounds a lookahead width to [MinWindow, MaxWindow].
func ClampWindow(window int) int {
	return min(max(window, MinWindow), MaxWindow)
}

// NearLabel finds each match of label in text and searches the window
// characters following it for value. The first capture group of the first
// value match is returned, or the whole match when value has no groups.
// Returns "" when no label is followed by a value.
func NearLabel(text string, label, value *regexp.Regexp, window int) string {
	return nearLabel(text, label, value, window, nil)
}

// NearEmail is NearLabel for email addresses. Whitespace around '@' and '.'
// inside the window is removed before matching.
func NearEmail(text string, label *regexp.Regexp, window int) string {
	return nearLabel(text, label, reEmail, window, ScrubEmail)
}

func nearLabel(text string, label, value *regexp.Regexp, window int, prep func(string) string) string {
	window = ClampWindow(window)

	for _, loc := range label.FindAllStringIndex(text, -1) {
		end := min(loc[1]+window, len(text))
		segment := text[loc[1]:end]
		if prep != nil {
			segment = prep(segment)
		}

		m := value.FindStringSubmatch(segment)
		if m == nil {
			continue
		}

		for _, group := range m[1:] {
			if v := strings.TrimSpace(group); v != "" {
				return v
			}
		}
		if v := strings.TrimSpace(m[0]); v != "" {
			return v
		}
	}

	return ""
}

// BlockAfterLabel collects the lines that follow the first match of label:
// the remainder of the label line when non-blank, then each following line.
// Leading blank lines are skipped. Collection stops at a blank line, at a
// line matching any stop pattern, or after maxLines lines.
func BlockAfterLabel(text string, label *regexp.Regexp, stops []*regexp.Regexp, maxLines int) []string {
	loc := label.FindStringIndex(text)
	if loc == nil || maxLines <= 0 {
		return nil
	}

	lines := strings.Split(text[loc[1]:], "\n")
	block := make([]string, 0, maxLines)

	if first := strings.TrimSpace(strings.TrimLeft(lines[0], ": \t")); first != "" && !matchesAny(first, stops) {
		block = append(block, first)
	}

	for _, line := range lines[1:] {
		if len(block) >= maxLines {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if len(block) == 0 {
				continue
			}
			break
		}
		if matchesAny(line, stops) {
			break
		}

		block = append(block, line)
	}

	return block
}

// Section returns the text between the end of the first label match and the
// nearest following match of any end pattern. Returns "" when label is absent.
func Section(text string, label *regexp.Regexp, ends []*regexp.Regexp) string {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	cut := len(rest)
	for _, end := range ends {
		if m := end.FindStringIndex(rest); m != nil && m[0] < cut {
			cut = m[0]
		}
	}

	return rest[:cut]
}

// ScrubEmail removes spaces and tabs around '@' and '.' so that OCR output
// such as "info @ acme . de" reads "info@acme.de".
func ScrubEmail(s string) string {
	return reEmailSpacing.ReplaceAllString(s, "$1")
}

// DistinctPhone returns candidate unless its digits equal the digits of any
// of others, in which case it returns "".
func DistinctPhone(candidate string, others ...string) string {
	digits := Digits(candidate)
	if digits == "" {
		return ""
	}
	for _, other := range others {
		if other != "" && Digits(other) == digits {
			return ""
		}
	}
	return candidate
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
