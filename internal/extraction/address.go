package extraction

import (
	"regexp"
	"strings"
)

var (
	reAlphaOnly   = regexp.MustCompile(`^[\p{L}][\p{L} .'\-]*$`)
	rePostalCity  = regexp.MustCompile(`^((?:[A-Z]{1,2}-)?\d{4,5})\s+(.+)$`)
	reSubLabel    = regexp.MustCompile(`(?i)^(name|company|street|address|postal\s*code|postal|post\s*code|zip(?:\s*code)?|city|town|country)\s*:\s*(.*)$`)
	reContactLine = regexp.MustCompile(`(?i)^(?:phone|tel|telephone|fax|mobile|e-?mail)\b`)
)

// Address is a postal address split into its parts.
type Address struct {
	Street  string `json:"street"`
	Postal  string `json:"postal"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Lines counts the non-empty address lines: street, postal/city and country.
func (a Address) Lines() int {
	n := 0
	if strings.TrimSpace(a.Street) != "" {
		n++
	}
	if strings.TrimSpace(a.Postal) != "" || strings.TrimSpace(a.City) != "" {
		n++
	}
	if strings.TrimSpace(a.Country) != "" {
		n++
	}
	return n
}

// Party is a named party block: a name line followed by its address.
type Party struct {
	Name string
	Address
}

// SplitAddress splits unlabeled address lines. When the last line is
// alphabetic only it is the country and the line before it is tested as
// "<postal> <city>"; otherwise the last line itself is tested as
// "<postal> <city>". Remaining lines join as the street.
func SplitAddress(lines []string) Address {
	lines = compact(lines)
	var a Address
	if len(lines) == 0 {
		return a
	}

	last := len(lines) - 1
	if reAlphaOnly.MatchString(lines[last]) {
		a.Country = lines[last]
		lines = lines[:last]
		last--
	}

	if last >= 0 {
		if m := rePostalCity.FindStringSubmatch(lines[last]); m != nil {
			a.Postal = m[1]
			a.City = strings.TrimSpace(m[2])
			lines = lines[:last]
		}
	}

	a.Street = strings.Join(lines, ", ")
	return a
}

// LabeledBlock reads Street, Postal, City and Country sub-labels line by
// line. A block without any sub-label falls back to SplitAddress.
func LabeledBlock(lines []string) Address {
	a, _, ok := labeled(lines)
	if !ok {
		return SplitAddress(lines)
	}
	return a
}

// ParseParty reads a party block. A labeled block takes its name from a
// Name or Company sub-label; an unlabeled block uses its first line as the
// name and splits the rest as an address. Contact lines are ignored.
func ParseParty(lines []string) Party {
	kept := make([]string, 0, len(lines))
	for _, line := range compact(lines) {
		if !reContactLine.MatchString(line) {
			kept = append(kept, line)
		}
	}

	if a, name, ok := labeled(kept); ok {
		return Party{Name: name, Address: a}
	}

	if len(kept) == 0 {
		return Party{}
	}

	return Party{
		Name:    kept[0],
		Address: SplitAddress(kept[1:]),
	}
}

func labeled(lines []string) (Address, string, bool) {
	var (
		a     Address
		name  string
		found bool
	)

	for _, line := range lines {
		m := reSubLabel.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		found = true
		value := strings.TrimSpace(m[2])

		switch key := strings.ToLower(strings.Join(strings.Fields(m[1]), " ")); key {
		case "name", "company":
			name = value
		case "street", "address":
			a.Street = joinNonEmpty(a.Street, value)
		case "city", "town":
			a.City = value
		case "country":
			a.Country = value
		default:
			a.Postal = value
		}
	}

	return a, name, found
}

func compact(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ", " + b
	}
}
