package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Profile configures the template-specific anchors of a shipment document.
type Profile struct {
	Name            string `toml:"name"`
	ProductAnchor   string `toml:"product_anchor"`
	PackagingAnchor string `toml:"packaging_anchor"`
	LabelWindow     int    `toml:"label_window"`
	MaxBlockLines   int    `toml:"max_block_lines"`
}

// DefaultProfile is the single supported carrier template.
func DefaultProfile() Profile {
	return Profile{
		Name:            "default",
		ProductAnchor:   `Product`,
		PackagingAnchor: `Packaging|Packing`,
		LabelWindow:     120,
		MaxBlockLines:   6,
	}
}

// Merge overwrites non-zero fields from overlay.
func (p *Profile) Merge(overlay *Profile) {
	if overlay.Name != "" {
		p.Name = overlay.Name
	}
	if overlay.ProductAnchor != "" {
		p.ProductAnchor = overlay.ProductAnchor
	}
	if overlay.PackagingAnchor != "" {
		p.PackagingAnchor = overlay.PackagingAnchor
	}
	if overlay.LabelWindow != 0 {
		p.LabelWindow = overlay.LabelWindow
	}
	if overlay.MaxBlockLines != 0 {
		p.MaxBlockLines = overlay.MaxBlockLines
	}
}

// ItemMatcher finds line items. The text is cut into blocks at every
// product anchor or TOTAL line and each block yields at most one item.
type ItemMatcher struct {
	boundary *regexp.Regexp
	item     *regexp.Regexp
}

// ItemPattern compiles the line-item matcher for the profile anchors.
func (p Profile) ItemPattern() (*ItemMatcher, error) {
	boundary, err := regexp.Compile(fmt.Sprintf(`(?m)^[ \t]*(?i:%s|TOTAL\b)`, p.ProductAnchor))
	if err != nil {
		return nil, fmt.Errorf("compile item boundary for profile %s: %w", p.Name, err)
	}

	pattern := fmt.Sprintf(
		`(?ms)\A[ \t]*(?i:%s)[ \t]*:?[ \t]*([^\n]+?)[ \t]*\n.*?(%s)[ \t]*(?i:KG)[ \t]+(\d+)[ \t]+(%s)[ \t]*(?i:KG)(?:.*?(?i:%s)[ \t]*:?[ \t]*([^\n]+?)(?:[ \t]+(\d+)[ \t]*(?i:pallets?))?[ \t]*$)?`,
		p.ProductAnchor, Number, Number, p.PackagingAnchor,
	)

	item, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile item pattern for profile %s: %w", p.Name, err)
	}
	return &ItemMatcher{boundary: boundary, item: item}, nil
}

var reTotals = regexp.MustCompile(`(?i)\bTOTAL\b[ \t:]*(` + Number + `)[ \t]*KG[ \t]+(\d+)[ \t]+(` + Number + `)[ \t]*KG`)

// Totals holds the aggregate weights and package count of a document.
// A nil field was not found.
type Totals struct {
	NetKg   *float64
	Pkgs    *int
	GrossKg *float64
}

// ExtractItems returns one LineItem per product block of text. A block
// without a packaging line yields an item with empty packaging.
func ExtractItems(text string, m *ItemMatcher) []LineItem {
	bounds := m.boundary.FindAllStringIndex(text, -1)
	items := make([]LineItem, 0, len(bounds))

	for i, loc := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}

		sm := m.item.FindStringSubmatch(text[loc[0]:end])
		if sm == nil {
			continue
		}

		items = append(items, LineItem{
			ProductName:          strings.TrimSpace(sm[1]),
			NetWeight:            parseFloat(sm[2]),
			PackageCount:         parseInt(sm[3]),
			GrossWeight:          parseFloat(sm[4]),
			PackagingDescription: strings.TrimSpace(sm[5]),
			PalletCount:          parseInt(sm[6]),
		})
	}

	return items
}

// ExtractTotals reads the "TOTAL <net> KG <count> <gross> KG" line.
// Fields stay nil when the line is absent.
func ExtractTotals(text string) Totals {
	m := reTotals.FindStringSubmatch(text)
	if m == nil {
		return Totals{}
	}

	return Totals{
		NetKg:   parseFloat(m[1]),
		Pkgs:    parseInt(m[2]),
		GrossKg: parseFloat(m[3]),
	}
}

func parseFloat(s string) *float64 {
	v, ok := ParseLocaleNumber(s)
	if !ok {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
