package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	labelShipmentNo   = regexp.MustCompile(`(?i)\bshipment\s*(?:no|number|nr)\b\.?`)
	labelOrderNo      = regexp.MustCompile(`(?i)\border\s*(?:no|number|nr)\b\.?`)
	labelCustomerNo   = regexp.MustCompile(`(?i)\bcustomer\s*(?:no|number|nr)\b\.?`)
	labelDeliveryNote = regexp.MustCompile(`(?i)\bdelivery\s*note\s*(?:no|number|nr)\b\.?`)
	labelShipmentDate = regexp.MustCompile(`(?i)\b(?:shipment|shipping|dispatch|loading)\s*date\b`)
	labelDeliveryDate = regexp.MustCompile(`(?i)\bdelivery\s*date\b`)
	labelIncoterms    = regexp.MustCompile(`(?i)\bincoterms?(?:\s*20\d\d)?\b`)
	labelCarrier      = regexp.MustCompile(`(?i)\bcarrier(?:\s*name)?\b`)
	labelPhone        = regexp.MustCompile(`(?i)\b(?:phone|tel(?:ephone)?|mobile)\b\.?`)
	labelEmail        = regexp.MustCompile(`(?i)\be-?mail\b`)

	headShipper       = regexp.MustCompile(`(?im)^[ \t]*(?:shipper|sender|consignor)\b[ \t]*:?`)
	headConsignee     = regexp.MustCompile(`(?im)^[ \t]*(?:consignee|receiver|ship[ \-]?to)\b[ \t]*:?`)
	headShippingPoint = regexp.MustCompile(`(?im)^[ \t]*(?:shipping|loading)\s*point\b[ \t]*:?`)
	headTotal         = regexp.MustCompile(`(?im)^[ \t]*TOTAL\b`)

	valueDigits     = regexp.MustCompile(`\b(\d{6,})\b`)
	valueRef        = regexp.MustCompile(`\b(\d[\dA-Z\-/]{2,})\b`)
	valueDate       = regexp.MustCompile(`\b(\d{1,2}[./\-]\d{1,2}[./\-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	valueIncoterm   = regexp.MustCompile(`\b((?:EXW|FCA|FAS|FOB|CFR|CIF|CPT|CIP|DAP|DPU|DAT|DDP)\b[^\n]*)`)
	valueRestOfLine = regexp.MustCompile(`^[ \t]*[:.]?[ \t]*([^\n]*\S)`)
	valuePhone      = regexp.MustCompile(`(\+?\d[\d \-/().]{4,}\d)`)

	stopParty = regexp.MustCompile(`(?i)^(?:phone|tel|telephone|fax|mobile|e-?mail|consignee|receiver|ship[ \-]?to|shipper|sender|consignor|shipping\s*point|loading\s*point|carrier|incoterms?|product|total|shipment|order|customer|delivery)\b`)
)

// Extractor composes the extraction rules for one document Profile.
type Extractor struct {
	profile     Profile
	items       *ItemMatcher
	productHead *regexp.Regexp
	window      int
}

// New compiles the profile patterns and returns an Extractor.
func New(profile Profile) (*Extractor, error) {
	defaults := DefaultProfile()
	defaults.Merge(&profile)

	items, err := defaults.ItemPattern()
	if err != nil {
		return nil, err
	}

	productHead, err := regexp.Compile(fmt.Sprintf(`(?im)^[ \t]*(?:%s)\b`, defaults.ProductAnchor))
	if err != nil {
		return nil, fmt.Errorf("compile product anchor for profile %s: %w", defaults.Name, err)
	}

	return &Extractor{
		profile:     defaults,
		items:       items,
		productHead: productHead,
		window:      ClampWindow(defaults.LabelWindow),
	}, nil
}

// Profile returns the effective profile.
func (e *Extractor) Profile() Profile {
	return e.profile
}

// Extract builds a Record from recovered text. Fields without a match keep
// their defaults; extraction never fails.
func (e *Extractor) Extract(text string) Record {
	rec := NewRecord()
	w := e.window

	rec.ShipmentNo = NearLabel(text, labelShipmentNo, valueDigits, w)
	rec.OrderNo = NearLabel(text, labelOrderNo, valueRef, w)
	rec.CustomerNo = NearLabel(text, labelCustomerNo, valueRef, w)
	rec.DeliveryNoteNo = NearLabel(text, labelDeliveryNote, valueRef, w)
	rec.ShipmentDate = NearLabel(text, labelShipmentDate, valueDate, w)
	rec.DeliveryDate = NearLabel(text, labelDeliveryDate, valueDate, w)
	rec.Incoterms = strings.TrimSpace(NearLabel(text, labelIncoterms, valueIncoterm, w))
	rec.CarrierName = NearLabel(text, labelCarrier, valueRestOfLine, w)

	stops := []*regexp.Regexp{stopParty, e.productHead}
	ends := []*regexp.Regexp{headShipper, headConsignee, headShippingPoint, headTotal, e.productHead}

	shipper := ParseParty(BlockAfterLabel(text, headShipper, stops, e.profile.MaxBlockLines))
	rec.ShipperName = shipper.Name
	rec.ShipperStreet = shipper.Street
	rec.ShipperPostal = shipper.Postal
	rec.ShipperCity = shipper.City
	rec.ShipperCountry = shipper.Country

	section := Section(text, headShipper, ends)
	rec.ShipperPhone = NearLabel(section, labelPhone, valuePhone, w)
	rec.ShipperEmail = NearEmail(section, labelEmail, w)

	consignee := ParseParty(BlockAfterLabel(text, headConsignee, stops, e.profile.MaxBlockLines))
	rec.ConsigneeName = consignee.Name
	rec.ConsigneeStreet = consignee.Street
	rec.ConsigneePostal = consignee.Postal
	rec.ConsigneeCity = consignee.City
	rec.ConsigneeCountry = consignee.Country

	section = Section(text, headConsignee, ends)
	rec.ConsigneePhone = DistinctPhone(NearLabel(section, labelPhone, valuePhone, w), rec.ShipperPhone)
	rec.ConsigneeEmail = NearEmail(section, labelEmail, w)

	point := LabeledBlock(BlockAfterLabel(text, headShippingPoint, stops, e.profile.MaxBlockLines))
	rec.ShippingPointStreet = point.Street
	rec.ShippingPointPostal = point.Postal
	rec.ShippingPointCity = point.City
	rec.ShippingPointCountry = point.Country

	rec.Items = ExtractItems(text, e.items)

	totals := ExtractTotals(text)
	rec.TotalNetKg = totals.NetKg
	rec.TotalPkgs = totals.Pkgs
	rec.TotalGrossKg = totals.GrossKg

	return rec
}
