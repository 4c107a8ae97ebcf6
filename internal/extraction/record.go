// Package extraction turns recovered shipment document text into a typed
// Record using label-anchored and block-anchored rules. Every rule is a
// pure function over text; Extractor composes them under a Profile.
package extraction

// Record is the structured result of extracting one shipment document.
// All fields are always present: strings default to "", numeric totals
// default to nil (not found) and lists default to empty.
type Record struct {
	ShipmentNo     string `json:"shipment_no"`
	OrderNo        string `json:"order_no"`
	CustomerNo     string `json:"customer_no"`
	DeliveryNoteNo string `json:"delivery_note_no"`
	ShipmentDate   string `json:"shipment_date"`
	DeliveryDate   string `json:"delivery_date"`
	Incoterms      string `json:"incoterms"`
	CarrierName    string `json:"carrier_name"`

	ShipperName    string `json:"shipper_name"`
	ShipperStreet  string `json:"shipper_street"`
	ShipperPostal  string `json:"shipper_postal"`
	ShipperCity    string `json:"shipper_city"`
	ShipperCountry string `json:"shipper_country"`
	ShipperPhone   string `json:"shipper_phone"`
	ShipperEmail   string `json:"shipper_email"`

	ConsigneeName    string `json:"consignee_name"`
	ConsigneeStreet  string `json:"consignee_street"`
	ConsigneePostal  string `json:"consignee_postal"`
	ConsigneeCity    string `json:"consignee_city"`
	ConsigneeCountry string `json:"consignee_country"`
	ConsigneePhone   string `json:"consignee_phone"`
	ConsigneeEmail   string `json:"consignee_email"`

	ShippingPointStreet  string `json:"shipping_point_street"`
	ShippingPointPostal  string `json:"shipping_point_postal"`
	ShippingPointCity    string `json:"shipping_point_city"`
	ShippingPointCountry string `json:"shipping_point_country"`

	TotalNetKg   *float64 `json:"total_net_kg"`
	TotalPkgs    *int     `json:"total_pkgs"`
	TotalGrossKg *float64 `json:"total_gross_kg"`

	Items      []LineItem `json:"items"`
	Confidence int        `json:"confidence"`
	Warnings   []string   `json:"warnings"`
	Evidence   []Evidence `json:"evidence"`
}

// LineItem is one product row of a shipment.
type LineItem struct {
	ProductName          string   `json:"product_name"`
	NetWeight            *float64 `json:"net_weight"`
	GrossWeight          *float64 `json:"gross_weight"`
	PackageCount         *int     `json:"package_count"`
	PackagingDescription string   `json:"packaging_description"`
	PalletCount          *int     `json:"pallet_count"`
}

// Evidence records where a reconciled field value was found.
type Evidence struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Snippet string `json:"snippet"`
}

// NewRecord returns a Record with every list initialized.
func NewRecord() Record {
	return Record{
		Items:    []LineItem{},
		Warnings: []string{},
		Evidence: []Evidence{},
	}
}

// Normalize restores the empty-list defaults on a record decoded from JSON.
func (r *Record) Normalize() {
	if r.Items == nil {
		r.Items = []LineItem{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Evidence == nil {
		r.Evidence = []Evidence{}
	}
}

// Shipper returns the shipper address parts.
func (r *Record) Shipper() Address {
	return Address{
		Street:  r.ShipperStreet,
		Postal:  r.ShipperPostal,
		City:    r.ShipperCity,
		Country: r.ShipperCountry,
	}
}

// Consignee returns the consignee address parts.
func (r *Record) Consignee() Address {
	return Address{
		Street:  r.ConsigneeStreet,
		Postal:  r.ConsigneePostal,
		City:    r.ConsigneeCity,
		Country: r.ConsigneeCountry,
	}
}

// ShippingPoint returns the shipping point address parts.
func (r *Record) ShippingPoint() Address {
	return Address{
		Street:  r.ShippingPointStreet,
		Postal:  r.ShippingPointPostal,
		City:    r.ShippingPointCity,
		Country: r.ShippingPointCountry,
	}
}

// TextField binds a record field name to its storage.
type TextField struct {
	Name string
	Ref  func(*Record) *string
}

// TextFields lists every string field of Record in column order. The names
// match the JSON keys and the shipments table columns.
var TextFields = []TextField{
	{"shipment_no", func(r *Record) *string { return &r.ShipmentNo }},
	{"order_no", func(r *Record) *string { return &r.OrderNo }},
	{"customer_no", func(r *Record) *string { return &r.CustomerNo }},
	{"delivery_note_no", func(r *Record) *string { return &r.DeliveryNoteNo }},
	{"shipment_date", func(r *Record) *string { return &r.ShipmentDate }},
	{"delivery_date", func(r *Record) *string { return &r.DeliveryDate }},
	{"incoterms", func(r *Record) *string { return &r.Incoterms }},
	{"carrier_name", func(r *Record) *string { return &r.CarrierName }},
	{"shipper_name", func(r *Record) *string { return &r.ShipperName }},
	{"shipper_street", func(r *Record) *string { return &r.ShipperStreet }},
	{"shipper_postal", func(r *Record) *string { return &r.ShipperPostal }},
	{"shipper_city", func(r *Record) *string { return &r.ShipperCity }},
	{"shipper_country", func(r *Record) *string { return &r.ShipperCountry }},
	{"shipper_phone", func(r *Record) *string { return &r.ShipperPhone }},
	{"shipper_email", func(r *Record) *string { return &r.ShipperEmail }},
	{"consignee_name", func(r *Record) *string { return &r.ConsigneeName }},
	{"consignee_street", func(r *Record) *string { return &r.ConsigneeStreet }},
	{"consignee_postal", func(r *Record) *string { return &r.ConsigneePostal }},
	{"consignee_city", func(r *Record) *string { return &r.ConsigneeCity }},
	{"consignee_country", func(r *Record) *string { return &r.ConsigneeCountry }},
	{"consignee_phone", func(r *Record) *string { return &r.ConsigneePhone }},
	{"consignee_email", func(r *Record) *string { return &r.ConsigneeEmail }},
	{"shipping_point_street", func(r *Record) *string { return &r.ShippingPointStreet }},
	{"shipping_point_postal", func(r *Record) *string { return &r.ShippingPointPostal }},
	{"shipping_point_city", func(r *Record) *string { return &r.ShippingPointCity }},
	{"shipping_point_country", func(r *Record) *string { return &r.ShippingPointCountry }},
}
