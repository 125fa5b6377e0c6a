package datanorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalField is a normalized column name shared by every upload source.
type CanonicalField string

const (
	FieldName            CanonicalField = "name"
	FieldSport           CanonicalField = "sport"
	FieldMunicipality    CanonicalField = "municipality"
	FieldFederation      CanonicalField = "federation"
	FieldStreet          CanonicalField = "street"
	FieldPostalCode      CanonicalField = "postal_code"
	FieldCity            CanonicalField = "city"
	FieldContactPerson   CanonicalField = "contact_person"
	FieldEmail           CanonicalField = "email"
	FieldPhone           CanonicalField = "phone"
	FieldRole            CanonicalField = "role"
	FieldHasCanteen      CanonicalField = "has_canteen"
	FieldMembersCount    CanonicalField = "members_count"
	FieldVolunteersCount CanonicalField = "volunteers_count"
	FieldMembershipFee   CanonicalField = "membership_fee"
	FieldSnapshotDate    CanonicalField = "snapshot_date"
)

// FieldType is the semantic type of a canonical field.
type FieldType int

const (
	TypeText FieldType = iota
	TypeBool
	TypeCount
	TypeAmount
	TypeDate
)

// CanonicalFields lists every canonical field in display order.
var CanonicalFields = []CanonicalField{
	FieldName, FieldSport, FieldMunicipality, FieldFederation, FieldStreet,
	FieldPostalCode, FieldCity, FieldContactPerson, FieldEmail, FieldPhone,
	FieldRole, FieldHasCanteen, FieldMembersCount, FieldVolunteersCount,
	FieldMembershipFee, FieldSnapshotDate,
}

// PIIFields are stripped by Sanitize.
var PIIFields = []CanonicalField{FieldContactPerson, FieldEmail, FieldPhone, FieldRole}

var fieldTypes = map[CanonicalField]FieldType{
	FieldHasCanteen:      TypeBool,
	FieldMembersCount:    TypeCount,
	FieldVolunteersCount: TypeCount,
	FieldMembershipFee:   TypeAmount,
	FieldSnapshotDate:    TypeDate,
}

// Type returns the semantic type of f. Unknown fields are text.
func (f CanonicalField) Type() FieldType {
	if t, ok := fieldTypes[f]; ok {
		return t
	}
	return TypeText
}

// IsPII reports whether f holds personal data.
func (f CanonicalField) IsPII() bool {
	for _, p := range PIIFields {
		if p == f {
			return true
		}
	}
	return false
}

// IsCanonical reports whether col is one of the fixed canonical fields.
func IsCanonical(col string) bool {
	for _, f := range CanonicalFields {
		if string(f) == col {
			return true
		}
	}
	return false
}

// NonPIIFields returns the canonical fields shown in comparative views.
func NonPIIFields() []CanonicalField {
	out := make([]CanonicalField, 0, len(CanonicalFields))
	for _, f := range CanonicalFields {
		if !f.IsPII() && f != FieldSnapshotDate {
			out = append(out, f)
		}
	}
	return out
}

// columnAliases maps normalized raw headers to canonical fields.
// Keys must already be in the form produced by normalizeHeader.
var columnAliases = map[string]CanonicalField{
	// Name
	"clubnaam":    FieldName,
	"club":        FieldName,
	"vereniging":  FieldName,
	"organisatie": FieldName,
	"naam":        FieldName,
	"relatie":     FieldName,

	// Sport
	"sporttak":    FieldSport,
	"disciplines": FieldSport,

	// Location
	"gemeente":   FieldMunicipality,
	"plaats":     FieldCity,
	"stad":       FieldCity,
	"woonplaats": FieldCity,
	"dorp":       FieldCity,

	// Federation
	"sportsbond": FieldFederation,
	"bond":       FieldFederation,
	"federatie":  FieldFederation,

	// Address
	"straat + huisnummer":  FieldStreet,
	"straat en huisnummer": FieldStreet,
	"adres":                FieldStreet,
	"straat":               FieldStreet,
	"huisnummer":           FieldStreet,
	"postcode":             FieldPostalCode,
	"post code":            FieldPostalCode,

	// Contact (PII)
	"contactpersoon":  FieldContactPerson,
	"contact persoon": FieldContactPerson,
	"contact":         FieldContactPerson,
	"e-mail":          FieldEmail,
	"mail":            FieldEmail,
	"telefoonnummer":  FieldPhone,
	"telefoon":        FieldPhone,
	"mobiel":          FieldPhone,
	"gsm":             FieldPhone,
	"functie":         FieldRole,
	"rol":             FieldRole,

	// Facilities and counts
	"eigen kantine":        FieldHasCanteen,
	"kantine":              FieldHasCanteen,
	"heeft kantine":        FieldHasCanteen,
	"aantal leden":         FieldMembersCount,
	"leden":                FieldMembersCount,
	"leden_aantal":         FieldMembersCount,
	"totale leden":         FieldMembersCount,
	"aantal vrijwilligers": FieldVolunteersCount,
	"vrijwilligers":        FieldVolunteersCount,
	"contributie":          FieldMembershipFee,
	"lidmaatschap":         FieldMembershipFee,
	"lidmaatschapskosten":  FieldMembershipFee,
	"contributie per jaar": FieldMembershipFee,

	// Snapshot
	"peildatum": FieldSnapshotDate,
	"stand per": FieldSnapshotDate,
	"datum":     FieldSnapshotDate,
	"snapshot":  FieldSnapshotDate,
}

func init() {
	for _, f := range CanonicalFields {
		if _, ok := columnAliases[string(f)]; !ok {
			columnAliases[string(f)] = f
		}
	}
}

// ResolveHeader maps a raw header to a canonical field name, or to its
// normalized form when no alias matches. It never fails.
func ResolveHeader(raw string) string {
	if f, ok := LookupField(raw); ok {
		return string(f)
	}
	return normalizeHeader(raw)
}

// LookupField returns the canonical field for a raw header, if any.
func LookupField(raw string) (CanonicalField, bool) {
	f, ok := columnAliases[normalizeHeader(raw)]
	return f, ok
}

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

func normalizeHeader(raw string) string {
	s := strings.ToLower(strings.TrimSpace(stripDiacritics(raw)))
	s = lineBreaks.Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// ligatures have no decomposition, so they are spelled out before the
// combining marks are dropped.
var ligatures = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"þ", "th", "Þ", "TH",
	"ĳ", "ij", "Ĳ", "IJ",
)

// stripDiacritics decomposes s and drops combining marks, then removes any
// remaining non-ASCII rune.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, ligatures.Replace(s))
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, out)
}
