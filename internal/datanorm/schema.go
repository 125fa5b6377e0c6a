package datanorm

import (
	"fmt"
	"strings"
)

// Report is the advisory outcome of Validate.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the table has no blocking errors.
func (r Report) OK() bool { return len(r.Errors) == 0 }

var (
	requiredFields    = []CanonicalField{FieldName}
	recommendedFields = []CanonicalField{FieldSport, FieldMunicipality, FieldHasCanteen, FieldMembersCount, FieldVolunteersCount, FieldSnapshotDate}
	numericFields     = []CanonicalField{FieldMembersCount, FieldVolunteersCount, FieldMembershipFee}
	booleanFields     = []CanonicalField{FieldHasCanteen}
)

// Validate checks t against the canonical schema. Every check runs; an
// error never hides a warning. The table is not modified.
func Validate(t *Table) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	for _, f := range requiredFields {
		if !t.HasField(f) {
			r.Errors = append(r.Errors, fmt.Sprintf("Verplicht veld ontbreekt: '%s'", f))
		}
	}
	for _, f := range recommendedFields {
		if !t.HasField(f) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Aanbevolen veld ontbreekt: '%s'", f))
		}
	}
	for _, f := range numericFields {
		if !t.HasField(f) {
			continue
		}
		if n := countNonNumeric(t.Field(f)); n > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Veld '%s' bevat %d niet-numerieke waardes.", f, n))
		}
	}
	for _, f := range booleanFields {
		if !t.HasField(f) {
			continue
		}
		if n := countNonBoolean(t.Field(f)); n > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Veld '%s' bevat %d waarden die niet Ja/Nee (True/False) zijn.", f, n))
		}
	}
	if t.HasField(FieldName) {
		if n := countDuplicates(t.Field(FieldName)); n > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("'%s' bevat %d dubbele waarden.", FieldName, n))
		}
	}
	return r
}

func countNonNumeric(vals []Value) int {
	n := 0
	for _, v := range vals {
		switch v.Kind {
		case KindMissing:
			if v.Raw != "" {
				n++
			}
		case KindNumber:
		case KindText:
			if _, ok := ParseNumber(v.Text); !ok {
				n++
			}
		default:
			n++
		}
	}
	return n
}

func countNonBoolean(vals []Value) int {
	n := 0
	for _, v := range vals {
		if v.Kind != KindMissing && v.Kind != KindBool {
			n++
		}
	}
	return n
}

// countDuplicates returns how many rows carry a name that occurs more than
// once after trimming. Missing names are not compared.
func countDuplicates(vals []Value) int {
	seen := make(map[string]int, len(vals))
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			seen[s]++
		}
	}
	n := 0
	for _, c := range seen {
		if c > 1 {
			n += c
		}
	}
	return n
}
