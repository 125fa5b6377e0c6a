package kpi

import (
	"strings"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxSearchResults caps SearchClubs.
const MaxSearchResults = 50

// nameFallbacks are tried when a table has no canonical name column.
var nameFallbacks = []string{"clubnaam", "vereniging", "organisatie", "relatie", "naam"}

// NameColumn returns the column that identifies clubs in t, or "" for a
// table without columns.
func NameColumn(t *datanorm.Table) string {
	if t.HasField(datanorm.FieldName) {
		return string(datanorm.FieldName)
	}
	for _, c := range nameFallbacks {
		if t.Has(c) {
			return c
		}
	}
	if t != nil && len(t.Columns) > 0 {
		return t.Columns[0]
	}
	return ""
}

// SearchClubs returns up to MaxSearchResults distinct club names containing
// q, case-insensitively, in table order. An empty q matches every club.
func SearchClubs(t *datanorm.Table, q string) []string {
	col := NameColumn(t)
	if col == "" {
		return nil
	}
	q = strings.ToLower(strings.TrimSpace(q))
	seen := map[string]bool{}
	out := []string{}
	for _, v := range t.Column(col) {
		if v.IsMissing() {
			continue
		}
		name := v.String()
		if seen[name] || !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

// FindClub returns the first row whose name equals name exactly.
func FindClub(t *datanorm.Table, name string) (map[string]datanorm.Value, bool) {
	col := NameColumn(t)
	idx := t.Index(col)
	if idx < 0 {
		return nil, false
	}
	for i, row := range t.Rows {
		if !row[idx].IsMissing() && row[idx].String() == name {
			return t.Row(i), true
		}
	}
	return nil, false
}

// Field is one labelled value of a club card.
type Field struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// ClubCard lists every non-empty field of the club, PII included, in column
// order.
func ClubCard(t *datanorm.Table, name string) ([]Field, bool) {
	row, ok := FindClub(t, name)
	if !ok {
		return nil, false
	}
	var out []Field
	for _, c := range t.Columns {
		v := row[c]
		if v.IsMissing() {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, Field{Column: c, Value: s})
		}
	}
	return out, true
}

// FieldDiff describes one non-PII field of two clubs side by side.
type FieldDiff struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	A       string `json:"a"`
	B       string `json:"b"`
	Changed bool   `json:"changed"`
	Text    string `json:"text"`
}

const unchanged = "—"

// FieldDifferences compares a and b on every non-PII canonical field that
// either side carries.
func FieldDifferences(a, b map[string]datanorm.Value) []FieldDiff {
	title := cases.Title(language.Dutch)
	var out []FieldDiff
	for _, f := range datanorm.NonPIIFields() {
		va, okA := a[string(f)]
		vb, okB := b[string(f)]
		if !okA && !okB {
			continue
		}
		d := FieldDiff{
			Field: string(f),
			Label: title.String(strings.ReplaceAll(string(f), "_", " ")),
			A:     va.String(),
			B:     vb.String(),
		}
		d.Changed = d.A != d.B
		d.Text = unchanged
		if d.Changed {
			d.Text = d.A + " → " + d.B
		}
		out = append(out, d)
	}
	return out
}
