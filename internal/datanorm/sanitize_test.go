package datanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func piiTable() *Table {
	tbl := NewTable("name", "contact_person", "email", "sport", "phone", "role", "opmerking")
	tbl.Append(Text("SV A"), Text("Jan"), Text("jan@sva.nl"), Text("Voetbal"), Text("0612345678"), Text("Secretaris"), Text("x"))
	return tbl
}

func TestSanitizeDropsExactlyPII(t *testing.T) {
	tbl := piiTable()
	out := Sanitize(tbl)

	assert.Equal(t, []string{"name", "sport", "opmerking"}, out.Columns)
	assert.Equal(t, []Value{Text("SV A"), Text("Voetbal"), Text("x")}, out.Rows[0])
}

func TestSanitizeIsIdempotent(t *testing.T) {
	once := Sanitize(piiTable())
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	tbl := piiTable()
	before := tbl.Clone()
	out := Sanitize(tbl)
	out.Rows[0][0] = Text("changed")

	assert.Equal(t, before, tbl)
}

func TestSanitizeWithoutPIIColumns(t *testing.T) {
	tbl := NewTable("name")
	tbl.Append(Text("A"))
	assert.Equal(t, tbl, Sanitize(tbl))
}

func TestSanitizeDataset(t *testing.T) {
	ds := &Dataset{Name: "x.csv", Table: piiTable()}
	out := SanitizeDataset(ds)
	assert.Equal(t, "x.csv", out.Name)
	assert.False(t, out.Table.Has("email"))
	assert.True(t, ds.Table.Has("email"))
	assert.Nil(t, SanitizeDataset(nil))
}
