package datanorm

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clubs() *Table {
	tbl := NewTable("name", "municipality", "sport", "members_count")
	tbl.Append(Text("A"), Text("Utrecht"), Text("Voetbal"), Number(10))
	tbl.Append(Text("B"), Text("Zeist"), Text("Hockey"), Number(20))
	tbl.Append(Text("C"), Text("Utrecht"), Text("Hockey"), Missing())
	tbl.Append(Text("D"), Missing(), Text("Voetbal"), Number(5))
	return tbl
}

func TestTableAccessors(t *testing.T) {
	tbl := clubs()
	assert.Equal(t, 4, tbl.Len())
	assert.True(t, tbl.Has("sport"))
	assert.True(t, tbl.HasField(FieldMunicipality))
	assert.False(t, tbl.Has("email"))
	assert.Nil(t, tbl.Column("email"))
	assert.Len(t, tbl.Field(FieldName), 4)
	assert.Equal(t, Text("Zeist"), tbl.Row(1)["municipality"])

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
	assert.False(t, nilTable.Has("name"))
}

func TestGroupByOneColumn(t *testing.T) {
	groups := clubs().GroupBy("municipality")
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Utrecht"}, groups[0].Key)
	assert.Equal(t, 2, groups[0].Rows.Len())
	assert.Equal(t, []string{"Zeist"}, groups[1].Key)
	assert.Equal(t, []string{UnknownGroup}, groups[2].Key)
}

func TestGroupByTwoColumns(t *testing.T) {
	groups := clubs().GroupBy("municipality", "sport")
	require.Len(t, groups, 4)
	assert.Equal(t, "Utrecht · Voetbal", groups[0].Label())
	assert.Equal(t, "Zeist · Hockey", groups[1].Label())
	assert.Equal(t, "Utrecht · Hockey", groups[2].Label())
	assert.Equal(t, "Onbekend · Voetbal", groups[3].Label())
}

func TestGroupByAbsentColumn(t *testing.T) {
	groups := clubs().GroupBy("federation")
	require.Len(t, groups, 1)
	assert.Nil(t, groups[0].Key)
	assert.Equal(t, 4, groups[0].Rows.Len())
}

func TestFilter(t *testing.T) {
	tbl := clubs()
	assert.Equal(t, 2, tbl.Filter("municipality", []string{"Utrecht"}).Len())
	assert.Equal(t, 3, tbl.Filter("municipality", []string{"Utrecht", "Zeist"}).Len())
	assert.Equal(t, 4, tbl.Filter("municipality", nil).Len())
	assert.Equal(t, 4, tbl.Filter("federation", []string{"KNVB"}).Len())
}

func TestWriteCSV(t *testing.T) {
	tbl := NewTable("name", "has_canteen", "members_count", "snapshot_date", "city")
	tbl.Append(Text("SV, A"), Bool(true), Number(12), Date(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), Missing())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.Equal(t, "name,has_canteen,members_count,snapshot_date,city\n\"SV, A\",True,12,2023-01-01,\n", buf.String())
}

func TestSanitizedCSV(t *testing.T) {
	out, err := SanitizedCSV(piiTable())
	require.NoError(t, err)
	assert.Equal(t, "name,sport,opmerking\nSV A,Voetbal,x\n", string(out))
}
