package datanorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullTable() *Table {
	tbl := NewTable("name", "sport", "municipality", "has_canteen", "members_count", "volunteers_count", "snapshot_date")
	tbl.Append(Text("SV A"), Text("Voetbal"), Text("Utrecht"), Bool(true), Number(100), Number(10), Text("01-01-2024"))
	tbl.Append(Text("SV B"), Text("Hockey"), Text("Zeist"), Bool(false), Number(50), Number(5), Missing())
	return tbl
}

func TestValidateCleanTable(t *testing.T) {
	r := Validate(fullTable())
	assert.True(t, r.OK())
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateMissingNameStillRunsWarnings(t *testing.T) {
	tbl := NewTable("club_id", "members_count")
	tbl.Append(Text("1"), invalid("veel"))

	r := Validate(tbl)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "'name'")
	assert.False(t, r.OK())

	assert.Contains(t, r.Warnings, "Aanbevolen veld ontbreekt: 'sport'")
	assert.Contains(t, r.Warnings, "Aanbevolen veld ontbreekt: 'snapshot_date'")
	assert.Contains(t, r.Warnings, "Veld 'members_count' bevat 1 niet-numerieke waardes.")
	assert.NotContains(t, r.Warnings, "Aanbevolen veld ontbreekt: 'members_count'")
}

func TestValidateMissingNameRegardlessOfContent(t *testing.T) {
	for _, tbl := range []*Table{NewTable(), NewTable("sport"), fullTable().Drop("name")} {
		r := Validate(tbl)
		require.NotEmpty(t, r.Errors)
		assert.True(t, strings.Contains(strings.Join(r.Errors, " "), "name"))
	}
}

func TestValidateRecommendedOrder(t *testing.T) {
	tbl := NewTable("name")
	tbl.Append(Text("X"))
	r := Validate(tbl)
	assert.Equal(t, []string{
		"Aanbevolen veld ontbreekt: 'sport'",
		"Aanbevolen veld ontbreekt: 'municipality'",
		"Aanbevolen veld ontbreekt: 'has_canteen'",
		"Aanbevolen veld ontbreekt: 'members_count'",
		"Aanbevolen veld ontbreekt: 'volunteers_count'",
		"Aanbevolen veld ontbreekt: 'snapshot_date'",
	}, r.Warnings)
}

func TestValidateNumericFields(t *testing.T) {
	tbl := fullTable()
	tbl.Columns = append(tbl.Columns, "membership_fee")
	tbl.Rows[0] = append(tbl.Rows[0], Text("€ 25"))
	tbl.Rows[1] = append(tbl.Rows[1], Text("17,50"))
	tbl.Rows[1][4] = invalid("12.5")
	tbl.Rows[0][5] = Missing()

	r := Validate(tbl)
	assert.Equal(t, []string{
		"Veld 'members_count' bevat 1 niet-numerieke waardes.",
		"Veld 'membership_fee' bevat 1 niet-numerieke waardes.",
	}, r.Warnings)
}

func TestValidateBooleanField(t *testing.T) {
	tbl := fullTable()
	tbl.Rows[0][3] = Text("misschien")
	tbl.Rows[1][3] = Missing()

	r := Validate(tbl)
	assert.Equal(t, []string{"Veld 'has_canteen' bevat 1 waarden die niet Ja/Nee (True/False) zijn."}, r.Warnings)
}

func TestValidateDuplicateNames(t *testing.T) {
	tbl := fullTable()
	tbl.Append(Text(" SV A "), Text("Voetbal"), Text("Utrecht"), Bool(true), Number(1), Number(1), Missing())
	tbl.Append(Text("SV A"), Text("Voetbal"), Text("Utrecht"), Bool(true), Number(1), Number(1), Missing())
	tbl.Append(Text("SV B"), Text("Hockey"), Text("Zeist"), Bool(true), Number(1), Number(1), Missing())
	tbl.Append(Missing(), Text("Hockey"), Text("Zeist"), Bool(true), Number(1), Number(1), Missing())
	tbl.Append(Missing(), Text("Hockey"), Text("Zeist"), Bool(true), Number(1), Number(1), Missing())

	r := Validate(tbl)
	var dup []string
	for _, w := range r.Warnings {
		if strings.Contains(w, "dubbele") {
			dup = append(dup, w)
		}
	}
	require.Len(t, dup, 1)
	assert.Equal(t, "'name' bevat 5 dubbele waarden.", dup[0])
}

func TestValidateDoesNotMutate(t *testing.T) {
	tbl := fullTable()
	before := tbl.Clone()
	Validate(tbl)
	assert.Equal(t, before, tbl)
}
