package datanorm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func buildWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadWorkbook(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Clubnaam", "Eigen Kantine", "Aantal Leden", "Peildatum", "E-mail"},
		[]interface{}{"SV Example", "Ja", 120, 44927, "info@svexample.nl"},
		[]interface{}{"HC Test", "nee", "12.5", nil, "hc@test.nl"},
	)

	ds, err := Load(data, "nulmeting.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "excelize", ds.Decoder)
	assert.Equal(t, "nulmeting.xlsx", ds.Name)
	assert.Equal(t, []string{"name", "has_canteen", "members_count", "snapshot_date", "email"}, ds.Table.Columns)
	require.Equal(t, 2, ds.Table.Len())

	assert.Equal(t, Text("SV Example"), ds.Table.Rows[0][0])
	assert.Equal(t, Bool(true), ds.Table.Rows[0][1])
	assert.Equal(t, Number(120), ds.Table.Rows[0][2])
	assert.Equal(t, Bool(false), ds.Table.Rows[1][1])
	assert.True(t, ds.Table.Rows[1][2].IsMissing())

	require.NotNil(t, ds.Snapshot)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), *ds.Snapshot)
}

func TestDecodeTolerantXLSX(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Vereniging", "Gemeente"},
		[]interface{}{"VV Noord", "Groningen"},
	)
	rows, err := decodeTolerantXLSX(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Vereniging", "Gemeente"}, rows[0])
	assert.Equal(t, []string{"VV Noord", "Groningen"}, rows[1])
}

func TestLoadSemicolonCSV(t *testing.T) {
	data := []byte("\ufeffClubnaam;Gemeente;Aantal Leden;Peildatum\nSV Example;Utrecht;40;15-03-2024\nVV Oost;Zwolle;abc;\n")

	ds, err := Load(data, "actueel.csv")
	require.NoError(t, err)

	assert.Equal(t, "delimited", ds.Decoder)
	assert.Equal(t, []string{"name", "municipality", "members_count", "snapshot_date"}, ds.Table.Columns)
	assert.Equal(t, Text("Utrecht"), ds.Table.Rows[0][1])
	assert.Equal(t, Number(40), ds.Table.Rows[0][2])
	assert.Equal(t, "abc", ds.Table.Rows[1][2].Raw)

	require.NotNil(t, ds.Snapshot)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), *ds.Snapshot)
}

func TestLoadCommaCSVWithQuotesAndRaggedRows(t *testing.T) {
	data := []byte("Naam,Plaats,Opmerking\n\"Club, de Eerste\",Assen\n,,\nTweede,Emmen,\"zegt \"\"hoi\"\"\"\n")

	ds, err := Load(data, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "city", "opmerking"}, ds.Table.Columns)
	require.Equal(t, 2, ds.Table.Len())
	assert.Equal(t, Text("Club, de Eerste"), ds.Table.Rows[0][0])
	assert.True(t, ds.Table.Rows[0][2].IsMissing())
	assert.Equal(t, Text(`zegt "hoi"`), ds.Table.Rows[1][2])
	assert.Nil(t, ds.Snapshot)
}

func TestLoadWindows1252CSV(t *testing.T) {
	utf := "Clubnaam;Gemeente\nCafé Sport;Súdwest-Fryslân\n"
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf))
	require.NoError(t, err)

	ds, err := Load(data, "legacy.csv")
	require.NoError(t, err)
	assert.Equal(t, Text("Café Sport"), ds.Table.Rows[0][0])
	assert.Equal(t, Text("Súdwest-Fryslân"), ds.Table.Rows[0][1])
}

func TestLoadRecordsHeaderCollisions(t *testing.T) {
	data := []byte("Clubnaam;Vereniging;Sport\nOud;Nieuw;Hockey\n")

	ds, err := Load(data, "dubbel.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "sport"}, ds.Table.Columns)
	assert.Equal(t, Text("Nieuw"), ds.Table.Rows[0][0])
	require.Len(t, ds.Collisions, 1)
	assert.Equal(t, Collision{Column: "name", Overwritten: "Clubnaam", Kept: "Vereniging"}, ds.Collisions[0])
}

func TestLoadFailsWhenEveryDecoderFails(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"broken zip", []byte("PK\x03\x04this is not a workbook")},
		{"empty", nil},
		{"binary", []byte{0x01, 0x00, 0x02, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(tt.data, "upload.bin")
			assert.Nil(t, ds)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, "upload.bin", le.Filename)
			assert.Len(t, le.Attempts, len(decoders))
			assert.NotNil(t, errors.Unwrap(err))
			assert.Contains(t, err.Error(), "kan bestand niet lezen als Excel of CSV")
		})
	}
}
