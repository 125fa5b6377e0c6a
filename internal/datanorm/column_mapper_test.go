package datanorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Clubnaam", "name"},
		{"Vereniging", "name"},
		{"Eigen Kantine", "has_canteen"},
		{"Aantal Leden", "members_count"},
		{"Aantal\nLeden", "members_count"},
		{"aantal  leden", "members_count"},
		{"Straat + Huisnummer", "street"},
		{"E-mail", "email"},
		{"email", "email"},
		{"Peildatum", "snapshot_date"},
		{"Stand per", "snapshot_date"},
		{"Contributie per jaar", "membership_fee"},
		{"Sporttak", "sport"},
		{"municipality", "municipality"},
		{"members_count", "members_count"},
		{"  Opmerkingen  ", "opmerkingen"},
		{"Bijzonderheden\r\nextra", "bijzonderheden extra"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveHeader(tt.raw))
		})
	}
}

func TestResolveHeaderIgnoresFormattingNoise(t *testing.T) {
	groups := [][]string{
		{"Gemeente", "GEMEENTE", " gemeente ", "Gémeente", "gemeënte\t"},
		{"Telefoonnummer", "telefoonnummer", "TÉLÉFOONNUMMER", "\ttelefoonnummer\n"},
		{"Vrijwilligers", "vrijwilligers ", "Vrijwilligérs"},
		{"Onbekende Kolom", "onbekende kolom", " ONBEKENDE KOLOM", "Ónbekende Kolom"},
	}
	for _, g := range groups {
		want := ResolveHeader(g[0])
		for _, raw := range g[1:] {
			assert.Equal(t, want, ResolveHeader(raw), "raw header %q", raw)
		}
	}
}

func TestResolveHeaderSpellsOutLigatures(t *testing.T) {
	tests := map[string]string{
		"Straße":       "strasse",
		"STRASSE":      "strasse",
		"Æresmedlem":   "aeresmedlem",
		"Søndag":       "sondag",
		"Ĳsclub leden": "ijsclub leden",
	}
	for raw, want := range tests {
		assert.Equal(t, want, ResolveHeader(raw), "raw header %q", raw)
	}
}

func TestResolveHeaderIsStable(t *testing.T) {
	for _, raw := range []string{"Clubnaam", "Eigen Kantine", "Something Else", "Post Code"} {
		once := ResolveHeader(raw)
		assert.Equal(t, once, ResolveHeader(once))
	}
}

func TestLookupField(t *testing.T) {
	f, ok := LookupField("Mobiel")
	assert.True(t, ok)
	assert.Equal(t, FieldPhone, f)
	assert.True(t, f.IsPII())

	_, ok = LookupField("niet bestaand")
	assert.False(t, ok)
}

func TestFieldTypes(t *testing.T) {
	assert.Equal(t, TypeBool, FieldHasCanteen.Type())
	assert.Equal(t, TypeCount, FieldMembersCount.Type())
	assert.Equal(t, TypeAmount, FieldMembershipFee.Type())
	assert.Equal(t, TypeDate, FieldSnapshotDate.Type())
	assert.Equal(t, TypeText, FieldCity.Type())
	assert.Equal(t, TypeText, CanonicalField("opmerkingen").Type())
}

func TestNonPIIFields(t *testing.T) {
	fields := NonPIIFields()
	assert.Len(t, fields, 11)
	for _, f := range fields {
		assert.False(t, f.IsPII(), "field %s", f)
	}
	assert.NotContains(t, fields, FieldSnapshotDate)
}
