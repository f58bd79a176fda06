package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey_PicksLongestSatisfiedTemplate(t *testing.T) {
	attrs := map[string]string{"FirstName": "A", "LastName": "B", "Zipcode": "10001"}
	templates := ParseTemplates([]string{"FirstName_LastName", "FirstName_LastName_Zipcode"})

	key, ok := BuildKey(attrs, templates)

	require.True(t, ok)
	assert.Equal(t, "FirstName_LastName_Zipcode:A_B_10001", key.String())
}

func TestBuildKey_TieGoesToFirstDeclared(t *testing.T) {
	attrs := map[string]string{"FirstName": "A", "LastName": "B", "PhoneNumber": "555", "Zipcode": "10001"}
	templates := ParseTemplates([]string{
		"FirstName_LastName_Zipcode",
		"FirstName_LastName_PhoneNumber",
	})

	key, ok := BuildKey(attrs, templates)

	require.True(t, ok)
	assert.Equal(t, "FirstName_LastName_Zipcode", key.Template.String())
}

func TestBuildKey_SkipsPartiallySatisfiedTemplates(t *testing.T) {
	attrs := map[string]string{"FirstName": "A", "LastName": "B", "Zipcode": ""}
	templates := ParseTemplates([]string{"FirstName_LastName_Zipcode", "FirstName_LastName"})

	key, ok := BuildKey(attrs, templates)

	require.True(t, ok)
	assert.Equal(t, "FirstName_LastName:A_B", key.String())
}

func TestBuildKey_NoTemplateQualifies(t *testing.T) {
	attrs := map[string]string{"Email": "a@b.c"}
	templates := ParseTemplates([]string{"FirstName_LastName"})

	_, ok := BuildKey(attrs, templates)
	assert.False(t, ok)
}

func TestBuildKey_RejectsValuesContainingSeparator(t *testing.T) {
	attrs := map[string]string{"Email": "ada_l@b.c", "PhoneNumber": "5551234"}
	templates := ParseTemplates([]string{"PhoneNumber", "Email_PhoneNumber"})

	key, ok := BuildKey(attrs, templates)

	require.True(t, ok)
	assert.Equal(t, "PhoneNumber:5551234", key.String())
}

func TestBuildKey_Deterministic(t *testing.T) {
	attrs := map[string]string{"FirstName": "A", "LastName": "B", "DOB": "01/02/90", "Zipcode": "1"}
	templates := ParseTemplates([]string{"FirstName_LastName_DOB", "FirstName_LastName_Zipcode", "FirstName_LastName"})

	first, _ := BuildKey(attrs, templates)
	for i := 0; i < 20; i++ {
		got, _ := BuildKey(attrs, templates)
		assert.Equal(t, first, got)
	}
}

func TestParseCompoundKey(t *testing.T) {
	key, err := ParseCompoundKey("FirstName_LastName:Ada_Lovelace")
	require.NoError(t, err)
	assert.Equal(t, Template{"FirstName", "LastName"}, key.Template)
	assert.Equal(t, map[string]string{"FirstName": "Ada", "LastName": "Lovelace"}, key.Map())
}

func TestParseCompoundKey_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing colon", "FirstName_Ada"},
		{"empty template", ":Ada"},
		{"value count mismatch", "FirstName_LastName:Ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompoundKey(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestBuild_LeavesKeyEmptyWhenUnresolvable(t *testing.T) {
	rec := Build(Raw{
		Type:        TypeCustomer,
		EntityID:    "c1",
		Transaction: "NA_01/01/20-1:1_buyGiftCard_10.00",
		Attributes:  map[string]string{"Email": "x@y.z"},
	}, ParseTemplates([]string{"FirstName_LastName"}))

	assert.False(t, rec.Resolvable())
	assert.Equal(t, "c1", rec.EntityID)
}
