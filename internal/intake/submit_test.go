package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFees struct {
	fees Fees
	err  error
}

func (f fakeFees) CountryFees(ctx context.Context, country string) (Fees, error) {
	return f.fees, f.err
}

func loadedForm(t *testing.T) *Form {
	t.Helper()
	f := NewForm()
	token := f.BeginLoad()
	ok := f.CompleteLoad(token, Snapshot{
		Fields: []FormField{
			{FieldKey: "name", FieldLabel: "Name", FieldType: "text", IsRequired: true, IsStandard: true, SortOrder: 1, Section: SectionPersonal},
			{FieldKey: "surname", FieldLabel: "Surname", FieldType: "text", IsRequired: true, IsStandard: true, SortOrder: 2, Section: SectionPersonal},
			{FieldKey: "email", FieldLabel: "Email", FieldType: "email", IsRequired: true, IsStandard: true, SortOrder: 3, Section: SectionPersonal},
			{FieldKey: "mother_name", FieldLabel: "Mother Name", FieldType: "text", SortOrder: 4, Section: SectionPersonal},
		},
		Smart: []SmartAssignment{
			{TemplateKey: "nationality", Label: "Nationality", IsRequired: true, SortOrder: 5, Section: SectionNationality},
		},
	})
	require.True(t, ok)
	return f
}

func TestSubmitNormalizes(t *testing.T) {
	f := loadedForm(t)
	f.SetValue("name", "Ayşe")
	f.SetValue("surname", "Çelik")
	f.SetValue("email", "ayse@example.com")
	f.SetValue("mother_name", "Gül")
	f.SmartApply("nationality", "selection", "other")
	f.SmartApply("nationality", "custom_nationality", "ingiliz")

	source := fakeFees{fees: Fees{Service: 40, Consulate: 80, Currency: "EUR"}}
	sub, err := f.Submit(context.Background(), "Almanya", "tourist", "Istanbul", source)
	require.NoError(t, err)

	require.NotNil(t, sub.FullName)
	assert.Equal(t, "AYSE CELIK", *sub.FullName)
	assert.Equal(t, "AYSE@EXAMPLE.COM", sub.Standard["email"])
	assert.Equal(t, "GUL", sub.Custom["mother_name"])
	assert.Equal(t, "ISTANBUL", sub.Custom["application_city"])
	assert.Equal(t, Fees{Service: 40, Consulate: 80, Currency: "EUR"}, sub.Fees)

	smartNS, ok := sub.Custom["_smart"].(map[string]any)
	require.True(t, ok)
	nat, ok := smartNS["nationality"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INGILIZ", nat["custom_nationality"])
	assert.Equal(t, "other", nat["selection"])
	assert.Equal(t, true, nat["_valid"])
}

func TestSubmitKeepsSmartSelectionsVerbatim(t *testing.T) {
	f := loadedForm(t)
	f.SetValue("name", "Ayşe")
	f.SetValue("surname", "Çelik")
	f.SetValue("email", "ayse@example.com")
	f.SmartApply("nationality", "selection", "tc")

	sub, err := f.Submit(context.Background(), "Almanya", "tourist", "", fakeFees{})
	require.NoError(t, err)

	smartNS, ok := sub.Custom["_smart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"selection":          "tc",
		"custom_nationality": "",
		"_valid":             true,
	}, smartNS["nationality"])
}

func TestSubmitRejectsInvalidSmartField(t *testing.T) {
	f := loadedForm(t)
	f.SetValue("name", "Ayşe")
	f.SetValue("surname", "Çelik")
	f.SetValue("email", "ayse@example.com")
	// nationality left untouched: no _valid, submission must stop
	// before any persistence work.

	sub, err := f.Submit(context.Background(), "Almanya", "tourist", "", fakeFees{})
	assert.Nil(t, sub)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"nationality"}, verr.Report.InvalidSmart)
}

func TestSubmitFullNameFallback(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{Fields: []FormField{
		{FieldKey: "full_name", FieldLabel: "Full Name", FieldType: "text", IsRequired: true, IsStandard: true, SortOrder: 1},
	}})
	f.SetValue("full_name", "Şule Öztürk")

	sub, err := f.Submit(context.Background(), "Fransa", "business", "", nil)
	require.NoError(t, err)
	require.NotNil(t, sub.FullName)
	assert.Equal(t, "SULE OZTURK", *sub.FullName)
}

func TestSubmitFeeFallback(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{})

	sub, err := f.Submit(context.Background(), "Nowhere", "tourist", "", fakeFees{err: errors.New("no rows")})
	require.NoError(t, err)
	assert.Equal(t, DefaultFees(), sub.Fees)

	// Unanswered smart fields and absent city leave no traces.
	assert.NotContains(t, sub.Custom, "_smart")
	assert.NotContains(t, sub.Custom, "application_city")
	assert.Nil(t, sub.FullName)
}

func TestSubmitAliasesDateExpiry(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{Fields: []FormField{
		{FieldKey: "date_expiry", FieldLabel: "Passport Expiry", FieldType: "date", IsStandard: true, SortOrder: 1},
	}})
	f.SetValue("date_expiry", "2030-05-01")

	sub, err := f.Submit(context.Background(), "Italya", "tourist", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "2030-05-01", sub.Standard["passport_expiry"])
}
