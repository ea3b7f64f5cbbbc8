package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasgate/visaport/internal/models"
)

func assignment(id uint, key string, order int) models.FieldAssignment {
	return models.FieldAssignment{
		ID:        id,
		SortOrder: order,
		Definition: &models.FieldDefinition{
			FieldKey:   key,
			FieldLabel: key,
			FieldType:  "text",
		},
	}
}

func TestProjectFieldsFirstWins(t *testing.T) {
	// A global row and a scoped row collide on field_key; the earlier
	// sort order survives, the later duplicate is dropped.
	rows := []models.FieldAssignment{
		assignment(1, "name", 10),
		assignment(2, "phone", 20),
		assignment(3, "name", 30),
	}
	rows[0].IsRequired = true

	fields := ProjectFields(rows)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].FieldKey)
	assert.True(t, fields[0].IsRequired)
	assert.Equal(t, uint(1), fields[0].ID)
	assert.Equal(t, "phone", fields[1].FieldKey)
}

func TestProjectFieldsSkipsOrphans(t *testing.T) {
	rows := []models.FieldAssignment{
		{ID: 1, SortOrder: 1},
		assignment(2, "email", 2),
	}
	fields := ProjectFields(rows)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].FieldKey)
}

func TestProjectSmartFirstWins(t *testing.T) {
	tpl := func(key string) *models.SmartFieldTemplate {
		return &models.SmartFieldTemplate{TemplateKey: key, Label: key, LabelTR: key + "_tr"}
	}
	rows := []models.SmartFieldAssignment{
		{ID: 1, SortOrder: 5, IsRequired: true, Section: "travel", Template: tpl("travel_dates")},
		{ID: 2, SortOrder: 9, Template: tpl("travel_dates")},
		{ID: 3, SortOrder: 12, Template: nil},
	}

	smarts := ProjectSmart(rows)
	require.Len(t, smarts, 1)
	assert.Equal(t, "travel_dates", smarts[0].TemplateKey)
	assert.Equal(t, "travel_dates_tr", smarts[0].LabelTR)
	assert.True(t, smarts[0].IsRequired)
	assert.Equal(t, 5, smarts[0].SortOrder)
}

func TestProjectFieldsCarriesOptionsAndLocale(t *testing.T) {
	rows := []models.FieldAssignment{
		{
			ID:        1,
			SortOrder: 10,
			Definition: &models.FieldDefinition{
				FieldKey:      "civil_status",
				FieldLabel:    "Civil Status",
				FieldLabelTR:  "Medeni Hal",
				FieldType:     "select",
				Placeholder:   "Choose",
				PlaceholderTR: "Seçiniz",
				Options:       "single, married ,divorced,",
				OptionsTR:     "bekar,evli,boşanmış",
			},
		},
	}

	fields := ProjectFields(rows)
	require.Len(t, fields, 1)
	assert.Equal(t, "Medeni Hal", fields[0].FieldLabelTR)
	assert.Equal(t, "Seçiniz", fields[0].PlaceholderTR)
	assert.Equal(t, []string{"single", "married", "divorced"}, fields[0].Options)
	assert.Equal(t, []string{"bekar", "evli", "boşanmış"}, fields[0].OptionsTR)
}

func TestProjectFieldsEmpty(t *testing.T) {
	// Always a list, never nil: clients receive [] instead of null.
	assert.NotNil(t, ProjectFields(nil))
	assert.Empty(t, ProjectFields(nil))
	assert.NotNil(t, ProjectSmart(nil))
	assert.Empty(t, ProjectSmart(nil))
}
