package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(key, section string, order int) FormField {
	return FormField{FieldKey: key, FieldLabel: key, FieldType: "text", Section: section, SortOrder: order}
}

func smart(key, section string, order int) SmartAssignment {
	return SmartAssignment{TemplateKey: key, Label: key, Section: section, SortOrder: order}
}

func sectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func TestGroupSectionsOrdering(t *testing.T) {
	// Section order must follow the smallest sort order among the
	// members, not first appearance in the input slices.
	fields := []FormField{
		field("passport_no", SectionPassport, 40),
		field("name", SectionPersonal, 10),
		field("surname", SectionPersonal, 20),
	}
	smarts := []SmartAssignment{
		smart("travel_dates", SectionTravel, 30),
		smart("birth_place", SectionBirthInfo, 15),
	}

	sections := GroupSections(fields, smarts)
	assert.Equal(t, []string{SectionPersonal, SectionBirthInfo, SectionTravel, SectionPassport}, sectionNames(sections))

	// Items inside a section keep global order.
	require.Len(t, sections[0].Items, 2)
	assert.Equal(t, "name", sections[0].Items[0].Field.FieldKey)
	assert.Equal(t, "surname", sections[0].Items[1].Field.FieldKey)
}

func TestGroupSectionsInterleaved(t *testing.T) {
	// A later field of an early section must not drag the section
	// backwards: position is decided by the minimum member.
	fields := []FormField{
		field("a", "s1", 5),
		field("b", "s2", 6),
		field("c", "s1", 50),
	}
	sections := GroupSections(fields, nil)
	assert.Equal(t, []string{"s1", "s2"}, sectionNames(sections))
	require.Len(t, sections[0].Items, 2)
	assert.Equal(t, "c", sections[0].Items[1].Field.FieldKey)
}

func TestGroupSectionsDefaultSection(t *testing.T) {
	fields := []FormField{field("extra", "", 99)}
	sections := GroupSections(fields, nil)
	require.Len(t, sections, 1)
	assert.Equal(t, SectionOther, sections[0].Name)
}

func TestGroupSectionsStable(t *testing.T) {
	// Equal sort orders keep input order: fields first, then smarts.
	fields := []FormField{field("a", "s", 10), field("b", "s", 10)}
	smarts := []SmartAssignment{smart("c", "s", 10)}
	sections := GroupSections(fields, smarts)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Items, 3)
	assert.Equal(t, "a", sections[0].Items[0].Field.FieldKey)
	assert.Equal(t, "b", sections[0].Items[1].Field.FieldKey)
	assert.Equal(t, "c", sections[0].Items[2].Smart.TemplateKey)
}

func TestGroupSectionsEmpty(t *testing.T) {
	assert.Empty(t, GroupSections(nil, nil))
}
