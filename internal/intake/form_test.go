package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormLoadTokens(t *testing.T) {
	f := NewForm()

	first := f.BeginLoad()
	second := f.BeginLoad()

	// The slow first response arrives after the second load started;
	// it must be discarded.
	ok := f.CompleteLoad(first, Snapshot{Fields: []FormField{field("stale", "s", 1)}})
	assert.False(t, ok)
	assert.Empty(t, f.Fields())

	ok = f.CompleteLoad(second, Snapshot{Fields: []FormField{field("fresh", "s", 1)}})
	assert.True(t, ok)
	require.Len(t, f.Fields(), 1)
	assert.Equal(t, "fresh", f.Fields()[0].FieldKey)

	// Replaying an already applied token is a no-op.
	assert.False(t, f.CompleteLoad(second, Snapshot{}))
}

func TestFormDropsUnregisteredSmartKeys(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{Smart: []SmartAssignment{
		smart("nationality", "s", 1),
		smart("civil_status", "s", 2),
		smart("no_such_template", "s", 3),
	}})

	require.Len(t, f.SmartAssignments(), 1)
	assert.Equal(t, "nationality", f.SmartAssignments()[0].TemplateKey)
}

func TestFormValidateCollectsSmartState(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{
		Fields: []FormField{{FieldKey: "name", FieldLabel: "Name", FieldType: "text", IsRequired: true, SortOrder: 1}},
		Smart:  []SmartAssignment{smart("nationality", "s", 2)},
	})

	report := f.Validate()
	assert.False(t, report.OK())
	assert.Equal(t, []string{CodeRequired}, report.Fields["name"])
	assert.Equal(t, []string{"Name"}, report.Summary)
	assert.Equal(t, []string{"nationality"}, report.InvalidSmart)

	f.SetValue("name", "Ayse")
	f.SmartApply("nationality", "selection", "tc")
	assert.True(t, f.Validate().OK())
}

func TestFormRestoreSmartDocument(t *testing.T) {
	f := NewForm()
	token := f.BeginLoad()
	f.CompleteLoad(token, Snapshot{Smart: []SmartAssignment{smart("nationality", "s", 1)}})

	// A saved draft comes back without a trustworthy sentinel; restore
	// recomputes it from the answers.
	f.RestoreSmartDocument("nationality", map[string]any{"selection": "tc", "_valid": false})
	assert.True(t, f.SmartDocument("nationality").Valid())
}
