package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	exact := func(n int) *int { return &n }

	tests := []struct {
		name  string
		field FormField
		value string
		want  []string
	}{
		{"required text empty", FormField{FieldType: "text", IsRequired: true}, "", []string{CodeRequired}},
		{"required text whitespace", FormField{FieldType: "text", IsRequired: true}, "   ", []string{CodeRequired}},
		{"required text filled", FormField{FieldType: "text", IsRequired: true}, "Ankara", nil},
		{"optional text empty", FormField{FieldType: "text"}, "", nil},

		{"required email empty", FormField{FieldType: "email", IsRequired: true}, "", []string{CodeRequired}},
		{"required email malformed", FormField{FieldType: "email", IsRequired: true}, "not-an-email", []string{CodeInvalidEmail}},
		{"required email ok", FormField{FieldType: "email", IsRequired: true}, "ayse@example.com", nil},
		{"optional email empty", FormField{FieldType: "email"}, "", nil},
		{"optional email malformed", FormField{FieldType: "email"}, "nope@", []string{CodeInvalidEmail}},

		{"required tel short", FormField{FieldType: "tel", IsRequired: true}, "12345", []string{CodeRequired}},
		{"required tel ok", FormField{FieldType: "tel", IsRequired: true}, "+905551112233", nil},
		{"optional tel anything", FormField{FieldType: "tel"}, "x", nil},

		{"exact length ok", FormField{FieldType: "text", IsRequired: true, MaxChars: exact(11)}, "12345678901", nil},
		{"exact length short", FormField{FieldType: "text", IsRequired: true, MaxChars: exact(11)}, "1234567890", []string{"exactChars:11"}},
		{"exact length long", FormField{FieldType: "text", IsRequired: true, MaxChars: exact(11)}, "123456789012", []string{"exactChars:11"}},
		{"exact length optional empty", FormField{FieldType: "text", MaxChars: exact(11)}, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.field, tt.value))
		})
	}
}

func TestValidFieldType(t *testing.T) {
	for _, ft := range FieldTypes {
		assert.True(t, ValidFieldType(ft), ft)
	}
	assert.False(t, ValidFieldType("checkbox"))
	assert.False(t, ValidFieldType(""))
}

func TestSplitOptions(t *testing.T) {
	assert.Nil(t, SplitOptions(""))
	assert.Nil(t, SplitOptions("   "))
	assert.Equal(t, []string{"single", "married"}, SplitOptions("single,married"))
	assert.Equal(t, []string{"single", "married"}, SplitOptions(" single , married , "))
}
