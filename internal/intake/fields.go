// Package intake assembles and interprets the portal application form:
// resolved field lists are grouped into sections, answers are
// validated per field type, and a finished form is normalized into the
// record the back office works with.
package intake

import "strings"

// Field types a FieldDefinition may carry.
var FieldTypes = []string{"text", "email", "date", "tel", "number", "select", "textarea"}

// ValidFieldType reports whether t is one of FieldTypes.
func ValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Section names the form knows. Anything else collapses into "other".
const (
	SectionPersonal    = "personal_details"
	SectionBirthInfo   = "birth_info"
	SectionNationality = "nationality_civil"
	SectionAddress     = "address"
	SectionPassport    = "passport"
	SectionFingerprint = "fingerprint"
	SectionTravel      = "travel"
	SectionEmployment  = "employment"
	SectionOther       = "other"
)

// standardKeys is the fixed vocabulary of field keys that map to real
// application columns. Everything else lands in the custom_fields blob.
var standardKeys = map[string]bool{
	"full_name":       true,
	"name":            true,
	"surname":         true,
	"phone":           true,
	"email":           true,
	"id_number":       true,
	"date_of_birth":   true,
	"passport_no":     true,
	"passport_expiry": true,
	"date_expiry":     true,
}

// IsStandardKey reports whether a field key belongs to the standard
// column vocabulary.
func IsStandardKey(key string) bool { return standardKeys[key] }

// FormField is a resolved simple field, ready to render and validate.
// Options carry the choices of select fields; the client picks the TR
// variants for the Turkish locale.
type FormField struct {
	ID            uint     `json:"id"`
	FieldKey      string   `json:"field_key"`
	FieldLabel    string   `json:"field_label"`
	FieldLabelTR  string   `json:"field_label_tr,omitempty"`
	FieldType     string   `json:"field_type"`
	Placeholder   string   `json:"placeholder,omitempty"`
	PlaceholderTR string   `json:"placeholder_tr,omitempty"`
	Options       []string `json:"options,omitempty"`
	OptionsTR     []string `json:"options_tr,omitempty"`
	IsRequired    bool     `json:"is_required"`
	IsStandard    bool     `json:"is_standard"`
	MaxChars      *int     `json:"max_chars,omitempty"`
	SortOrder     int      `json:"sort_order"`
	Section       string   `json:"section"`
}

// SplitOptions parses a comma-separated option list into its values.
// Whitespace around entries is dropped, empty entries too.
func SplitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SmartAssignment is a resolved smart-field placement with the
// template's labels denormalized in.
type SmartAssignment struct {
	ID            uint   `json:"id"`
	TemplateKey   string `json:"template_key"`
	Label         string `json:"label"`
	LabelTR       string `json:"label_tr,omitempty"`
	Description   string `json:"description,omitempty"`
	DescriptionTR string `json:"description_tr,omitempty"`
	IsRequired    bool   `json:"is_required"`
	SortOrder     int    `json:"sort_order"`
	Section       string `json:"section"`
}

// PickLabel returns the Turkish variant for the "tr" locale when one
// exists, otherwise the base label.
func PickLabel(locale, base, tr string) string {
	if locale == "tr" && tr != "" {
		return tr
	}
	return base
}
