package smartfield

import (
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// Turkey-or-other selector values shared by the country pickers.
const (
	ChoiceTurkey = "turkey"
	ChoiceOther  = "other"
)

// countrySelect is the shared two-state country picker: a selection
// field holding "turkey" or "other", and a free-text field that is
// folded at input and cleared when Turkey is chosen. The selection
// value itself is never folded; persisted documents carry it verbatim.
type countrySelect struct {
	field       string
	customField string
}

// apply handles an edit to either field and reports whether it did.
func (c countrySelect) apply(doc Document, field, value string) bool {
	switch field {
	case c.field:
		doc[c.field] = value
		if value == ChoiceTurkey {
			doc[c.customField] = ""
		}
		return true
	case c.customField:
		doc[c.customField] = turkish.Fold(value)
		return true
	}
	return false
}

// errors appends the picker's constraint failures to codes.
func (c countrySelect) errors(doc Document, codes []string, notChosen, customEmpty string) []string {
	if doc.Str(c.field) == "" {
		codes = append(codes, notChosen)
	}
	if doc.Str(c.field) == ChoiceOther && strings.TrimSpace(doc.Str(c.customField)) == "" {
		codes = append(codes, customEmpty)
	}
	return codes
}
