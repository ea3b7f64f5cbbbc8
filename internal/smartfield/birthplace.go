package smartfield

import (
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// birthPlaceMachine: birth city plus the shared country picker.
type birthPlaceMachine struct{}

var birthCountry = countrySelect{field: "birth_country", customField: "custom_country"}

func (birthPlaceMachine) Key() string { return "birth_place" }

func (m birthPlaceMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	switch {
	case field == "birth_city":
		out["birth_city"] = turkish.Fold(value)
	case birthCountry.apply(out, field, value):
	default:
		out[field] = value
	}
	return finalize(m, out)
}

func (birthPlaceMachine) Errors(doc Document) []string {
	var codes []string
	if strings.TrimSpace(doc.Str("birth_city")) == "" {
		codes = append(codes, "cityRequired")
	}
	return birthCountry.errors(doc, codes, "countryRequired", "customCountryRequired")
}
