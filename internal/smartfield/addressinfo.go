package smartfield

import (
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// addressInfoMachine: residential address block. Free text folds at
// input; the country selection passes through verbatim.
type addressInfoMachine struct{}

var addressCountry = countrySelect{field: "country", customField: "custom_country"}

var addressTextFields = map[string]bool{
	"address":     true,
	"postal_code": true,
	"city":        true,
}

func (addressInfoMachine) Key() string { return "address_info" }

func (m addressInfoMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	switch {
	case addressTextFields[field]:
		out[field] = turkish.Fold(value)
	case addressCountry.apply(out, field, value):
	default:
		out[field] = value
	}
	return finalize(m, out)
}

func (addressInfoMachine) Errors(doc Document) []string {
	var codes []string
	for _, f := range []struct{ key, code string }{
		{"address", "addressRequired"},
		{"postal_code", "postalCodeRequired"},
		{"city", "cityRequired"},
	} {
		if strings.TrimSpace(doc.Str(f.key)) == "" {
			codes = append(codes, f.code)
		}
	}
	return addressCountry.errors(doc, codes, "countryRequired", "customCountryRequired")
}
