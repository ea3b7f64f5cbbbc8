package smartfield

import (
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// nationalityMachine: Turkish citizen or a free-text nationality.
// Choosing "tc" clears the free text.
type nationalityMachine struct{}

func (nationalityMachine) Key() string { return "nationality" }

func (m nationalityMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	switch field {
	case "selection":
		out["selection"] = value
		if value == "tc" {
			out["custom_nationality"] = ""
		}
	case "custom_nationality":
		out["custom_nationality"] = turkish.Fold(value)
	default:
		out[field] = value
	}
	return finalize(m, out)
}

func (nationalityMachine) Errors(doc Document) []string {
	var codes []string
	if doc.Str("selection") == "" {
		codes = append(codes, "mustChoose")
	}
	if doc.Str("selection") == "other" && strings.TrimSpace(doc.Str("custom_nationality")) == "" {
		codes = append(codes, "customRequired")
	}
	return codes
}
