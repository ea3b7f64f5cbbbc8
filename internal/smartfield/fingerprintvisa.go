package smartfield

import (
	"regexp"
	"strings"
)

// Visa sticker numbers start with three letters (FRA1234567).
var visaNumberPrefix = regexp.MustCompile(`^[A-Za-z]{3}`)

// fingerprintVisaMachine: has the applicant given fingerprints for a
// prior Schengen visa, and if so which sticker. The visa number
// survives switching between the two "yes" answers; "no" wipes both
// sub-answers.
type fingerprintVisaMachine struct{}

func (fingerprintVisaMachine) Key() string { return "fingerprint_visa" }

func (m fingerprintVisaMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	switch field {
	case "status":
		switch value {
		case "no":
			out["status"] = "no"
			out["visa_number"] = ""
			out["visa_date"] = ""
		case "yes_unknown":
			out["status"] = "yes_unknown"
			out["visa_date"] = ""
		case "yes_date":
			out["status"] = "yes_date"
		}
	case "visa_number":
		out["visa_number"] = filterVisaNumber(value)
	default:
		out[field] = value
	}
	return finalize(m, out)
}

// filterVisaNumber blocks non-letter input for the first three
// positions of the typed value (uppercasing what passes) and lets the
// rest through untouched.
func filterVisaNumber(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i, ch := range []rune(input) {
		if i < 3 {
			if ch >= 'a' && ch <= 'z' {
				b.WriteRune(ch - ('a' - 'A'))
			} else if ch >= 'A' && ch <= 'Z' {
				b.WriteRune(ch)
			}
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (fingerprintVisaMachine) Errors(doc Document) []string {
	status := doc.Str("status")
	number := strings.TrimSpace(doc.Str("visa_number"))

	var codes []string
	if status == "" {
		codes = append(codes, "mustChoose")
	}
	if status == "yes_unknown" || status == "yes_date" {
		if number == "" {
			codes = append(codes, "visaNumberRequired")
		} else if !visaNumberPrefix.MatchString(number) {
			codes = append(codes, "visaNumberFormatError")
		}
	}
	if status == "yes_date" && doc.Str("visa_date") == "" {
		codes = append(codes, "visaDateRequired")
	}
	return codes
}
