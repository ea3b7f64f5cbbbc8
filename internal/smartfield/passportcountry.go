package smartfield

// passportCountryMachine: issuing country, just the shared picker.
type passportCountryMachine struct{}

var passportCountry = countrySelect{field: "country", customField: "custom_country"}

func (passportCountryMachine) Key() string { return "passport_country" }

func (m passportCountryMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	if !passportCountry.apply(out, field, value) {
		out[field] = value
	}
	return finalize(m, out)
}

func (passportCountryMachine) Errors(doc Document) []string {
	return passportCountry.errors(doc, nil, "mustChoose", "customCountryRequired")
}
