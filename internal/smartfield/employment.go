package smartfield

import (
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// Occupations offered by the consulate forms. "other" opens a free
// text answer.
var OccupationOptions = []string{
	"adm_tech_service_staff",
	"architect",
	"artisan",
	"artist",
	"banker",
	"blue_collar_worker",
	"chauffeur",
	"chemist",
	"civil_servant",
	"company_executive",
	"computer_expert",
	"diplomat",
	"diplomat_private_servant",
	"electronics_expert",
	"farmer",
	"fashion_cosmetics",
	"journalist",
	"legal_profession",
	"magistrate",
	"manager",
	"med_paramed_prof",
	"other_technician",
	"pensioner",
	"policeman_soldier",
	"politician",
	"professional_sportsperson",
	"scientific_researcher",
	"seaman",
	"self_employed",
	"teacher",
	"tradesman",
	"white_collar_worker",
	"other",
}

// employmentMachine walks the employed/student/retired decision tree.
// Switching a branch answer actively zeroes every field of the
// abandoned branch so stale answers cannot leak into the submission.
type employmentMachine struct{}

func (employmentMachine) Key() string { return "employment_status" }

// entity is the employer/school sub-record shared by both branches.
type entity struct{ prefix string }

func (e entity) key(suffix string) string { return e.prefix + "_" + suffix }

var entityTextFields = []string{"name", "address", "postal_code", "city"}

func (e entity) clear(doc Document) {
	for _, f := range append(entityTextFields, "country", "country_custom", "phone") {
		doc[e.key(f)] = ""
	}
}

// apply handles an edit to one of the entity's fields and reports
// whether the field belonged to it. Text fields and the custom country
// fold at input, the phone passes through raw.
func (e entity) apply(doc Document, field, value string) bool {
	for _, f := range entityTextFields {
		if field == e.key(f) {
			doc[field] = turkish.Fold(value)
			return true
		}
	}
	switch field {
	case e.key("country"):
		doc[field] = value
		if value == ChoiceTurkey {
			doc[e.key("country_custom")] = ""
		}
		return true
	case e.key("country_custom"):
		doc[field] = turkish.Fold(value)
		return true
	case e.key("phone"):
		doc[field] = value
		return true
	}
	return false
}

func (e entity) errors(doc Document, codes []string) []string {
	for _, f := range entityTextFields {
		if strings.TrimSpace(doc.Str(e.key(f))) == "" {
			codes = append(codes, camel(e.prefix, f)+"Required")
		}
	}
	if doc.Str(e.key("country")) == "" {
		codes = append(codes, e.prefix+"CountryRequired")
	}
	if doc.Str(e.key("country")) == ChoiceOther && strings.TrimSpace(doc.Str(e.key("country_custom"))) == "" {
		codes = append(codes, e.prefix+"CustomCountryRequired")
	}
	if strings.TrimSpace(doc.Str(e.key("phone"))) == "" {
		codes = append(codes, e.prefix+"PhoneRequired")
	}
	return codes
}

// camel joins a prefix and a snake_case suffix into the camelCase
// message codes the portal translates (employer + postal_code ->
// employerPostalCodeRequired without the suffix).
func camel(prefix, snake string) string {
	out := prefix
	for _, part := range strings.Split(snake, "_") {
		out += strings.ToUpper(part[:1]) + part[1:]
	}
	return out
}

var (
	employer = entity{prefix: "employer"}
	school   = entity{prefix: "school"}
)

func (m employmentMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	switch field {
	case "is_employed":
		out["is_employed"] = value
		if value == "yes" {
			out["is_student"] = ""
			out["is_retired"] = ""
			school.clear(out)
		} else if value == "no" {
			out["occupation"] = ""
			out["occupation_other"] = ""
			out["title_description"] = ""
			employer.clear(out)
		}
	case "is_student":
		out["is_student"] = value
		if value == "yes" {
			out["is_retired"] = ""
		} else if value == "no" {
			school.clear(out)
		}
	case "is_retired":
		out["is_retired"] = value
	case "occupation":
		out["occupation"] = value
		if value != "other" {
			out["occupation_other"] = ""
		}
	case "occupation_other", "title_description":
		out[field] = turkish.Fold(value)
	default:
		if !employer.apply(out, field, value) && !school.apply(out, field, value) {
			out[field] = value
		}
	}
	return finalize(m, out)
}

func (m employmentMachine) Errors(doc Document) []string {
	var codes []string

	employed := doc.Str("is_employed")
	if employed == "" {
		return append(codes, "mustChoose")
	}

	if employed == "yes" {
		if doc.Str("occupation") == "" {
			codes = append(codes, "occupationRequired")
		}
		if doc.Str("occupation") == "other" && strings.TrimSpace(doc.Str("occupation_other")) == "" {
			codes = append(codes, "occupationOtherRequired")
		}
		return employer.errors(doc, codes)
	}

	student := doc.Str("is_student")
	if student == "" {
		return append(codes, "studentMustChoose")
	}
	if student == "yes" {
		return school.errors(doc, codes)
	}
	if doc.Str("is_retired") == "" {
		codes = append(codes, "retiredMustChoose")
	}
	return codes
}
