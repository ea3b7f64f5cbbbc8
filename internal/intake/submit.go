package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlasgate/visaport/internal/turkish"
)

// DefaultCurrency applies when a country has no configured fees.
const DefaultCurrency = "TL"

// Fees is the country-derived fee metadata stamped onto a submission.
type Fees struct {
	Service   float64 `json:"service_fee"`
	Consulate float64 `json:"consulate_fee"`
	Currency  string  `json:"currency"`
}

// DefaultFees is the zero-fee fallback.
func DefaultFees() Fees { return Fees{Currency: DefaultCurrency} }

// FeeSource looks up a country's fee schedule by name.
type FeeSource interface {
	CountryFees(ctx context.Context, country string) (Fees, error)
}

// ValidationError is returned when a form fails its pre-submit checks.
// Nothing has been persisted and the form state is intact.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submission rejected: %d field error(s), %d invalid smart field(s)",
		len(e.Report.Fields), len(e.Report.InvalidSmart))
}

// Submission is a validated, normalized application ready to persist.
// Standard answers are promoted to columns; Custom holds everything
// else plus the _smart namespace.
type Submission struct {
	Country  string
	VisaType string

	FullName *string
	Standard map[string]string
	Custom   map[string]any
	Fees     Fees
}

// Submit validates the form and, if it passes, normalizes it into a
// Submission. Simple-field answers are folded to consulate form. Smart
// documents are persisted verbatim, selection values and sentinel
// included; their free-text entries were already folded at input by
// the machines. The fee lookup falls back to zero fees and the default
// currency when the country has none configured or the lookup fails.
func (f *Form) Submit(ctx context.Context, country, visaType, city string, fees FeeSource) (*Submission, error) {
	if report := f.Validate(); !report.OK() {
		return nil, &ValidationError{Report: report}
	}

	sub := &Submission{
		Country:  country,
		VisaType: visaType,
		Standard: map[string]string{},
		Custom:   map[string]any{},
	}

	var name, surname, explicitFull string
	for _, field := range f.fields {
		value := f.values[field.FieldKey]
		if !field.IsStandard {
			sub.Custom[field.FieldKey] = turkish.Fold(value)
			continue
		}
		switch field.FieldKey {
		case "name":
			name = value
		case "surname":
			surname = value
		case "full_name":
			explicitFull = value
		case "date_expiry":
			// Legacy key for the passport expiry column.
			sub.Standard["passport_expiry"] = turkish.Fold(value)
		default:
			sub.Standard[field.FieldKey] = turkish.Fold(value)
		}
	}

	if full := deriveFullName(name, surname, explicitFull); full != "" {
		folded := turkish.Fold(full)
		sub.FullName = &folded
	}

	if city != "" {
		sub.Custom["application_city"] = turkish.Fold(city)
	}

	smart := map[string]any{}
	for _, sa := range f.smart {
		doc := f.docs[sa.TemplateKey]
		if doc.Answered() {
			smart[sa.TemplateKey] = map[string]any(doc.Clone())
		}
	}
	if len(smart) > 0 {
		sub.Custom["_smart"] = smart
	}

	sub.Fees = lookupFees(ctx, fees, country)
	return sub, nil
}

// deriveFullName joins name and surname when both are present, falls
// back to an explicit full_name answer, or reports none.
func deriveFullName(name, surname, explicit string) string {
	name, surname = strings.TrimSpace(name), strings.TrimSpace(surname)
	if name != "" && surname != "" {
		return name + " " + surname
	}
	if explicit != "" {
		return strings.TrimSpace(explicit)
	}
	return ""
}

func lookupFees(ctx context.Context, source FeeSource, country string) Fees {
	if source == nil {
		return DefaultFees()
	}
	fees, err := source.CountryFees(ctx, country)
	if err != nil {
		return DefaultFees()
	}
	if fees.Currency == "" {
		fees.Currency = DefaultCurrency
	}
	return fees
}
