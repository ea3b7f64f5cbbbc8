package intake

import (
	"github.com/atlasgate/visaport/internal/smartfield"
)

// Snapshot is one resolver response: the field lists for a given
// country/visa-type context.
type Snapshot struct {
	Fields []FormField
	Smart  []SmartAssignment
}

// Form is one applicant's in-flight application. It is driven by a
// single goroutine (one portal session); nothing here is safe for
// concurrent use.
type Form struct {
	fields []FormField
	smart  []SmartAssignment

	values map[string]string
	docs   map[string]smartfield.Document

	// Monotonic load tokens. Context switches (the applicant changing
	// country or visa type) start a new load; a response carrying a
	// stale token is discarded, so a slow early response can never
	// overwrite the fields of a later context.
	issued  uint64
	applied uint64
}

// NewForm returns an empty form with no fields loaded.
func NewForm() *Form {
	return &Form{
		values: map[string]string{},
		docs:   map[string]smartfield.Document{},
	}
}

// BeginLoad starts a (re)load and returns its token. Any token issued
// earlier is stale from this point on.
func (f *Form) BeginLoad() uint64 {
	f.issued++
	return f.issued
}

// CompleteLoad installs a resolver snapshot if its token is still
// current. Stale completions return false and change nothing.
// Smart assignments without a registered machine are dropped here;
// entered answers for fields that survive the reload are kept.
func (f *Form) CompleteLoad(token uint64, snap Snapshot) bool {
	if token != f.issued || token <= f.applied {
		return false
	}
	f.applied = token

	f.fields = snap.Fields
	f.smart = f.smart[:0]
	for _, sa := range snap.Smart {
		if smartfield.Registered(sa.TemplateKey) {
			f.smart = append(f.smart, sa)
		}
	}
	return true
}

// Fields returns the resolved simple fields in display order.
func (f *Form) Fields() []FormField { return f.fields }

// SmartAssignments returns the resolved smart placements in display order.
func (f *Form) SmartAssignments() []SmartAssignment { return f.smart }

// Sections groups the resolved fields for rendering.
func (f *Form) Sections() []Section { return GroupSections(f.fields, f.smart) }

// SetValue records a simple-field answer.
func (f *Form) SetValue(fieldKey, value string) {
	f.values[fieldKey] = value
}

// Value returns the current answer for a field key.
func (f *Form) Value(fieldKey string) string { return f.values[fieldKey] }

// SmartApply routes one sub-field edit to the template's machine. The
// machine runs its branch resets and refreshes the document's _valid.
// Unregistered keys are ignored.
func (f *Form) SmartApply(templateKey, field, value string) {
	m, ok := smartfield.Lookup(templateKey)
	if !ok {
		return
	}
	doc := f.docs[templateKey]
	if doc == nil {
		doc = smartfield.Document{}
	}
	f.docs[templateKey] = m.Apply(doc, field, value)
}

// SmartDocument returns the current sub-document for a template key.
func (f *Form) SmartDocument(templateKey string) smartfield.Document {
	return f.docs[templateKey]
}

// RestoreSmartDocument installs a previously saved sub-document (a
// resumed draft or a group member being edited) and recomputes its
// sentinel.
func (f *Form) RestoreSmartDocument(templateKey string, doc smartfield.Document) {
	m, ok := smartfield.Lookup(templateKey)
	if !ok {
		return
	}
	restored := doc.Clone()
	valid := len(m.Errors(restored)) == 0
	restored[smartfield.ValidKey] = valid
	f.docs[templateKey] = restored
}

// Report is the outcome of validating a whole form.
type Report struct {
	// Fields maps field keys to their failed message codes.
	Fields map[string][]string
	// Summary lists the labels of failing fields in display order,
	// for the aggregated error banner.
	Summary []string
	// InvalidSmart lists assigned template keys whose documents are
	// not valid.
	InvalidSmart []string
}

// OK reports whether the form may be submitted.
func (r Report) OK() bool {
	return len(r.Fields) == 0 && len(r.InvalidSmart) == 0
}

// Validate runs every field's validator over the current answers and
// checks every assigned smart field's sentinel. Smart fields gate on
// _valid alone; their machines have already judged the details.
func (f *Form) Validate() Report {
	report := Report{Fields: map[string][]string{}}
	for _, field := range f.fields {
		codes := Validate(field, f.values[field.FieldKey])
		if len(codes) > 0 {
			report.Fields[field.FieldKey] = codes
			report.Summary = append(report.Summary, field.FieldLabel)
		}
	}
	for _, sa := range f.smart {
		if !f.docs[sa.TemplateKey].Valid() {
			report.InvalidSmart = append(report.InvalidSmart, sa.TemplateKey)
		}
	}
	return report
}
