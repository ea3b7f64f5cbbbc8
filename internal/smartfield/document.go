// Package smartfield implements the composite intake fields as state
// machines. Each machine owns one template key and is a pure function
// of its sub-document: applying an edit runs the template's branch
// resets and input filters, then refreshes the _valid sentinel.
package smartfield

// ValidKey is the sentinel entry every sub-document carries. It is set
// by the machines and read by the submission gate; persistence passes
// it through untouched.
const ValidKey = "_valid"

// Document is the answer state of one smart field instance: the
// template's sub-field keys mapped to string answers, plus ValidKey.
type Document map[string]any

// Str returns the string answer stored under key, or "" when absent.
func (d Document) Str(key string) string {
	v, _ := d[key].(string)
	return v
}

// Valid reports whether the document's sentinel is set and true.
func (d Document) Valid() bool {
	v, _ := d[ValidKey].(bool)
	return v
}

// Clone returns a copy the caller may mutate.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Answered reports whether the document holds at least one non-empty
// answer, ignoring the sentinel. Unanswered documents are dropped from
// the persisted _smart namespace.
func (d Document) Answered() bool {
	for k, v := range d {
		if k == ValidKey {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return true
		}
	}
	return false
}

