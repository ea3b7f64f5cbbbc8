package smartfield

import "sort"

// Machine is the behaviour behind one smart-field template.
type Machine interface {
	// Key returns the template key the machine answers to.
	Key() string
	// Apply records one sub-field edit on a copy of doc, running the
	// template's branch resets and input filters, and refreshes the
	// _valid sentinel. It never mutates doc.
	Apply(doc Document, field, value string) Document
	// Errors reports the message codes for every failed constraint.
	Errors(doc Document) []string
}

var registry = map[string]Machine{}

func register(m Machine) {
	registry[m.Key()] = m
}

func init() {
	register(nationalityMachine{})
	register(travelDatesMachine{})
	register(birthPlaceMachine{})
	register(addressInfoMachine{})
	register(employmentMachine{})
	register(passportCountryMachine{})
	register(fingerprintVisaMachine{})
}

// Lookup returns the machine registered for a template key.
func Lookup(key string) (Machine, bool) {
	m, ok := registry[key]
	return m, ok
}

// Registered reports whether a template key has a machine behind it.
// Assignments whose key is not registered are dropped from the intake
// form, never surfaced as errors.
func Registered(key string) bool {
	_, ok := registry[key]
	return ok
}

// Keys lists the registered template keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// finalize recomputes the sentinel after an edit. It only writes when
// the stored value disagrees with the recomputed one.
func finalize(m Machine, doc Document) Document {
	valid := len(m.Errors(doc)) == 0
	if cur, ok := doc[ValidKey].(bool); !ok || cur != valid {
		doc[ValidKey] = valid
	}
	return doc
}
