package smartfield

import "time"

// Clock hook for the travel-dates past check.
var timeNow = time.Now

// travelDatesMachine: departure and return as ISO dates. Zero-padded
// ISO strings compare correctly as plain strings, so the checks stay
// string comparisons.
type travelDatesMachine struct{}

func (travelDatesMachine) Key() string { return "travel_dates" }

func (m travelDatesMachine) Apply(doc Document, field, value string) Document {
	out := doc.Clone()
	out[field] = value
	return finalize(m, out)
}

func (travelDatesMachine) Errors(doc Document) []string {
	today := timeNow().Format("2006-01-02")
	departure := doc.Str("departure_date")
	ret := doc.Str("return_date")

	var codes []string
	if departure == "" {
		codes = append(codes, "departureRequired")
	}
	if ret == "" {
		codes = append(codes, "returnRequired")
	}
	if departure != "" && departure < today {
		codes = append(codes, "departurePast")
	}
	if departure != "" && ret != "" && ret <= departure {
		codes = append(codes, "returnBeforeDeparture")
	}
	return codes
}
