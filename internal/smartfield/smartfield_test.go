package smartfield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, key string, doc Document, edits ...[2]string) Document {
	t.Helper()
	m, ok := Lookup(key)
	require.True(t, ok)
	for _, e := range edits {
		doc = m.Apply(doc, e[0], e[1])
	}
	return doc
}

func TestRegistryKeys(t *testing.T) {
	assert.Equal(t, []string{
		"address_info",
		"birth_place",
		"employment_status",
		"fingerprint_visa",
		"nationality",
		"passport_country",
		"travel_dates",
	}, Keys())

	_, ok := Lookup("civil_status")
	assert.False(t, ok)
}

func TestNationality(t *testing.T) {
	doc := apply(t, "nationality", Document{}, [2]string{"selection", "other"})
	assert.False(t, doc.Valid())

	doc = apply(t, "nationality", doc, [2]string{"custom_nationality", "ingiliz"})
	assert.True(t, doc.Valid())
	assert.Equal(t, "INGILIZ", doc.Str("custom_nationality"))

	// Switching to tc wipes the free text.
	doc = apply(t, "nationality", doc, [2]string{"selection", "tc"})
	assert.True(t, doc.Valid())
	assert.Equal(t, "", doc.Str("custom_nationality"))
}

func TestTravelDates(t *testing.T) {
	old := timeNow
	timeNow = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	defer func() { timeNow = old }()

	m, _ := Lookup("travel_dates")

	tests := []struct {
		name      string
		departure string
		ret       string
		want      []string
	}{
		{"both empty", "", "", []string{"departureRequired", "returnRequired"}},
		{"departure yesterday", "2026-03-09", "2026-03-20", []string{"departurePast"}},
		{"departure today allowed", "2026-03-10", "2026-03-20", nil},
		{"return equals departure", "2026-03-15", "2026-03-15", []string{"returnBeforeDeparture"}},
		{"return before departure", "2026-03-15", "2026-03-12", []string{"returnBeforeDeparture"}},
		{"valid trip", "2026-03-15", "2026-03-22", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{"departure_date": tt.departure, "return_date": tt.ret}
			assert.Equal(t, tt.want, m.Errors(doc))
		})
	}
}

func TestFingerprintVisaNumberFilter(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FRA1234567", "FRA1234567"},
		{"fra1234567", "FRA1234567"},
		{"f1r123456", "FR123456"},
		{"12abc45", "Abc45"},
		{"123456", "456"},
		{"ab", "AB"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filterVisaNumber(tt.input), "input %q", tt.input)
	}
}

func TestFingerprintVisaBranches(t *testing.T) {
	doc := apply(t, "fingerprint_visa", Document{},
		[2]string{"status", "yes_date"},
		[2]string{"visa_number", "FRA1234567"},
		[2]string{"visa_date", "2024-06-01"},
	)
	assert.True(t, doc.Valid())

	// yes_date -> yes_unknown keeps the number, drops the date.
	doc = apply(t, "fingerprint_visa", doc, [2]string{"status", "yes_unknown"})
	assert.True(t, doc.Valid())
	assert.Equal(t, "FRA1234567", doc.Str("visa_number"))
	assert.Equal(t, "", doc.Str("visa_date"))

	// Back to yes_date: the date is required again.
	doc = apply(t, "fingerprint_visa", doc, [2]string{"status", "yes_date"})
	assert.False(t, doc.Valid())
	assert.Equal(t, "FRA1234567", doc.Str("visa_number"))

	// no wipes everything.
	doc = apply(t, "fingerprint_visa", doc, [2]string{"status", "no"})
	assert.True(t, doc.Valid())
	assert.Equal(t, "", doc.Str("visa_number"))
}

func TestFingerprintVisaNumberFormat(t *testing.T) {
	m, _ := Lookup("fingerprint_visa")
	doc := Document{"status": "yes_unknown", "visa_number": "FR1234567"}
	assert.Contains(t, m.Errors(doc), "visaNumberFormatError")
}

func TestEmploymentBranchClearing(t *testing.T) {
	// Fill the employer branch completely.
	doc := apply(t, "employment_status", Document{},
		[2]string{"is_employed", "yes"},
		[2]string{"occupation", "teacher"},
		[2]string{"employer_name", "Özel Okul"},
		[2]string{"employer_address", "Kadıköy"},
		[2]string{"employer_postal_code", "34710"},
		[2]string{"employer_city", "İstanbul"},
		[2]string{"employer_country", ChoiceTurkey},
		[2]string{"employer_phone", "+902161112233"},
	)
	assert.True(t, doc.Valid())
	assert.Equal(t, "OZEL OKUL", doc.Str("employer_name"))

	// Flipping to not-employed zeroes the whole employer branch.
	doc = apply(t, "employment_status", doc, [2]string{"is_employed", "no"})
	assert.False(t, doc.Valid())
	assert.Equal(t, "", doc.Str("occupation"))
	assert.Equal(t, "", doc.Str("employer_name"))
	assert.Equal(t, "", doc.Str("employer_phone"))

	// Student branch, then retreat: school fields are zeroed too.
	doc = apply(t, "employment_status", doc,
		[2]string{"is_student", "yes"},
		[2]string{"school_name", "Üniversite"},
	)
	assert.Equal(t, "UNIVERSITE", doc.Str("school_name"))

	doc = apply(t, "employment_status", doc, [2]string{"is_student", "no"})
	assert.Equal(t, "", doc.Str("school_name"))
	assert.False(t, doc.Valid())

	doc = apply(t, "employment_status", doc, [2]string{"is_retired", "yes"})
	assert.True(t, doc.Valid())
}

func TestEmploymentOccupationOther(t *testing.T) {
	doc := apply(t, "employment_status", Document{},
		[2]string{"is_employed", "yes"},
		[2]string{"occupation", "other"},
	)
	m, _ := Lookup("employment_status")
	assert.Contains(t, m.Errors(doc), "occupationOtherRequired")

	doc = apply(t, "employment_status", doc, [2]string{"occupation_other", "çiftçi"})
	assert.Equal(t, "CIFTCI", doc.Str("occupation_other"))
	assert.NotContains(t, m.Errors(doc), "occupationOtherRequired")

	// Picking a listed occupation clears the free text.
	doc = apply(t, "employment_status", doc, [2]string{"occupation", "farmer"})
	assert.Equal(t, "", doc.Str("occupation_other"))
}

func TestEmploymentEntityCountry(t *testing.T) {
	m, _ := Lookup("employment_status")
	doc := apply(t, "employment_status", Document{},
		[2]string{"is_employed", "yes"},
		[2]string{"employer_country", ChoiceOther},
	)
	assert.Contains(t, m.Errors(doc), "employerCustomCountryRequired")

	doc = apply(t, "employment_status", doc, [2]string{"employer_country_custom", "Almanya"})
	assert.NotContains(t, m.Errors(doc), "employerCustomCountryRequired")

	doc = apply(t, "employment_status", doc, [2]string{"employer_country", ChoiceTurkey})
	assert.Equal(t, "", doc.Str("employer_country_custom"))
}

func TestBirthPlace(t *testing.T) {
	doc := apply(t, "birth_place", Document{},
		[2]string{"birth_city", "Diyarbakır"},
		[2]string{"birth_country", ChoiceTurkey},
	)
	assert.True(t, doc.Valid())
	assert.Equal(t, "DIYARBAKIR", doc.Str("birth_city"))
}

func TestAddressInfoAllRequired(t *testing.T) {
	m, _ := Lookup("address_info")
	assert.Equal(t,
		[]string{"addressRequired", "postalCodeRequired", "cityRequired", "countryRequired"},
		m.Errors(Document{}))

	doc := apply(t, "address_info", Document{},
		[2]string{"address", "Bağdat Cad. 1"},
		[2]string{"postal_code", "34000"},
		[2]string{"city", "Istanbul"},
		[2]string{"country", ChoiceTurkey},
	)
	assert.True(t, doc.Valid())
	assert.Equal(t, "BAGDAT CAD. 1", doc.Str("address"))
	assert.Equal(t, "ISTANBUL", doc.Str("city"))
	// The selection itself stays verbatim.
	assert.Equal(t, ChoiceTurkey, doc.Str("country"))
}

func TestPassportCountry(t *testing.T) {
	doc := apply(t, "passport_country", Document{}, [2]string{"country", ChoiceOther})
	assert.False(t, doc.Valid())
	doc = apply(t, "passport_country", doc, [2]string{"custom_country", "Bulgaristan"})
	assert.True(t, doc.Valid())
	assert.Equal(t, "BULGARISTAN", doc.Str("custom_country"))
	assert.Equal(t, ChoiceOther, doc.Str("country"))
}

func TestSelectionValuesStayLowercase(t *testing.T) {
	doc := apply(t, "nationality", Document{}, [2]string{"selection", "tc"})
	assert.Equal(t, "tc", doc.Str("selection"))
	assert.True(t, doc.Valid())

	doc = apply(t, "fingerprint_visa", Document{}, [2]string{"status", "no"})
	assert.Equal(t, "no", doc.Str("status"))
}

func TestStoredEmploymentDocRevalidatesClean(t *testing.T) {
	doc := apply(t, "employment_status", Document{},
		[2]string{"is_employed", "yes"},
		[2]string{"occupation", "banker"},
		[2]string{"employer_name", "Acme"},
		[2]string{"employer_address", "Levent"},
		[2]string{"employer_postal_code", "34330"},
		[2]string{"employer_city", "İstanbul"},
		[2]string{"employer_country", ChoiceTurkey},
		[2]string{"employer_phone", "+90 212 000 00 00"},
	)
	require.True(t, doc.Valid())

	// A persisted copy of the document must judge the same: branch
	// answers like "yes" and "banker" are stored verbatim, so Errors
	// never falls through to another branch.
	m, _ := Lookup("employment_status")
	assert.Empty(t, m.Errors(doc.Clone()))
	assert.Equal(t, "yes", doc.Str("is_employed"))
	assert.Equal(t, "banker", doc.Str("occupation"))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m, _ := Lookup("nationality")
	original := Document{"selection": "other", "custom_nationality": "x"}
	_ = m.Apply(original, "selection", "tc")
	assert.Equal(t, "other", original.Str("selection"))
	assert.Equal(t, "x", original.Str("custom_nationality"))
}
