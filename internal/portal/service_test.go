package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonalUpdates(t *testing.T) {
	updates := personalUpdates(PersonalInfo{
		FullName: "  Ayşe Çelik ",
		IDNumber: " 12345678901 ",
		Phone:    "+90 555 111 22 33",
		Email:    " Ayse.Celik@example.com ",
	})

	assert.Equal(t, "AYSE CELIK", updates["full_name"])
	assert.Equal(t, "12345678901", updates["id_number"])
	assert.Equal(t, "+90 555 111 22 33", updates["phone"])
	// The mailbox address is stored as entered, only trimmed.
	assert.Equal(t, "Ayse.Celik@example.com", updates["email"])
}
