package turkish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase specials", "çğıöşü", "CGIOSU"},
		{"uppercase specials", "ÇĞİÖŞÜ", "CGIOSU"},
		{"mixed word", "İstanbul", "ISTANBUL"},
		{"city with dotless i", "Diyarbakır", "DIYARBAKIR"},
		{"plain ascii", "ankara", "ANKARA"},
		{"already uppercase", "IZMIR", "IZMIR"},
		{"digits and punctuation untouched", "Şişli 34-B/7", "SISLI 34-B/7"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}
