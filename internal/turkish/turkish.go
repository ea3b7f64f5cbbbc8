// Package turkish folds Turkish text to the uppercase ASCII form the
// consulate paperwork expects.
package turkish

import "strings"

var foldMap = map[rune]rune{
	'ç': 'C', 'Ç': 'C',
	'ğ': 'G', 'Ğ': 'G',
	'ı': 'I', 'İ': 'I',
	'ö': 'O', 'Ö': 'O',
	'ş': 'S', 'Ş': 'S',
	'ü': 'U', 'Ü': 'U',
}

// Fold replaces Turkish-specific characters with their ASCII
// counterparts and uppercases the result. All free-text answers pass
// through here before persistence.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := foldMap[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
