package intake

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Message codes the validators report. exactChars carries its length,
// so it is built with CodeExactChars.
const (
	CodeRequired     = "required"
	CodeInvalidEmail = "invalidEmail"
)

// CodeExactChars returns the strict-length message code for n.
func CodeExactChars(n int) string { return fmt.Sprintf("exactChars:%d", n) }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate derives the field's one validation rule from its type and
// metadata and applies it to value. The returned message codes are
// what the portal renders; an empty slice means the answer passes.
//
// max_chars is a strict-length contract (fixed-length national IDs),
// not a truncation limit, and never applies to email or tel fields.
func Validate(f FormField, value string) []string {
	trimmed := strings.TrimSpace(value)

	switch f.FieldType {
	case "email":
		if trimmed == "" {
			if f.IsRequired {
				return []string{CodeRequired}
			}
			return nil
		}
		if !emailPattern.MatchString(trimmed) {
			return []string{CodeInvalidEmail}
		}
		return nil

	case "tel":
		if f.IsRequired && utf8.RuneCountInString(trimmed) < 7 {
			return []string{CodeRequired}
		}
		return nil

	default:
		var codes []string
		if f.IsRequired && trimmed == "" {
			codes = append(codes, CodeRequired)
		}
		if f.MaxChars != nil && trimmed != "" && utf8.RuneCountInString(trimmed) != *f.MaxChars {
			codes = append(codes, CodeExactChars(*f.MaxChars))
		}
		return codes
	}
}
