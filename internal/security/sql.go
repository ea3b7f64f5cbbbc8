// Package security provides SQL search helpers for the admin screens
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// validColumnRegex matches the column names the search helpers accept:
// lowercase letters, digits, underscores, starting with a letter.
var validColumnRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// EscapeLikePattern escapes special characters in LIKE patterns
func EscapeLikePattern(pattern string) string {
	// Escape the special characters used in SQL LIKE: %, _, and \
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// SearchCondition builds a safe case-insensitive contains condition
// for one column, ready for gorm's Where. Returns "" for an invalid
// column name.
func SearchCondition(column, term string) (string, []interface{}) {
	if !validColumnRegex.MatchString(column) || term == "" {
		return "", nil
	}
	condition := fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column)
	return condition, []interface{}{"%" + EscapeLikePattern(term) + "%"}
}

// MultiSearchCondition ORs the contains condition over several columns
// with a single shared parameter. Invalid column names are dropped.
func MultiSearchCondition(columns []string, term string) (string, []interface{}) {
	if len(columns) == 0 || term == "" {
		return "", nil
	}

	conditions := make([]string, 0, len(columns))
	for _, col := range columns {
		if validColumnRegex.MatchString(col) {
			conditions = append(conditions, fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, col))
		}
	}
	if len(conditions) == 0 {
		return "", nil
	}

	params := make([]interface{}, len(conditions))
	param := "%" + EscapeLikePattern(term) + "%"
	for i := range params {
		params[i] = param
	}
	return "(" + strings.Join(conditions, " OR ") + ")", params
}
