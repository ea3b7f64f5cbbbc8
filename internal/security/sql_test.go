package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `ayse`, EscapeLikePattern(`ayse`))
	assert.Equal(t, `100\%`, EscapeLikePattern(`100%`))
	assert.Equal(t, `a\_b`, EscapeLikePattern(`a_b`))
	assert.Equal(t, `c:\\dir`, EscapeLikePattern(`c:\dir`))
}

func TestMultiSearchCondition(t *testing.T) {
	cond, params := MultiSearchCondition([]string{"full_name", "tracking_code"}, "ay%se")
	assert.Equal(t, `(full_name ILIKE ? ESCAPE '\' OR tracking_code ILIKE ? ESCAPE '\')`, cond)
	assert.Equal(t, []interface{}{`%ay\%se%`, `%ay\%se%`}, params)

	cond, params = MultiSearchCondition([]string{"bad-column; drop"}, "x")
	assert.Empty(t, cond)
	assert.Nil(t, params)

	cond, _ = MultiSearchCondition([]string{"full_name"}, "")
	assert.Empty(t, cond)
}
