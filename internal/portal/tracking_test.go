package portal

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackingCode(t *testing.T) {
	shape := regexp.MustCompile(`^VP-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewTrackingCode()
		require.NoError(t, err)
		assert.Regexp(t, shape, code)
		seen[code] = true
	}
	// 100 draws from a 32^8 space must not collide.
	assert.Len(t, seen, 100)
}
