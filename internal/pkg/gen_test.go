package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGameCode(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		code, err := GenerateGameCode()
		require.NoError(t, err)

		// Codes stay within the unambiguous alphabet
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q in %s", r, code)
		}

		seen[code] = struct{}{}
	}

	// 100 draws from a 32^6 space should not collide
	assert.Len(t, seen, 100)
}

func TestGenerateGuestID(t *testing.T) {
	first := GenerateGuestID()
	second := GenerateGuestID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
