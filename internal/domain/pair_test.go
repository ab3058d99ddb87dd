package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	p, err := ParsePair("fr-en")
	require.NoError(t, err)
	assert.Equal(t, "fr", p.Src)
	assert.Equal(t, "en", p.Tgt)
	assert.Equal(t, "fr-en", p.String())
	assert.Equal(t, "en-fr", p.Reverse().String())

	p, err = ParsePair("  FR-EN ")
	require.NoError(t, err)
	assert.Equal(t, "fr-en", p.String())

	for _, bad := range []string{"", "fr", "fr-", "-en", "fr-fr", "french to english"} {
		_, err := ParsePair(bad)
		assert.Error(t, err, bad)
	}
}
