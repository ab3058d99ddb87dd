package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskLinksAndCode(t *testing.T) {
	in := "See [the guide](docs/guide.md) and run `make build` for {version}."
	masked, tokens, unmask := Mask(in)

	require.Len(t, tokens, 3)
	assert.NotContains(t, masked, "docs/guide.md")
	assert.NotContains(t, masked, "make build")
	assert.NotContains(t, masked, "{version}")
	assert.Contains(t, masked, "__PH_0__")
	assert.Equal(t, in, unmask(masked))
}

func TestMaskImage(t *testing.T) {
	in := "Logo: ![alt text](img/logo.png)"
	masked, tokens, unmask := Mask(in)
	require.Len(t, tokens, 1)
	assert.Equal(t, "Logo: __PH_0__", masked)
	assert.Equal(t, in, unmask(masked))
}

func TestMaskNothingToMask(t *testing.T) {
	masked, tokens, unmask := Mask("plain sentence")
	assert.Empty(t, tokens)
	assert.Equal(t, "plain sentence", masked)
	assert.Equal(t, "x", unmask("x"))
}

func TestTokensSurvived(t *testing.T) {
	tokens := []string{"__PH_0__", "__PH_1__"}
	assert.True(t, TokensSurvived("a __PH_0__ b __PH_1__", tokens))
	assert.False(t, TokensSurvived("a __PH_0__ b", tokens))
	assert.False(t, TokensSurvived("__PH_0__ __PH_0__ __PH_1__", tokens))
}

func TestStripStrayTokens(t *testing.T) {
	got := StripStrayTokens("keep __PH_0__ drop __PH_7__", []string{"__PH_0__"})
	assert.Equal(t, "keep __PH_0__ drop ", got)
}
