package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanOutput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bonjour le monde", "Bonjour le monde"},
		{"label prefix", "Translation: Bonjour", "Bonjour"},
		{"here is prefix", "Here is the translation: Bonjour", "Bonjour"},
		{"wrapping quotes", `"Bonjour le monde"`, "Bonjour le monde"},
		{"quotes kept when inner quote", `"He said "hi""`, `"He said "hi""`},
		{"double spaces", "Bonjour  le   monde", "Bonjour le monde"},
		{"space before punctuation", "Bonjour , le monde !", "Bonjour, le monde!"},
		{"whitespace", "  Bonjour \n", "Bonjour"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanOutput(tc.in))
		})
	}
}
