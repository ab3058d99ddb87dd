package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First sentence. Second sentence! Third one?")
	assert.Equal(t, []string{"First sentence.", "Second sentence!", "Third one?"}, got)
}

func TestSplitSentencesSingle(t *testing.T) {
	assert.Equal(t, []string{"Just one sentence."}, SplitSentences("Just one sentence."))
	assert.Equal(t, []string{"no punctuation at all"}, SplitSentences("no punctuation at all"))
}

func TestSplitSentencesNoUppercaseNoSplit(t *testing.T) {
	// a period followed by a lowercase letter is not a boundary
	got := SplitSentences("version 1.2 is out. it works")
	assert.Equal(t, []string{"version 1.2 is out. it works"}, got)
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Nil(t, SplitSentences(""))
	assert.Nil(t, SplitSentences("   "))
}

func TestSplitSentencesTrailingQuote(t *testing.T) {
	got := SplitSentences(`He said "stop." Then he left.`)
	assert.Equal(t, []string{`He said "stop."`, "Then he left."}, got)
}
