package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiceSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, DiceSimilarity("same text", "same text"))
	assert.Equal(t, 1.0, DiceSimilarity("Same Text", "same text"))
	assert.Equal(t, 0.0, DiceSimilarity("abc", "xyz"))
	assert.Equal(t, 0.0, DiceSimilarity("a", "ab"))

	near := DiceSimilarity(
		"The server restarts automatically after an update.",
		"The server restarts automatically after an update .",
	)
	assert.Greater(t, near, 0.95)

	far := DiceSimilarity(
		"The server restarts automatically after an update.",
		"Click the export button to save the report.",
	)
	assert.Less(t, far, 0.5)
}
