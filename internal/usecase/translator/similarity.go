package translator

import "strings"

// DiceSimilarity returns the Sorensen-Dice coefficient over character
// bigrams of the lowercased inputs, in [0, 1].
func DiceSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}
	grams := make(map[string]int)
	for i := 0; i < len(ra)-1; i++ {
		grams[string(ra[i:i+2])]++
	}
	var shared int
	for i := 0; i < len(rb)-1; i++ {
		g := string(rb[i : i+2])
		if grams[g] > 0 {
			grams[g]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ra)-1+len(rb)-1)
}
