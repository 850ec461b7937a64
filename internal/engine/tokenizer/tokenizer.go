// Package tokenizer provides text tokenisation for the search engine.
// It splits on ASCII spaces, preserves token bytes exactly (no case
// folding, no normalisation), and validates tokens against control
// characters.
package tokenizer

// Split breaks text into its maximal runs of non-space bytes. Leading,
// trailing, and repeated spaces produce no empty tokens. The returned
// tokens are substrings of text; the caller retains ownership of the
// backing string.
func Split(text string) []string {
	words := make([]string, 0, len(text)/6)
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// IsValid reports whether the word is free of control characters. Any
// byte below 0x20 disqualifies the whole word.
func IsValid(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 0x20 {
			return false
		}
	}
	return true
}
