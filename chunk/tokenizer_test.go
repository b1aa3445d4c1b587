package chunk

import "strings"

// wordTokenizer is a deterministic test tokenizer: one unit per
// whitespace-delimited word. It keeps budget assertions exact without
// depending on a BPE vocabulary.
type wordTokenizer struct{}

var _ Tokenizer = wordTokenizer{}

func (wordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (wordTokenizer) Head(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}

func (wordTokenizer) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[len(words)-n:], " ")
}
