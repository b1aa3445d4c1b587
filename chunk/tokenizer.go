package chunk

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer measures text in model subword units and slices text by unit
// count. Every "size" or "budget" in this package is expressed in these units.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	// Count returns the number of units in text.
	Count(text string) int

	// Head returns the text of the first n units.
	// Returns text unchanged when it holds n units or fewer.
	Head(text string, n int) string

	// Tail returns the text of the last n units.
	// Returns text unchanged when it holds n units or fewer.
	Tail(text string, n int) string
}

// TiktokenTokenizer implements Tokenizer using the cl100k_base BPE encoding,
// matching the tokenization of OpenAI embedding models.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer creates a tokenizer backed by the cl100k_base encoding.
func NewTiktokenTokenizer() (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

// Count returns the number of BPE tokens in text.
func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Head returns the decoded text of the first n tokens.
func (t *TiktokenTokenizer) Head(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text
	}
	return t.enc.Decode(tokens[:n])
}

// Tail returns the decoded text of the last n tokens.
func (t *TiktokenTokenizer) Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text
	}
	return t.enc.Decode(tokens[len(tokens)-n:])
}
