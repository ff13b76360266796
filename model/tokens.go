package model

import (
	"github.com/pkoukk/tiktoken-go"
)

// CountTokens approximates the llama token count with the gpt-3.5 encoding.
// The encoding is fetched on first use, so offline runs return an error.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	tokens := enc.Encode(text, nil, nil)
	return len(tokens), nil
}
