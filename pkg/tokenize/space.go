package tokenize

import "strings"

// SpaceID is the registry id of the whitespace tokenizer.
const SpaceID = "space"

func init() {
	Register(SpaceID, func(Config) Tokenizer { return &spaceTokenizer{} })
}

// spaceTokenizer splits on Unicode whitespace. It is the word-level baseline
// for the space-delimited scripts (Urdu, Hindi); cleaning has already reduced
// intra-word noise, so fields are words.
type spaceTokenizer struct{}

func (t *spaceTokenizer) Name() string { return SpaceID }

func (t *spaceTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(text), nil
}
