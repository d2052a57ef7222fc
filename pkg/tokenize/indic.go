package tokenize

import (
	"strings"
	"unicode"
)

// IndicID is the registry id of the trivial Indic tokenizer.
const IndicID = "indic"

func init() {
	Register(IndicID, func(Config) Tokenizer { return &indicTokenizer{} })
}

// indicTokenizer splits on whitespace and additionally treats every
// non-letter, non-digit, non-mark rune as a separate token. This mirrors
// trivial Indic word tokenization: the danda ends a sentence but is still a
// token, and clitics attached through punctuation are separated.
type indicTokenizer struct{}

func (t *indicTokenizer) Name() string { return IndicID }

func (t *indicTokenizer) Tokenize(text string) ([]string, error) {
	var tokens []string

	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			word.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}

	flush()

	return tokens, nil
}
