// Package cleaning normalizes raw corpus sentences before tokenization.
// Each language has an explicit rule table (script ranges to keep, punctuation
// to space out, digits to drop) instead of scattered per-language conditionals.
// Cleaning is deterministic and pure: the same input always yields the same
// output, which the resume logic depends on.
package cleaning

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// ErrMalformedText indicates a sentence that is not valid UTF-8. The caller
// skips the sentence and counts it; cleaning errors are never fatal.
var ErrMalformedText = errors.New("malformed text")

// Cleaner applies per-language rule tables to raw sentences.
type Cleaner struct {
	rules map[script.Language]RuleSet
}

// New creates a Cleaner with the default rule table for every supported language.
func New() (*Cleaner, error) {
	rules := make(map[script.Language]RuleSet, len(script.All()))

	for _, lang := range script.All() {
		rs, err := DefaultRules(lang)
		if err != nil {
			return nil, fmt.Errorf("rules for %s: %w", lang, err)
		}

		rules[lang] = rs
	}

	return &Cleaner{rules: rules}, nil
}

// Override replaces the rule table for one language. Configurable rule tables
// let a run tighten or relax the noise filter without code changes.
func (c *Cleaner) Override(rs RuleSet) {
	c.rules[rs.Lang] = rs
}

// Clean normalizes a sentence for the given language. The result may be empty
// when every rune was noise; such sentences are degenerate and still advance
// the checkpoint. Invalid UTF-8 returns ErrMalformedText.
func (c *Cleaner) Clean(text string, lang script.Language) (string, error) {
	rs, ok := c.rules[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", script.ErrUnknownLanguage, lang)
	}

	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrMalformedText)
	}

	var b strings.Builder

	b.Grow(len(text))

	pendingSpace := false

	for _, r := range text {
		switch c.classify(r, rs) {
		case keepRune:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}

			pendingSpace = false

			b.WriteRune(r)
		case spaceRune:
			pendingSpace = true
		case dropRune:
		}
	}

	return b.String(), nil
}

// runeClass is the action the rule table assigns to a rune.
type runeClass int

const (
	keepRune runeClass = iota
	spaceRune
	dropRune
)

func (c *Cleaner) classify(r rune, rs RuleSet) runeClass {
	if _, dropped := rs.Drop[r]; dropped {
		return dropRune
	}

	if _, punct := rs.Punct[r]; punct {
		return spaceRune
	}

	for _, rr := range rs.Keep {
		if rr.Contains(r) {
			return keepRune
		}
	}

	// Foreign scripts, whitespace, emoji, symbols: replaced by a space so
	// adjacent words never merge. Collapsing happens in the main loop.
	return spaceRune
}
