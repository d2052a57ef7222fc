package cleaning

import (
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// Shared ASCII punctuation stripped for every language.
const asciiPunct = `.,-_*%?!#@=+|(){}[]'"` + "“”‘’"

// Per-language punctuation that falls inside the kept script ranges and must
// be stripped explicitly: Urdu question mark, full stop and comma; Devanagari
// danda and double danda.
const (
	urduPunct  = "؟۔،"
	hindiPunct = "।॥"
)

// Native digit runs dropped alongside ASCII digits.
const (
	urduDigits    = "۰۱۲۳۴۵۶۷۸۹"
	hindiDigits   = "०१२३४५६७८९"
	chineseDigits = "一二三四五六七八九零"
	asciiDigits   = "0123456789"
)

// RuleSet is the explicit per-language cleaning rule table. Cleaning applies
// the rules in a fixed order: runes outside Keep become spaces, runes in Punct
// become spaces, runes in Drop are removed, then whitespace is collapsed.
type RuleSet struct {
	Lang script.Language

	// Keep lists the script ranges whose runes survive cleaning. Anything
	// outside (foreign scripts, emoji, symbols) is replaced by a space so
	// that removal never glues two neighbouring words together.
	Keep []script.RuneRange

	// Punct holds runes replaced by a space even when inside a kept range.
	Punct map[rune]struct{}

	// Drop holds runes removed entirely (digits in the original corpora are
	// noise attached to words, so they are deleted rather than spaced out).
	Drop map[rune]struct{}
}

// DefaultRules returns the built-in rule table for the language.
func DefaultRules(lang script.Language) (RuleSet, error) {
	if _, err := script.Parse(string(lang)); err != nil {
		return RuleSet{}, err
	}

	rs := RuleSet{
		Lang:  lang,
		Keep:  script.Ranges(lang),
		Punct: runeSet(asciiPunct),
		Drop:  runeSet(asciiDigits),
	}

	switch lang {
	case script.Urdu:
		addRunes(rs.Punct, urduPunct)
		addRunes(rs.Drop, urduDigits)
	case script.Hindi:
		addRunes(rs.Punct, hindiPunct)
		addRunes(rs.Drop, hindiDigits)
	case script.Chinese:
		addRunes(rs.Drop, chineseDigits)
	}

	return rs, nil
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	addRunes(set, s)

	return set
}

func addRunes(set map[rune]struct{}, s string) {
	for _, r := range s {
		set[r] = struct{}{}
	}
}
