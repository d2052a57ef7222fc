// Package script defines the benchmark's target languages and their Unicode
// script ranges. Every component that needs to decide whether a rune or token
// belongs to a language's native script goes through this package, so the
// cleaner, the token filter, and the vocabulary all agree on script membership.
package script

import (
	"errors"
	"fmt"
)

// Language identifies a target script/family by its ISO 639-1 code.
type Language string

// Supported languages.
const (
	// Urdu is the Arabic-family target (Perso-Arabic script).
	Urdu Language = "ur"

	// Chinese is the logographic target (Simplified Chinese).
	Chinese Language = "zh"

	// Hindi is the Indic target (Devanagari script).
	Hindi Language = "hi"
)

// ErrUnknownLanguage indicates a language code outside the supported set.
var ErrUnknownLanguage = errors.New("unknown language")

// All returns the supported languages in canonical order.
func All() []Language {
	return []Language{Urdu, Chinese, Hindi}
}

// Parse validates a language code and returns the corresponding Language.
func Parse(code string) (Language, error) {
	switch Language(code) {
	case Urdu, Chinese, Hindi:
		return Language(code), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
}

// RuneRange is an inclusive range of Unicode code points.
type RuneRange struct {
	Lo rune
	Hi rune
}

// Contains reports whether r falls inside the range.
func (rr RuneRange) Contains(r rune) bool {
	return r >= rr.Lo && r <= rr.Hi
}

// Native script ranges per language. The Urdu set covers the Arabic block plus
// its supplement and presentation forms; the Chinese set covers the CJK Unified
// Ideograph blocks including extensions A and B; Hindi is the Devanagari block.
var scriptRanges = map[Language][]RuneRange{
	Urdu: {
		{Lo: 0x0600, Hi: 0x06FF}, // Arabic.
		{Lo: 0x0750, Hi: 0x077F}, // Arabic Supplement.
		{Lo: 0xFB50, Hi: 0xFDFF}, // Arabic Presentation Forms-A.
		{Lo: 0xFE70, Hi: 0xFEFF}, // Arabic Presentation Forms-B.
	},
	Chinese: {
		{Lo: 0x4E00, Hi: 0x9FFF},   // CJK Unified Ideographs.
		{Lo: 0x3400, Hi: 0x4DBF},   // Extension A.
		{Lo: 0x2A700, Hi: 0x2B73F}, // Extension B.
	},
	Hindi: {
		{Lo: 0x0900, Hi: 0x097F}, // Devanagari.
	},
}

// Ranges returns the native script ranges for the language. The returned slice
// must not be mutated.
func Ranges(lang Language) []RuneRange {
	return scriptRanges[lang]
}

// InScript reports whether r belongs to the language's native script.
func InScript(r rune, lang Language) bool {
	for _, rr := range scriptRanges[lang] {
		if rr.Contains(r) {
			return true
		}
	}

	return false
}

// HasScript reports whether the string contains at least one rune of the
// language's native script. Tokenizer output is filtered with this predicate
// so that stray foreign-script tokens never reach the scorer.
func HasScript(s string, lang Language) bool {
	for _, r := range s {
		if InScript(r, lang) {
			return true
		}
	}

	return false
}
