package vocab

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// Normalization policy: every token and every vocabulary word passes through
// NFC plus per-language character folding before comparison. The same function
// is used when building the vocabulary and when scoring, so membership is
// always tested in one canonical space. No case folding — all three scripts
// are caseless.

// Urdu combining marks stripped before comparison: the Arabic harakat block
// (fathatan through sukun) plus superscript alef. Corpus text writes them
// inconsistently, so they carry no signal for word identity.
const (
	harakatLo       = 0x064B
	harakatHi       = 0x0652
	superscriptAlef = 0x0670
)

// urduFold maps Arabic-preferred letter forms onto their Urdu-preferred
// equivalents. Mixed keyboards produce both spellings for the same word.
var urduFold = map[rune]rune{
	'ي': 'ی', // Arabic yeh → Farsi yeh.
	'ى': 'ی', // Alef maksura → Farsi yeh.
	'ك': 'ک', // Arabic kaf → keheh.
	'ه': 'ہ', // Arabic heh → heh goal.
	'ة': 'ہ', // Teh marbuta → heh goal.
}

// Normalize canonicalizes a token for vocabulary membership testing.
func Normalize(token string, lang script.Language) string {
	token = norm.NFC.String(token)

	if lang != script.Urdu {
		return token
	}

	var b strings.Builder

	b.Grow(len(token))

	for _, r := range token {
		if r >= harakatLo && r <= harakatHi || r == superscriptAlef {
			continue
		}

		if folded, ok := urduFold[r]; ok {
			r = folded
		}

		b.WriteRune(r)
	}

	return b.String()
}
