package cleaning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Sumatoshi-tech/tokbench/pkg/cleaning"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

func newCleaner(t *testing.T) *cleaning.Cleaner {
	t.Helper()

	c, err := cleaning.New()
	require.NoError(t, err)

	return c
}

func TestClean_Urdu(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain sentence untouched", in: "یہ ایک جملہ ہے", want: "یہ ایک جملہ ہے"},
		{name: "urdu full stop spaced", in: "یہ جملہ ہے۔", want: "یہ جملہ ہے"},
		{name: "latin run removed", in: "یہ hello ایک", want: "یہ ایک"},
		{name: "urdu digits dropped", in: "یہ ۱۲۳ ایک", want: "یہ ایک"},
		{name: "ascii digits dropped", in: "یہ42 ایک", want: "یہ ایک"},
		{name: "emoji removed", in: "یہ 😀 ایک", want: "یہ ایک"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Clean(tt.in, script.Urdu)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean_Chinese(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	got, err := c.Clean("今天是2024年，天气很好！", script.Chinese)
	require.NoError(t, err)
	assert.Equal(t, "今天是年 天气很好", got)
}

func TestClean_Hindi(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	got, err := c.Clean("यह एक वाक्य है। १२३", script.Hindi)
	require.NoError(t, err)
	assert.Equal(t, "यह एक वाक्य है", got)
}

func TestClean_Degenerate(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	// Nothing survives: foreign script, digits, punctuation only.
	got, err := c.Clean("hello world 123 !!!", script.Urdu)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClean_MalformedUTF8(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	_, err := c.Clean(string([]byte{0xff, 0xfe}), script.Urdu)
	require.ErrorIs(t, err, cleaning.ErrMalformedText)
}

func TestClean_UnknownLanguage(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	_, err := c.Clean("text", script.Language("xx"))
	require.ErrorIs(t, err, script.ErrUnknownLanguage)
}

func TestClean_Override(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	// A rule set that keeps only the Devanagari block and drops nothing else.
	c.Override(cleaning.RuleSet{
		Lang: script.Hindi,
		Keep: script.Ranges(script.Hindi),
	})

	got, err := c.Clean("यह १२३", script.Hindi)
	require.NoError(t, err)
	// Default drop rules were replaced, so Devanagari digits survive.
	assert.Equal(t, "यह १२३", got)
}

// Cleaning must be deterministic: two calls on identical input yield
// identical output for any input and language.
func TestClean_Deterministic(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		lang := rapid.SampledFrom(script.All()).Draw(t, "lang")

		first, err1 := c.Clean(text, lang)
		second, err2 := c.Clean(text, lang)

		if err1 != nil || err2 != nil {
			if (err1 == nil) != (err2 == nil) {
				t.Fatalf("determinism broken: %v vs %v", err1, err2)
			}

			return
		}

		if first != second {
			t.Fatalf("clean(%q) = %q then %q", text, first, second)
		}
	})
}

// Cleaned output never contains runes outside the language's script except
// the single space separator.
func TestClean_OnlyScriptRunesSurvive(t *testing.T) {
	t.Parallel()

	c := newCleaner(t)

	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		lang := rapid.SampledFrom(script.All()).Draw(t, "lang")

		out, err := c.Clean(text, lang)
		if err != nil {
			return
		}

		for _, r := range out {
			if r != ' ' && !script.InScript(r, lang) {
				t.Fatalf("rune %q survived cleaning for %s", r, lang)
			}
		}
	})
}
