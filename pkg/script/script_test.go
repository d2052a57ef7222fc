package script_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"ur", "zh", "hi"} {
		lang, err := script.Parse(code)
		require.NoError(t, err)
		assert.Equal(t, script.Language(code), lang)
	}
}

func TestParse_Unknown(t *testing.T) {
	t.Parallel()

	_, err := script.Parse("en")
	require.ErrorIs(t, err, script.ErrUnknownLanguage)
}

func TestInScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    rune
		lang script.Language
		want bool
	}{
		{name: "urdu letter", r: 'ی', lang: script.Urdu, want: true},
		{name: "latin letter not urdu", r: 'a', lang: script.Urdu, want: false},
		{name: "cjk ideograph", r: '的', lang: script.Chinese, want: true},
		{name: "devanagari not chinese", r: 'ह', lang: script.Chinese, want: false},
		{name: "devanagari letter", r: 'ह', lang: script.Hindi, want: true},
		{name: "digit not hindi", r: '7', lang: script.Hindi, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, script.InScript(tt.r, tt.lang))
		})
	}
}

func TestHasScript(t *testing.T) {
	t.Parallel()

	assert.True(t, script.HasScript("یہ", script.Urdu))
	assert.True(t, script.HasScript("abc的", script.Chinese))
	assert.False(t, script.HasScript("abc 123", script.Hindi))
	assert.False(t, script.HasScript("", script.Urdu))
}

func TestRanges_Covered(t *testing.T) {
	t.Parallel()

	for _, lang := range script.All() {
		assert.NotEmpty(t, script.Ranges(lang))
	}
}
