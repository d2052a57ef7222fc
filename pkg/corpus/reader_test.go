package corpus_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tokbench/pkg/corpus"
)

func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.txt")

	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}

	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestReader_OffsetsAreMonotonic(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "پہلا جملہ", "دوسرا جملہ", "تیسرا جملہ")

	r, err := corpus.Open(path)
	require.NoError(t, err)

	defer r.Close()

	for want := uint64(0); want < 3; want++ {
		s, nextErr := r.Next()
		require.NoError(t, nextErr)
		assert.Equal(t, want, s.Offset)
		assert.NotEmpty(t, s.Text)
	}

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_InvalidLineAdvancesOffset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corpus.txt")
	data := append([]byte("ok\n"), 0xff, 0xfe, '\n')
	data = append(data, "also ok\n"...)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	r, err := corpus.Open(path)
	require.NoError(t, err)

	defer r.Close()

	s, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.Offset)

	s, err = r.Next()
	require.ErrorIs(t, err, corpus.ErrInvalidLine)
	assert.Equal(t, uint64(1), s.Offset)

	s, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Offset)
	assert.Equal(t, "also ok", s.Text)
}

func TestReader_Skip(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "a", "b", "c", "d")

	r, err := corpus.Open(path)
	require.NoError(t, err)

	defer r.Close()

	require.NoError(t, r.Skip(2))
	assert.Equal(t, uint64(2), r.Offset())

	s, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Offset)
	assert.Equal(t, "c", s.Text)
}

func TestReader_LZ4(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corpus.txt.lz4")

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := lz4.NewWriter(f)
	_, err = zw.Write([]byte("یہ ایک جملہ ہے\n天气很好\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := corpus.Open(path)
	require.NoError(t, err)

	defer r.Close()

	s, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "یہ ایک جملہ ہے", s.Text)

	s, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "天气很好", s.Text)

	n, err := corpus.Count(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestCount(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "a", "b", "c")

	n, err := corpus.Count(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestSampleIndices_Reproducible(t *testing.T) {
	t.Parallel()

	first, err := corpus.SampleIndices(1000, 10, 42)
	require.NoError(t, err)
	require.Len(t, first, 10)

	second, err := corpus.SampleIndices(1000, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Sorted, unique, in range.
	for i, idx := range first {
		assert.Less(t, idx, uint64(1000))

		if i > 0 {
			assert.Greater(t, idx, first[i-1])
		}
	}
}

func TestSampleIndices_TooLarge(t *testing.T) {
	t.Parallel()

	_, err := corpus.SampleIndices(5, 6, 1)
	require.ErrorIs(t, err, corpus.ErrSampleTooLarge)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "zero", "one", "two", "three")
	out := filepath.Join(t.TempDir(), "sample.txt")

	require.NoError(t, corpus.Extract(path, out, []uint64{1, 3}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "one\nthree\n", string(data))
}
