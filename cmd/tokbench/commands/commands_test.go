package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tokbench/pkg/report"
)

// Fixture corpus: four scorable Urdu sentences, one sentence that cleans to
// empty, one malformed UTF-8 line.
func writeFixtures(t *testing.T, dir string) string {
	t.Helper()

	lines := [][]byte{
		[]byte("میں گھر گیا"),
		[]byte("وہ سکول گیا"),
		[]byte("hello 123"),
		{0xff, 0xfe, 0xfd},
		[]byte("میں نے کتاب پڑھی"),
		[]byte("پانی صاف ہے"),
	}

	var buf []byte
	for _, line := range lines {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	corpusPath := filepath.Join(dir, "ur.txt")
	require.NoError(t, os.WriteFile(corpusPath, buf, 0o600))

	vocabPath := filepath.Join(dir, "ur-vocab.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte("میں\nگھر\nگیا\nوہ\nکتاب\nہے\n"), 0o600))

	configPath := filepath.Join(dir, "tokbench.yaml")
	configYAML := fmt.Sprintf(`languages: [ur]
tokenizers: [space]
pipeline:
  batch_size: 2
store:
  path: %s
corpus:
  corpora:
    ur: %s
  vocabs:
    ur: %s
`, filepath.Join(dir, "bench.db"), corpusPath, vocabPath)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o600))

	return configPath
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())

	return out.String()
}

func decodeSummaries(t *testing.T, out string) []report.Summary {
	t.Helper()

	var rows []report.Summary

	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	return rows
}

func TestRunCommandEndToEnd(t *testing.T) {
	configPath := writeFixtures(t, t.TempDir())

	out := executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color")

	rows := decodeSummaries(t, out)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ur", row.Language)
	assert.Equal(t, "space", row.Tokenizer)
	assert.Equal(t, uint64(4), row.TotalSentences)
	assert.Equal(t, uint64(13), row.TotalTokens)
	assert.Equal(t, uint64(8), row.TotalHits)
	assert.Equal(t, uint64(1), row.Skipped)
	assert.Equal(t, uint64(1), row.Degenerate)
	assert.InDelta(t, 8.0/13.0, row.HitRatio, 1e-9)
}

func TestRunCommandRerunWithResumeDoesNotDoubleCount(t *testing.T) {
	configPath := writeFixtures(t, t.TempDir())

	first := decodeSummaries(t, executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color"))
	second := decodeSummaries(t, executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color"))

	assert.Equal(t, first, second)
}

func TestRunCommandFreshRunResetsStore(t *testing.T) {
	configPath := writeFixtures(t, t.TempDir())

	first := decodeSummaries(t, executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color"))
	fresh := decodeSummaries(t, executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color", "--resume=false"))

	assert.Equal(t, first, fresh)
}

func TestAggregateCommandReadsCommittedState(t *testing.T) {
	configPath := writeFixtures(t, t.TempDir())

	runOut := executeCommand(t, NewRunCommand(),
		"--config", configPath, "--format", "json", "--no-color")
	aggOut := executeCommand(t, NewAggregateCommand(),
		"--config", configPath, "--format", "json", "--no-color")

	assert.Equal(t, decodeSummaries(t, runOut), decodeSummaries(t, aggOut))
}

func TestAggregateCommandEmptyStore(t *testing.T) {
	configPath := writeFixtures(t, t.TempDir())

	out := executeCommand(t, NewAggregateCommand(),
		"--config", configPath, "--format", "json", "--no-color")

	rows := decodeSummaries(t, out)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].TotalSentences)
	assert.Zero(t, rows[0].HitRatio)
}

func TestVocabCommandWritesSortedUniqueWords(t *testing.T) {
	dir := t.TempDir()

	corpusPath := filepath.Join(dir, "ref.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte("میں گھر گیا\nوہ گھر\n"), 0o600))

	outPath := filepath.Join(dir, "vocab.txt")

	executeCommand(t, NewVocabCommand(),
		"--lang", "ur", "--corpus", corpusPath, "--out", outPath)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)

	words := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, words, 4)
	assert.True(t, sortedStrings(words), "words should be sorted")
	assert.Contains(t, words, "گھر")
}

func TestVocabCommandMissingArgs(t *testing.T) {
	cmd := NewVocabCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--lang", "ur"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrVocabArgs)
}

func TestSampleCommandDeterministic(t *testing.T) {
	dir := t.TempDir()

	var lines []string
	for i := range 20 {
		lines = append(lines, fmt.Sprintf("جملہ نمبر %c", 'a'+rune(i)))
	}

	inPath := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(inPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	firstPath := filepath.Join(dir, "sample1.txt")
	secondPath := filepath.Join(dir, "sample2.txt")

	executeCommand(t, NewSampleCommand(), "--in", inPath, "--out", firstPath, "--n", "5", "--seed", "7")
	executeCommand(t, NewSampleCommand(), "--in", inPath, "--out", secondPath, "--n", "5", "--seed", "7")

	first, err := os.ReadFile(firstPath)
	require.NoError(t, err)

	second, err := os.ReadFile(secondPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimRight(string(first), "\n"), "\n"), 5)
}

func TestSampleCommandMissingArgs(t *testing.T) {
	cmd := NewSampleCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--in", "whatever.txt"})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrSampleArgs)
}

func TestSampleCommandRejectsZeroSize(t *testing.T) {
	dir := t.TempDir()

	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("ایک\n"), 0o600))

	cmd := NewSampleCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--in", inPath, "--out", filepath.Join(dir, "out.txt")})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrSampleSize)
}

func sortedStrings(ss []string) bool {
	for i := 1; i < len(ss); i++ {
		if ss[i-1] > ss[i] {
			return false
		}
	}

	return true
}
