package vocab

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/tokbench/pkg/cleaning"
	"github.com/Sumatoshi-tech/tokbench/pkg/corpus"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
)

// BuildStats summarizes a vocabulary build.
type BuildStats struct {
	Sentences uint64
	Tokens    uint64
	Words     uint64
	Skipped   uint64
}

// Build constructs a vocabulary file from a corpus: every sentence is
// cleaned, tokenized with the given adapter, filtered to the target script,
// and the distinct normalized tokens are written sorted, one per line.
// Sentences that fail cleaning or tokenization are skipped and counted,
// matching the pipeline's error policy.
func Build(
	ctx context.Context,
	corpusPath, outPath string,
	lang script.Language,
	tok tokenize.Tokenizer,
) (BuildStats, error) {
	cleaner, err := cleaning.New()
	if err != nil {
		return BuildStats{}, fmt.Errorf("build vocabulary: %w", err)
	}

	r, err := corpus.Open(corpusPath)
	if err != nil {
		return BuildStats{}, fmt.Errorf("build vocabulary: %w", err)
	}
	defer r.Close()

	words := make(map[string]struct{})

	var stats BuildStats

	for {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return stats, fmt.Errorf("build vocabulary: %w", ctxErr)
		}

		sentence, readErr := r.Next()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			if errors.Is(readErr, corpus.ErrInvalidLine) {
				stats.Skipped++

				continue
			}

			return stats, fmt.Errorf("build vocabulary: %w", readErr)
		}

		stats.Sentences++

		cleaned, cleanErr := cleaner.Clean(sentence.Text, lang)
		if cleanErr != nil {
			stats.Skipped++

			continue
		}

		tokens, tokErr := tok.Tokenize(cleaned)
		if tokErr != nil {
			var initErr *tokenize.InitError
			if errors.As(tokErr, &initErr) {
				return stats, fmt.Errorf("build vocabulary: %w", tokErr)
			}

			stats.Skipped++

			continue
		}

		for _, token := range tokens {
			if !script.HasScript(token, lang) {
				continue
			}

			stats.Tokens++

			words[Normalize(token, lang)] = struct{}{}
		}
	}

	stats.Words = uint64(len(words))

	writeErr := writeWordList(outPath, words)
	if writeErr != nil {
		return stats, fmt.Errorf("build vocabulary: %w", writeErr)
	}

	return stats, nil
}

// writeWordList writes the words sorted, one per line, lz4-compressed when
// the output path carries the .lz4 extension.
func writeWordList(path string, words map[string]struct{}) error {
	sorted := make([]string, 0, len(words))
	for w := range words {
		sorted = append(sorted, w)
	}

	sort.Strings(sorted)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create word list: %w", err)
	}
	defer f.Close()

	var sink io.Writer = f

	var zw *lz4.Writer

	if strings.HasSuffix(path, ".lz4") {
		zw = lz4.NewWriter(f)
		sink = zw
	}

	w := bufio.NewWriter(sink)

	for _, word := range sorted {
		_, writeErr := fmt.Fprintln(w, word)
		if writeErr != nil {
			return fmt.Errorf("write word list: %w", writeErr)
		}
	}

	flushErr := w.Flush()
	if flushErr != nil {
		return fmt.Errorf("flush word list: %w", flushErr)
	}

	if zw != nil {
		closeErr := zw.Close()
		if closeErr != nil {
			return fmt.Errorf("close compressed word list: %w", closeErr)
		}
	}

	return nil
}
