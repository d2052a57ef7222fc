// Package vocab holds the per-language ground-truth vocabulary: the scoring
// oracle. A vocabulary is loaded once at process start from a newline-
// delimited word file (optionally lz4-compressed), normalized with the same
// policy the scorer applies to tokens, and read-only for the rest of the run.
package vocab

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/tokbench/pkg/corpus"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// Set is an immutable normalized word set for one language.
type Set struct {
	lang  script.Language
	words map[string]struct{}
}

// Load reads a vocabulary file: one word per line, blank lines ignored.
// Entries are normalized at load, so lookups and file contents agree even
// when the file was written with a different normal form.
func Load(path string, lang script.Language) (*Set, error) {
	rc, err := corpus.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer rc.Close()

	words := make(map[string]struct{})

	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}

		words[Normalize(word, lang)] = struct{}{}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("read vocabulary: %w", scanErr)
	}

	return &Set{lang: lang, words: words}, nil
}

// NewSet builds an in-memory vocabulary from the given words. Used by tests
// and by the vocabulary builder.
func NewSet(lang script.Language, words ...string) *Set {
	set := &Set{lang: lang, words: make(map[string]struct{}, len(words))}

	for _, w := range words {
		set.words[Normalize(w, lang)] = struct{}{}
	}

	return set
}

// Contains reports whether the normalized form of token is in the vocabulary.
func (s *Set) Contains(token string) bool {
	_, ok := s.words[Normalize(token, s.lang)]

	return ok
}

// Lang returns the vocabulary's language.
func (s *Set) Lang() script.Language {
	return s.lang
}

// Len returns the number of distinct normalized words.
func (s *Set) Len() int {
	return len(s.words)
}
