package tokenize

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMatchID is the registry id of the dictionary segmenter.
const MaxMatchID = "maxmatch"

// ErrNoDictionary indicates the segmenter was constructed without a
// dictionary path.
var ErrNoDictionary = errors.New("no dictionary configured")

// ErrInvalidUTF8 indicates tokenizer input that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input is not valid utf-8")

// maxDictWordRunes caps the lookahead window. Dictionary entries longer than
// this are still loaded but never matched; real zh lexemes stay well below it.
const maxDictWordRunes = 8

func init() {
	Register(MaxMatchID, func(cfg Config) Tokenizer {
		return &maxMatchTokenizer{dictPath: cfg.DictPath}
	})
}

// maxMatchTokenizer segments unspaced logographic text by forward maximum
// matching against a word dictionary: at each position the longest dictionary
// word wins, with a single-rune fallback. The dictionary is loaded once on
// first use; a missing or unreadable dictionary is an init failure for this
// tokenizer only.
type maxMatchTokenizer struct {
	dictPath string
	setup    lazySetup

	dict   map[string]struct{}
	maxLen int // Longest matchable entry, in runes.
}

func (t *maxMatchTokenizer) Name() string { return MaxMatchID }

func (t *maxMatchTokenizer) Tokenize(text string) ([]string, error) {
	err := t.setup.ensure(MaxMatchID, t.loadDict)
	if err != nil {
		return nil, err
	}

	// The rune conversion below would silently replace invalid bytes with
	// U+FFFD and corrupt dictionary matching.
	if !utf8.ValidString(text) {
		return nil, &RuntimeError{Tokenizer: MaxMatchID, Err: ErrInvalidUTF8}
	}

	var tokens []string

	runes := []rune(text)

	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++

			continue
		}

		word, n := t.longestMatch(runes[i:])
		tokens = append(tokens, word)
		i += n
	}

	return tokens, nil
}

// longestMatch returns the longest dictionary word starting at rest[0] and
// its rune length. Falls back to the single leading rune.
func (t *maxMatchTokenizer) longestMatch(rest []rune) (string, int) {
	limit := min(t.maxLen, len(rest))

	for n := limit; n > 1; n-- {
		candidate := string(rest[:n])
		if _, ok := t.dict[candidate]; ok {
			return candidate, n
		}
	}

	return string(rest[0]), 1
}

// loadDict reads the dictionary file: one entry per line, first
// whitespace-separated field is the word (trailing frequency columns are
// tolerated and ignored).
func (t *maxMatchTokenizer) loadDict() error {
	if t.dictPath == "" {
		return ErrNoDictionary
	}

	f, err := os.Open(t.dictPath)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	t.dict = make(map[string]struct{})
	t.maxLen = 1

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		word := fields[0]
		t.dict[word] = struct{}{}

		n := utf8.RuneCountInString(word)
		if n > t.maxLen && n <= maxDictWordRunes {
			t.maxLen = n
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return fmt.Errorf("read dictionary: %w", scanErr)
	}

	return nil
}
