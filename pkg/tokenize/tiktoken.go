package tokenize

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenID is the registry id of the BPE subword tokenizer.
const TiktokenID = "tiktoken"

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

func init() {
	Register(TiktokenID, func(cfg Config) Tokenizer {
		encoding := cfg.Encoding
		if encoding == "" {
			encoding = DefaultEncoding
		}

		return &tiktokenTokenizer{encoding: encoding}
	})
}

// tiktokenTokenizer wraps a tiktoken BPE encoding as a subword baseline.
// Word-level tokenizers are expected to beat it on vocabulary hit ratio; it
// anchors the low end of the comparison. Loading the encoding may fetch BPE
// data on first use, so setup can fail — an init failure for this tokenizer
// only.
type tiktokenTokenizer struct {
	encoding string
	setup    lazySetup
	enc      *tiktoken.Tiktoken
}

func (t *tiktokenTokenizer) Name() string { return TiktokenID }

func (t *tiktokenTokenizer) Tokenize(text string) ([]string, error) {
	err := t.setup.ensure(TiktokenID, func() error {
		enc, encErr := tiktoken.GetEncoding(t.encoding)
		if encErr != nil {
			return fmt.Errorf("get encoding %s: %w", t.encoding, encErr)
		}

		t.enc = enc

		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := t.enc.Encode(text, nil, nil)

	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, t.enc.Decode([]int{id}))
	}

	return tokens, nil
}
