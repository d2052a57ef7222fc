// Package scoring matches tokenizer output against the ground-truth
// vocabulary. Matching is exact set membership after normalization — no fuzzy
// or edit-distance matching — with multiset semantics: a token appearing
// twice and matching twice contributes two hits.
package scoring

import (
	"github.com/Sumatoshi-tech/tokbench/pkg/vocab"
)

// HitRecord is the per-(sentence, tokenizer) outcome: how many of the emitted
// tokens were found in the vocabulary. Invariant: 0 <= Hits <= Tokens.
// A degenerate or skipped sentence records {0, 0}.
type HitRecord struct {
	Offset uint64
	Hits   uint64
	Tokens uint64
}

// Score counts vocabulary hits for one token sequence. An empty sequence
// yields {0, 0}; the aggregator excludes such records from the ratio
// denominator rather than treating them as ratio zero.
func Score(offset uint64, tokens []string, v *vocab.Set) HitRecord {
	rec := HitRecord{Offset: offset, Tokens: uint64(len(tokens))}

	for _, token := range tokens {
		if v.Contains(token) {
			rec.Hits++
		}
	}

	return rec
}
