// Package aggregate folds committed HitRecords into per-(language, tokenizer)
// statistics. The fold streams records through the store's snapshot iterator,
// so memory stays bounded for arbitrarily large runs, and it only ever sees
// fully-committed batches — it can run at any time during or after a pipeline
// run and reflect exactly the committed state.
package aggregate

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
)

// Result is the cumulative outcome for one (language, tokenizer) pair.
type Result struct {
	Lang      script.Language
	Tokenizer string

	// Hits and Tokens accumulate over all scored sentences.
	Hits   uint64
	Tokens uint64

	// Sentences counts records that produced at least one token. Degenerate
	// and skipped sentences commit {0,0} records and are excluded here, so
	// they never drag the ratio toward zero.
	Sentences uint64

	// Committed counts every record up to the checkpoint, including {0,0}.
	Committed uint64

	// Skipped and Degenerate are carried over from the store tallies.
	Skipped    uint64
	Degenerate uint64
}

// HitRatio returns Hits/Tokens, defined as 0 when no tokens were emitted.
func (r Result) HitRatio() float64 {
	if r.Tokens == 0 {
		return 0
	}

	return float64(r.Hits) / float64(r.Tokens)
}

// Aggregate streams all committed records for the pair and sums them. A pair
// with no committed checkpoint yields a zero Result.
func Aggregate(
	ctx context.Context,
	s *store.Store,
	lang script.Language,
	tokenizer string,
) (Result, error) {
	res := Result{Lang: lang, Tokenizer: tokenizer}

	checkpoint, ok, err := s.Checkpoint(ctx, lang, tokenizer)
	if err != nil {
		return res, fmt.Errorf("aggregate (%s, %s): %w", lang, tokenizer, err)
	}

	if !ok {
		return res, nil
	}

	tallies, err := s.Tallies(ctx, lang, tokenizer)
	if err != nil {
		return res, fmt.Errorf("aggregate (%s, %s): %w", lang, tokenizer, err)
	}

	res.Skipped = tallies.Skipped
	res.Degenerate = tallies.Degenerate

	it, err := s.Records(ctx, lang, tokenizer, 0, checkpoint)
	if err != nil {
		return res, fmt.Errorf("aggregate (%s, %s): %w", lang, tokenizer, err)
	}
	defer it.Close()

	for it.Next() {
		rec := it.Record()

		res.Committed++
		res.Hits += rec.Hits
		res.Tokens += rec.Tokens

		if rec.Tokens > 0 {
			res.Sentences++
		}
	}

	iterErr := it.Err()
	if iterErr != nil {
		return res, fmt.Errorf("aggregate (%s, %s): %w", lang, tokenizer, iterErr)
	}

	return res, nil
}

// All aggregates every (language, tokenizer) combination, in the given order.
func All(
	ctx context.Context,
	s *store.Store,
	langs []script.Language,
	tokenizers []string,
) ([]Result, error) {
	results := make([]Result, 0, len(langs)*len(tokenizers))

	for _, lang := range langs {
		for _, tok := range tokenizers {
			res, err := Aggregate(ctx, s, lang, tok)
			if err != nil {
				return nil, err
			}

			results = append(results, res)
		}
	}

	return results, nil
}
