package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/tokbench/internal/observability"
	"github.com/Sumatoshi-tech/tokbench/pkg/cleaning"
	"github.com/Sumatoshi-tech/tokbench/pkg/corpus"
	"github.com/Sumatoshi-tech/tokbench/pkg/scoring"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
	"github.com/Sumatoshi-tech/tokbench/pkg/vocab"
)

// batch accumulates one store transaction's worth of results.
type batch struct {
	records    []scoring.HitRecord
	scored     uint64
	skipped    uint64
	degenerate uint64
	hits       uint64
	tokens     uint64
}

func newBatch(size int) *batch {
	return &batch{records: make([]scoring.HitRecord, 0, size)}
}

func (b *batch) add(rec scoring.HitRecord) {
	b.records = append(b.records, rec)
	b.hits += rec.Hits
	b.tokens += rec.Tokens

	// Sentences whose tokens were all filtered away commit {0,0} records;
	// they count as committed, not as scored.
	if rec.Tokens > 0 {
		b.scored++
	}
}

func (b *batch) reset() {
	b.records = b.records[:0]
	b.scored = 0
	b.skipped = 0
	b.degenerate = 0
	b.hits = 0
	b.tokens = 0
}

func (b *batch) empty() bool {
	return len(b.records) == 0
}

// runPair processes one (language, tokenizer) pair from its checkpoint to
// corpus end. Per-sentence failures are recorded and skipped; store errors
// and tokenizer initialization failures are returned.
func (r *Runner) runPair(ctx context.Context, pair Pair, voc *vocab.Set) (PairResult, error) {
	res := PairResult{Pair: pair}

	tok, err := tokenize.New(pair.Tokenizer, r.opts.TokenizerConfig)
	if err != nil {
		return res, fmt.Errorf("create tokenizer %s: %w", pair.Tokenizer, err)
	}

	cleaner, err := cleaning.New()
	if err != nil {
		return res, fmt.Errorf("create cleaner: %w", err)
	}

	start, resumed, err := r.startOffset(ctx, pair)
	if err != nil {
		return res, err
	}

	reader, err := corpus.Open(r.opts.CorpusPaths[pair.Lang])
	if err != nil {
		return res, fmt.Errorf("open corpus for %s: %w", pair.Lang, err)
	}
	defer reader.Close()

	skipErr := reader.Skip(start)
	if skipErr != nil {
		return res, fmt.Errorf("seek corpus to offset %d: %w", start, skipErr)
	}

	if resumed {
		r.logger.InfoContext(ctx, "resuming pair from checkpoint",
			slog.String("lang", string(pair.Lang)),
			slog.String("tokenizer", pair.Tokenizer),
			slog.Uint64("offset", start))
	}

	return r.drain(ctx, pair, reader, cleaner, tok, voc, res)
}

// startOffset returns the first offset to process for the pair. A committed
// checkpoint means everything up to and including it is durable.
func (r *Runner) startOffset(ctx context.Context, pair Pair) (uint64, bool, error) {
	checkpoint, committed, err := r.store.Checkpoint(ctx, pair.Lang, pair.Tokenizer)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	if !committed {
		return 0, false, nil
	}

	return checkpoint + 1, true, nil
}

// drain reads sentences in batches until corpus end, committing each batch
// atomically. Cancellation abandons the in-flight batch; the checkpoint stays
// at the last committed value.
func (r *Runner) drain(
	ctx context.Context,
	pair Pair,
	reader *corpus.Reader,
	cleaner *cleaning.Cleaner,
	tok tokenize.Tokenizer,
	voc *vocab.Set,
	res PairResult,
) (PairResult, error) {
	cur := newBatch(r.opts.BatchSize)

	for {
		sentence, readErr := reader.Next()

		done := errors.Is(readErr, io.EOF)
		if readErr != nil && !done {
			if !errors.Is(readErr, corpus.ErrInvalidLine) {
				return res, fmt.Errorf("read corpus: %w", readErr)
			}

			r.logger.DebugContext(ctx, "sentence skipped",
				slog.String("lang", string(pair.Lang)),
				slog.String("tokenizer", pair.Tokenizer),
				slog.Uint64("offset", sentence.Offset),
				slog.Any("reason", readErr))

			// Malformed lines still occupy an offset and advance the
			// checkpoint, otherwise resume would reprocess the gap.
			cur.add(scoring.HitRecord{Offset: sentence.Offset})
			cur.skipped++
		}

		if readErr == nil {
			procErr := r.processSentence(ctx, pair, sentence, cur, cleaner, tok, voc)
			if procErr != nil {
				return res, procErr
			}
		}

		if len(cur.records) >= r.opts.BatchSize || (done && !cur.empty()) {
			cancelErr := ctx.Err()
			if cancelErr != nil {
				r.logger.WarnContext(ctx, "run cancelled, abandoning in-flight batch",
					slog.String("lang", string(pair.Lang)),
					slog.String("tokenizer", pair.Tokenizer))

				return res, cancelErr
			}

			commitErr := r.commitBatch(ctx, pair, cur, &res)
			if commitErr != nil {
				return res, commitErr
			}

			cur.reset()
		}

		if done {
			r.logger.InfoContext(ctx, "pair complete",
				slog.String("lang", string(pair.Lang)),
				slog.String("tokenizer", pair.Tokenizer),
				slog.Uint64("sentences", res.Sentences),
				slog.Uint64("skipped", res.Skipped),
				slog.Uint64("degenerate", res.Degenerate))

			return res, nil
		}
	}
}

// processSentence cleans, tokenizes, and scores one sentence into the batch.
// Every outcome produces exactly one record at the sentence's offset.
func (r *Runner) processSentence(
	ctx context.Context,
	pair Pair,
	sentence corpus.Sentence,
	cur *batch,
	cleaner *cleaning.Cleaner,
	tok tokenize.Tokenizer,
	voc *vocab.Set,
) error {
	cleaned, cleanErr := cleaner.Clean(sentence.Text, pair.Lang)
	if cleanErr != nil {
		r.logger.DebugContext(ctx, "sentence skipped",
			slog.String("lang", string(pair.Lang)),
			slog.String("tokenizer", pair.Tokenizer),
			slog.Uint64("offset", sentence.Offset),
			slog.Any("reason", cleanErr))

		cur.add(scoring.HitRecord{Offset: sentence.Offset})
		cur.skipped++

		return nil
	}

	if cleaned == "" {
		cur.add(scoring.HitRecord{Offset: sentence.Offset})
		cur.degenerate++

		return nil
	}

	tokens, tokErr := tok.Tokenize(cleaned)
	if tokErr != nil {
		var initErr *tokenize.InitError
		if errors.As(tokErr, &initErr) {
			return tokErr
		}

		r.logger.DebugContext(ctx, "sentence skipped",
			slog.String("lang", string(pair.Lang)),
			slog.String("tokenizer", pair.Tokenizer),
			slog.Uint64("offset", sentence.Offset),
			slog.Any("reason", tokErr))

		cur.add(scoring.HitRecord{Offset: sentence.Offset})
		cur.skipped++

		return nil
	}

	cur.add(scoring.Score(sentence.Offset, scriptTokens(tokens, pair.Lang), voc))

	return nil
}

// scriptTokens drops tokens carrying no character of the target script.
// Subword tokenizers emit whitespace and punctuation fragments that would
// otherwise inflate the denominator.
func scriptTokens(tokens []string, lang script.Language) []string {
	kept := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if script.HasScript(token, lang) {
			kept = append(kept, token)
		}
	}

	return kept
}

// commitBatch writes the batch atomically and folds its stats into the result.
func (r *Runner) commitBatch(ctx context.Context, pair Pair, cur *batch, res *PairResult) error {
	checkpoint := cur.records[len(cur.records)-1].Offset

	started := time.Now()

	err := r.store.CommitBatch(ctx, pair.Lang, pair.Tokenizer, cur.records, checkpoint, store.Tallies{
		Skipped:    cur.skipped,
		Degenerate: cur.degenerate,
	})
	if err != nil {
		return fmt.Errorf("commit batch ending at %d: %w", checkpoint, err)
	}

	res.Sentences += cur.scored
	res.Skipped += cur.skipped
	res.Degenerate += cur.degenerate

	r.metrics.RecordBatch(ctx, string(pair.Lang), pair.Tokenizer, observability.BatchStats{
		Sentences:      int64(cur.scored),
		Tokens:         int64(cur.tokens),
		Hits:           int64(cur.hits),
		Skipped:        int64(cur.skipped),
		Degenerate:     int64(cur.degenerate),
		CommitDuration: time.Since(started),
	})

	return nil
}
