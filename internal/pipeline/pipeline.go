// Package pipeline runs the benchmark: it streams corpus sentences through
// cleaning, tokenization, and scoring for every (language, tokenizer) pair,
// committing results to the aggregation store in atomic batches.
//
// Each pair is owned by exactly one worker, so no two writers ever touch the
// same store key range. Workers resume from the pair's checkpoint, which makes
// an interrupted run safe to restart without double-counting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/tokbench/internal/observability"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
	"github.com/Sumatoshi-tech/tokbench/pkg/vocab"
)

// ErrNoPairs indicates the options produce no (language, tokenizer) pairs.
var ErrNoPairs = errors.New("no language/tokenizer pairs to run")

// Pair is one (language, tokenizer) benchmark unit.
type Pair struct {
	Lang      script.Language
	Tokenizer string
}

// Options configures a benchmark run.
type Options struct {
	Languages  []script.Language
	Tokenizers []string

	// BatchSize is the number of sentences committed per store transaction.
	BatchSize int

	// Workers caps concurrently running pairs. Zero means one worker per pair.
	Workers int

	// CorpusPaths and VocabPaths map each language to its input files.
	CorpusPaths map[script.Language]string
	VocabPaths  map[script.Language]string

	// TokenizerConfig carries shared adapter resources (dictionary path,
	// BPE encoding name).
	TokenizerConfig tokenize.Config
}

// PairResult is the outcome of one pair's worker. Sentences counts records
// that produced at least one token, matching the aggregate definition.
type PairResult struct {
	Pair       Pair
	Sentences  uint64
	Skipped    uint64
	Degenerate uint64

	// Err is non-nil when the pair's tokenizer failed to initialize.
	// Fatal store errors abort the whole run instead and never appear here.
	Err error
}

// Summary collects per-pair outcomes for a completed run.
type Summary struct {
	Results []PairResult
}

// Failed returns the results of pairs whose tokenizer failed to initialize.
func (s Summary) Failed() []PairResult {
	var failed []PairResult

	for _, res := range s.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}

	return failed
}

// Runner executes the benchmark pipeline against a store.
type Runner struct {
	store   *store.Store
	logger  *slog.Logger
	metrics *observability.PipelineMetrics
	opts    Options
}

// New creates a Runner. metrics may be nil when export is disabled.
func New(st *store.Store, logger *slog.Logger, metrics *observability.PipelineMetrics, opts Options) *Runner {
	return &Runner{
		store:   st,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// Run executes all pairs and blocks until completion or a fatal error.
// Tokenizer initialization failures are reported in the Summary and do not
// abort other pairs; store errors abort the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	pairs := r.pairs()
	if len(pairs) == 0 {
		return Summary{}, ErrNoPairs
	}

	vocabs, err := r.loadVocabs()
	if err != nil {
		return Summary{}, err
	}

	group, groupCtx := errgroup.WithContext(ctx)

	limit := r.opts.Workers
	if limit <= 0 {
		limit = len(pairs)
	}

	group.SetLimit(limit)

	var mu sync.Mutex

	summary := Summary{Results: make([]PairResult, 0, len(pairs))}

	for _, pair := range pairs {
		group.Go(func() error {
			res, pairErr := r.runPair(groupCtx, pair, vocabs[pair.Lang])
			if pairErr != nil {
				var initErr *tokenize.InitError
				if errors.As(pairErr, &initErr) {
					r.logger.ErrorContext(groupCtx, "tokenizer failed to initialize",
						slog.String("lang", string(pair.Lang)),
						slog.String("tokenizer", pair.Tokenizer),
						slog.Any("error", pairErr))

					res.Err = pairErr
					pairErr = nil
				}
			}

			mu.Lock()
			summary.Results = append(summary.Results, res)
			mu.Unlock()

			return pairErr
		})
	}

	waitErr := group.Wait()
	if waitErr != nil {
		return summary, fmt.Errorf("pipeline run: %w", waitErr)
	}

	return summary, nil
}

// pairs builds the (language, tokenizer) cross product.
func (r *Runner) pairs() []Pair {
	pairs := make([]Pair, 0, len(r.opts.Languages)*len(r.opts.Tokenizers))

	for _, lang := range r.opts.Languages {
		for _, tok := range r.opts.Tokenizers {
			pairs = append(pairs, Pair{Lang: lang, Tokenizer: tok})
		}
	}

	return pairs
}

// loadVocabs loads each language's ground-truth vocabulary once. Sets are
// read-only after load and safe to share across the language's pairs.
func (r *Runner) loadVocabs() (map[script.Language]*vocab.Set, error) {
	vocabs := make(map[script.Language]*vocab.Set, len(r.opts.Languages))

	for _, lang := range r.opts.Languages {
		path := r.opts.VocabPaths[lang]

		set, err := vocab.Load(path, lang)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary for %s: %w", lang, err)
		}

		vocabs[lang] = set
	}

	return vocabs, nil
}
