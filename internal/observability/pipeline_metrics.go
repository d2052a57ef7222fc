package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSentencesTotal  = "tokbench.pipeline.sentences.total"
	metricTokensTotal     = "tokbench.pipeline.tokens.total"
	metricHitsTotal       = "tokbench.pipeline.hits.total"
	metricSkippedTotal    = "tokbench.pipeline.skipped.total"
	metricDegenerateTotal = "tokbench.pipeline.degenerate.total"
	metricCommitDuration  = "tokbench.store.commit.duration.seconds"

	attrLang      = "lang"
	attrTokenizer = "tokenizer"
)

// commitBucketBoundaries covers 1ms to 30s. Batch commits are small
// single-file SQLite transactions, so the low end dominates.
var commitBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// PipelineMetrics holds OTel instruments for benchmark pipeline metrics.
type PipelineMetrics struct {
	sentencesTotal  metric.Int64Counter
	tokensTotal     metric.Int64Counter
	hitsTotal       metric.Int64Counter
	skippedTotal    metric.Int64Counter
	degenerateTotal metric.Int64Counter
	commitDuration  metric.Float64Histogram
}

// BatchStats holds the statistics for a single committed batch,
// decoupled from pipeline types.
type BatchStats struct {
	Sentences      int64
	Tokens         int64
	Hits           int64
	Skipped        int64
	Degenerate     int64
	CommitDuration time.Duration
}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		sentencesTotal:  b.counter(metricSentencesTotal, "Total sentences scored", "{sentence}"),
		tokensTotal:     b.counter(metricTokensTotal, "Total tokens produced", "{token}"),
		hitsTotal:       b.counter(metricHitsTotal, "Total vocabulary hits", "{hit}"),
		skippedTotal:    b.counter(metricSkippedTotal, "Total sentences skipped on tokenizer failure", "{sentence}"),
		degenerateTotal: b.counter(metricDegenerateTotal, "Total sentences empty after cleaning", "{sentence}"),
		commitDuration:  b.histogram(metricCommitDuration, "Batch commit duration in seconds", "s", commitBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordBatch records statistics for one committed batch of a
// (language, tokenizer) pair. Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordBatch(ctx context.Context, lang, tokenizer string, stats BatchStats) {
	if pm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrLang, lang),
		attribute.String(attrTokenizer, tokenizer),
	)

	pm.sentencesTotal.Add(ctx, stats.Sentences, attrs)
	pm.tokensTotal.Add(ctx, stats.Tokens, attrs)
	pm.hitsTotal.Add(ctx, stats.Hits, attrs)
	pm.skippedTotal.Add(ctx, stats.Skipped, attrs)
	pm.degenerateTotal.Add(ctx, stats.Degenerate, attrs)
	pm.commitDuration.Record(ctx, stats.CommitDuration.Seconds(), attrs)
}
