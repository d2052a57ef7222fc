package aggregate_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Sumatoshi-tech/tokbench/pkg/aggregate"
	"github.com/Sumatoshi-tech/tokbench/pkg/scoring"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
)

const testTokenizer = "space"

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "bench.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestAggregate_EmptyStore(t *testing.T) {
	t.Parallel()

	s := openStore(t)

	res, err := aggregate.Aggregate(context.Background(), s, script.Urdu, testTokenizer)
	require.NoError(t, err)

	assert.Zero(t, res.Committed)
	assert.InDelta(t, 0.0, res.HitRatio(), 0.0001)
}

func TestAggregate_Sums(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	recs := []scoring.HitRecord{
		{Offset: 0, Hits: 3, Tokens: 4},
		{Offset: 1, Hits: 2, Tokens: 2},
		{Offset: 2, Hits: 0, Tokens: 0}, // Degenerate sentence.
	}
	require.NoError(t, s.CommitBatch(ctx, script.Urdu, testTokenizer, recs, 2,
		store.Tallies{Degenerate: 1}))

	res, err := aggregate.Aggregate(ctx, s, script.Urdu, testTokenizer)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), res.Hits)
	assert.Equal(t, uint64(6), res.Tokens)
	assert.Equal(t, uint64(2), res.Sentences)
	assert.Equal(t, uint64(3), res.Committed)
	assert.Equal(t, uint64(1), res.Degenerate)
	assert.InDelta(t, 5.0/6.0, res.HitRatio(), 0.0001)
}

func TestAggregate_DegenerateExcludedFromDenominator(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	// One perfect sentence plus many degenerate ones: ratio stays 1.0.
	recs := []scoring.HitRecord{{Offset: 0, Hits: 4, Tokens: 4}}
	for off := uint64(1); off <= 10; off++ {
		recs = append(recs, scoring.HitRecord{Offset: off})
	}

	require.NoError(t, s.CommitBatch(ctx, script.Hindi, testTokenizer, recs, 10,
		store.Tallies{Degenerate: 10}))

	res, err := aggregate.Aggregate(ctx, s, script.Hindi, testTokenizer)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.HitRatio(), 0.0001)
	assert.Equal(t, uint64(1), res.Sentences)
}

func TestAggregate_SeesOnlyCommittedState(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, script.Chinese, testTokenizer,
		[]scoring.HitRecord{{Offset: 0, Hits: 2, Tokens: 2}}, 0, store.Tallies{}))

	before, err := aggregate.Aggregate(ctx, s, script.Chinese, testTokenizer)
	require.NoError(t, err)

	require.NoError(t, s.CommitBatch(ctx, script.Chinese, testTokenizer,
		[]scoring.HitRecord{{Offset: 1, Hits: 1, Tokens: 2}}, 1, store.Tallies{}))

	after, err := aggregate.Aggregate(ctx, s, script.Chinese, testTokenizer)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), before.Committed)
	assert.Equal(t, uint64(2), after.Committed)
	assert.Equal(t, uint64(3), after.Hits)
}

func TestAll(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitBatch(ctx, script.Urdu, "space",
		[]scoring.HitRecord{{Offset: 0, Hits: 1, Tokens: 1}}, 0, store.Tallies{}))

	results, err := aggregate.All(ctx, s,
		[]script.Language{script.Urdu, script.Chinese}, []string{"space", "indic"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, uint64(1), results[0].Hits)
	assert.Zero(t, results[1].Committed)
}

// The ratio invariant holds for any committed record set: 0 <= ratio <= 1,
// and ratio == hits/tokens exactly when tokens > 0.
func TestAggregate_RatioInvariant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	run := 0

	rapid.Check(t, func(t *rapid.T) {
		run++

		s, err := store.Open(filepath.Join(dir, fmt.Sprintf("bench-%d.db", run)))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		defer s.Close()

		ctx := context.Background()

		n := rapid.IntRange(0, 30).Draw(t, "records")

		recs := make([]scoring.HitRecord, 0, n)
		for i := range n {
			tokens := rapid.Uint64Range(0, 20).Draw(t, "tokens")
			hits := rapid.Uint64Range(0, tokens).Draw(t, "hits")
			recs = append(recs, scoring.HitRecord{Offset: uint64(i), Hits: hits, Tokens: tokens})
		}

		if n > 0 {
			commitErr := s.CommitBatch(ctx, script.Urdu, testTokenizer, recs,
				uint64(n-1), store.Tallies{})
			if commitErr != nil {
				t.Fatalf("commit: %v", commitErr)
			}
		}

		res, aggErr := aggregate.Aggregate(ctx, s, script.Urdu, testTokenizer)
		if aggErr != nil {
			t.Fatalf("aggregate: %v", aggErr)
		}

		ratio := res.HitRatio()
		if ratio < 0 || ratio > 1 {
			t.Fatalf("ratio %f out of bounds", ratio)
		}

		if res.Tokens > 0 {
			want := float64(res.Hits) / float64(res.Tokens)
			if ratio != want {
				t.Fatalf("ratio %f != %f", ratio, want)
			}
		} else if ratio != 0 {
			t.Fatalf("ratio %f != 0 with no tokens", ratio)
		}
	})
}
