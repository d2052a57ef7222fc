package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
)

// ErrSampleTooLarge indicates a requested sample size above the corpus size.
var ErrSampleTooLarge = errors.New("sample size exceeds corpus size")

// SampleIndices returns n distinct offsets drawn uniformly from [0, limit),
// sorted ascending so extraction can stream the corpus in one pass. The seed
// makes samples reproducible across runs.
func SampleIndices(limit, n uint64, seed int64) ([]uint64, error) {
	if n > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrSampleTooLarge, n, limit)
	}

	rng := rand.New(rand.NewSource(seed))

	// Floyd's algorithm: n iterations, no O(limit) shuffle.
	chosen := make(map[uint64]struct{}, n)
	for j := limit - n; j < limit; j++ {
		t := uint64(rng.Int63n(int64(j + 1)))
		if _, taken := chosen[t]; taken {
			chosen[j] = struct{}{}
		} else {
			chosen[t] = struct{}{}
		}
	}

	indices := make([]uint64, 0, n)
	for idx := range chosen {
		indices = append(indices, idx)
	}

	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	return indices, nil
}

// Extract streams the corpus once and writes the sentences at the given
// sorted offsets to outPath, newline-delimited.
func Extract(path, outPath string, indices []uint64) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create sample output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	pos := 0

	for pos < len(indices) {
		s, readErr := r.Next()
		if readErr != nil {
			if errors.Is(readErr, ErrInvalidLine) {
				// A selected offset can land on a bad line; drop it.
				if s.Offset == indices[pos] {
					pos++
				}

				continue
			}

			return fmt.Errorf("extract sample: %w", readErr)
		}

		if s.Offset != indices[pos] {
			continue
		}

		_, writeErr := fmt.Fprintln(w, s.Text)
		if writeErr != nil {
			return fmt.Errorf("write sample: %w", writeErr)
		}

		pos++
	}

	flushErr := w.Flush()
	if flushErr != nil {
		return fmt.Errorf("flush sample: %w", flushErr)
	}

	return nil
}
