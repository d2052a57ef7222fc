// Package tokenize provides a uniform adapter layer over heterogeneous
// word-level tokenizers. Every adapter performs lazy one-time setup on first
// use, isolated per instance, so a broken tokenizer never prevents the others
// from running. Adapters are not shared across workers: each worker constructs
// its own instance from the registry.
package tokenize

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Tokenizer converts a cleaned sentence into an ordered sequence of tokens.
// Tokenize must be callable repeatedly and produce identical output for
// identical input; all mutable state is confined to the one-time setup.
type Tokenizer interface {
	// Name returns the registry id of the tokenizer.
	Name() string

	// Tokenize splits text into tokens. Setup failures surface as *InitError,
	// per-call failures as *RuntimeError.
	Tokenize(text string) ([]string, error)
}

// ErrUnknownTokenizer indicates a tokenizer id not present in the registry.
var ErrUnknownTokenizer = errors.New("unknown tokenizer")

// InitError reports a one-time setup failure. It is fatal for the affected
// tokenizer only; the pipeline continues with the remaining tokenizers.
type InitError struct {
	Tokenizer string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("tokenizer %s: init: %v", e.Tokenizer, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// RuntimeError reports a per-call failure. The affected sentence is skipped
// for that tokenizer and processing continues.
type RuntimeError struct {
	Tokenizer string
	Err       error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("tokenizer %s: %v", e.Tokenizer, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Config carries adapter construction options. Fields irrelevant to a given
// adapter are ignored by its factory.
type Config struct {
	// DictPath is the dictionary file for the maximum-match segmenter.
	DictPath string

	// Encoding is the BPE encoding name for the tiktoken adapter.
	Encoding string
}

// Factory constructs a fresh adapter instance. Construction is cheap;
// expensive work (model loading, dictionary parsing) happens lazily on the
// first Tokenize call.
type Factory func(cfg Config) Tokenizer

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a tokenizer factory under the given id. Later registrations
// replace earlier ones.
func Register(id string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[id] = f
}

// New constructs a fresh adapter instance for the given id.
func New(id string, cfg Config) (Tokenizer, error) {
	registryMu.RLock()
	f, ok := registry[id]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTokenizer, id)
	}

	return f(cfg), nil
}

// IDs returns the registered tokenizer ids in sorted order.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// lazySetup guards idempotent one-time adapter initialization. The first
// error is sticky: every subsequent call observes the same failure.
type lazySetup struct {
	once sync.Once
	err  error
}

func (l *lazySetup) ensure(name string, setup func() error) error {
	l.once.Do(func() {
		l.err = setup()
	})

	if l.err != nil {
		return &InitError{Tokenizer: name, Err: l.err}
	}

	return nil
}
