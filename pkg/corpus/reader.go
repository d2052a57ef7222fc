// Package corpus reads newline-delimited sentence files, one file per
// language, assigning each sentence a monotonic zero-based offset. Files with
// the .lz4 extension are decompressed transparently. The reader is the
// pipeline-facing edge of the external loader: it validates encoding and
// tracks offsets, nothing more.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pierrec/lz4/v4"
)

// ErrInvalidLine indicates a line that is not valid UTF-8. The sentence is
// skipped and tallied; its offset still advances.
var ErrInvalidLine = errors.New("invalid line")

// lz4Extension marks transparently decompressed corpus and vocabulary files.
const lz4Extension = ".lz4"

// Scanner buffer sizing. Crawl-dump sentences can be long; lines above the
// max are a hard read error rather than silent truncation.
const (
	initialBufSize = 64 * 1024
	maxLineBytes   = 4 * 1024 * 1024
)

// Sentence is one corpus line with its monotonic offset.
type Sentence struct {
	Text   string
	Offset uint64
}

// Reader streams sentences from a corpus file in offset order.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	next    uint64
}

// OpenReader opens a possibly lz4-compressed file for reading. Shared with
// the vocabulary loader so both sides treat compressed inputs identically.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !strings.HasSuffix(path, lz4Extension) {
		return f, nil
	}

	return &lz4ReadCloser{Reader: lz4.NewReader(f), file: f}, nil
}

// lz4ReadCloser closes the underlying file when the stream is done.
type lz4ReadCloser struct {
	*lz4.Reader
	file *os.File
}

func (rc *lz4ReadCloser) Close() error {
	return rc.file.Close()
}

// Open opens a corpus file for sequential reading from offset zero.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}

	var src io.Reader = f
	if strings.HasSuffix(path, lz4Extension) {
		src = lz4.NewReader(f)
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufSize), maxLineBytes)

	return &Reader{file: f, scanner: scanner}, nil
}

// Next returns the next sentence. It returns io.EOF when the corpus is
// exhausted, and ErrInvalidLine (with the offending offset set in the
// returned sentence) for undecodable lines. The offset advances either way,
// so resume arithmetic stays monotonic.
func (r *Reader) Next() (Sentence, error) {
	if !r.scanner.Scan() {
		scanErr := r.scanner.Err()
		if scanErr != nil {
			return Sentence{}, fmt.Errorf("read corpus: %w", scanErr)
		}

		return Sentence{}, io.EOF
	}

	s := Sentence{Text: r.scanner.Text(), Offset: r.next}
	r.next++

	if !utf8.ValidString(s.Text) {
		return Sentence{Offset: s.Offset}, fmt.Errorf("%w: offset %d", ErrInvalidLine, s.Offset)
	}

	return s, nil
}

// Skip advances past n sentences without decoding them. Used on resume to
// reposition after the last committed checkpoint.
func (r *Reader) Skip(n uint64) error {
	for skipped := uint64(0); skipped < n; skipped++ {
		if !r.scanner.Scan() {
			scanErr := r.scanner.Err()
			if scanErr != nil {
				return fmt.Errorf("skip corpus: %w", scanErr)
			}

			return io.EOF
		}

		r.next++
	}

	return nil
}

// Offset returns the offset the next call to Next will assign.
func (r *Reader) Offset() uint64 {
	return r.next
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Count returns the number of lines in the corpus file.
func Count(path string) (uint64, error) {
	rc, err := OpenReader(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, initialBufSize), maxLineBytes)

	var n uint64
	for scanner.Scan() {
		n++
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return 0, fmt.Errorf("count corpus: %w", scanErr)
	}

	return n, nil
}
