package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sumatoshi-tech/tokbench/pkg/scoring"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// Records returns an iterator over the committed HitRecords for the pair in
// the closed offset range [from, to], in offset order. The iterator holds a
// single read transaction, so it observes a consistent snapshot: a batch
// committing concurrently is either fully visible or not at all. Rows are
// decoded one at a time; memory stays bounded regardless of range size.
func (s *Store) Records(
	ctx context.Context,
	lang script.Language,
	tokenizer string,
	from, to uint64,
) (*RecordIterator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT offset, hits, tokens FROM hit_records
		 WHERE lang = ? AND tokenizer = ? AND offset BETWEEN ? AND ?
		 ORDER BY offset`,
		string(lang), tokenizer, int64(from), int64(to),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %v", ErrStore, err)
	}

	return &RecordIterator{rows: rows}, nil
}

// RecordIterator streams HitRecords in offset order. The caller must Close it.
type RecordIterator struct {
	rows    *sql.Rows
	current scoring.HitRecord
	scanErr error
}

// Next advances to the next record, returning false at the end of the range
// or on a decoding error (reported by Err).
func (it *RecordIterator) Next() bool {
	if it.scanErr != nil || !it.rows.Next() {
		return false
	}

	var offset, hits, tokens int64

	it.scanErr = it.rows.Scan(&offset, &hits, &tokens)
	if it.scanErr != nil {
		return false
	}

	it.current = scoring.HitRecord{
		Offset: uint64(offset),
		Hits:   uint64(hits),
		Tokens: uint64(tokens),
	}

	return true
}

// Record returns the record at the iterator's current position.
func (it *RecordIterator) Record() scoring.HitRecord {
	return it.current
}

// Err returns the first error encountered while iterating.
func (it *RecordIterator) Err() error {
	if it.scanErr != nil {
		return fmt.Errorf("%w: scan record: %v", ErrStore, it.scanErr)
	}

	err := it.rows.Err()
	if err != nil {
		return fmt.Errorf("%w: iterate records: %v", ErrStore, err)
	}

	return nil
}

// Close releases the underlying read transaction.
func (it *RecordIterator) Close() error {
	err := it.rows.Close()
	if err != nil {
		return fmt.Errorf("%w: close iterator: %v", ErrStore, err)
	}

	return nil
}
