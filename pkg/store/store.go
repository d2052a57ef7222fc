// Package store is the durable, resumable aggregation store. It owns every
// HitRecord and checkpoint for the run, keyed by (language, tokenizer,
// offset), and guarantees that a batch of records and its checkpoint advance
// are committed as one atomic unit: a reader never observes one without the
// other. Backed by a single SQLite file (pure-Go driver) in WAL mode; SQLite
// transactions supply the all-or-nothing commit the resume protocol needs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite" // registers the pure-Go SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Sumatoshi-tech/tokbench/pkg/scoring"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
)

// Store failures are fatal for the run: a failed batch commit threatens the
// atomicity invariant, so the worker aborts rather than continue.
var (
	// ErrStore wraps any storage-level failure.
	ErrStore = errors.New("store")

	// ErrCheckpointRegression indicates an attempt to move a checkpoint
	// backwards. Checkpoints are monotonically non-decreasing.
	ErrCheckpointRegression = errors.New("checkpoint regression")

	// ErrDuplicateOffset indicates a record for an already-committed offset.
	// Exactly one HitRecord may exist per (language, tokenizer, offset).
	ErrDuplicateOffset = errors.New("duplicate offset")
)

const schema = `
CREATE TABLE IF NOT EXISTS hit_records (
	lang      TEXT    NOT NULL,
	tokenizer TEXT    NOT NULL,
	offset    INTEGER NOT NULL,
	hits      INTEGER NOT NULL,
	tokens    INTEGER NOT NULL,
	PRIMARY KEY (lang, tokenizer, offset)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS checkpoints (
	lang      TEXT    NOT NULL,
	tokenizer TEXT    NOT NULL,
	offset    INTEGER NOT NULL,
	PRIMARY KEY (lang, tokenizer)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS tallies (
	lang       TEXT    NOT NULL,
	tokenizer  TEXT    NOT NULL,
	skipped    INTEGER NOT NULL DEFAULT 0,
	degenerate INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (lang, tokenizer)
) WITHOUT ROWID;
`

// Tallies are the per-(language, tokenizer) counters for sentences that did
// not produce a scorable token sequence.
type Tallies struct {
	Skipped    uint64
	Degenerate uint64
}

// Store is a durable record/checkpoint store over one SQLite file. Writes
// follow the single-writer-per-(language, tokenizer) discipline; concurrent
// writers for distinct pairs are safe because SQLite serializes transactions.
type Store struct {
	db *sql.DB
}

// Open opens (creating if missing) the store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStore, path, err)
	}

	_, execErr := db.Exec(schema)
	if execErr != nil {
		db.Close()

		return nil, fmt.Errorf("%w: init schema: %v", ErrStore, execErr)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrStore, err)
	}

	return nil
}

// CommitBatch writes a processed batch as one atomic unit: all records, the
// checkpoint advance, and the tally increments commit together or not at all.
// The checkpoint must not regress, and every record offset must be new.
func (s *Store) CommitBatch(
	ctx context.Context,
	lang script.Language,
	tokenizer string,
	records []scoring.HitRecord,
	checkpoint uint64,
	tallies Tallies,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin batch: %v", ErrStore, err)
	}
	defer tx.Rollback()

	current, committed, err := checkpointTx(ctx, tx, lang, tokenizer)
	if err != nil {
		return err
	}

	if committed && checkpoint < current {
		return fmt.Errorf("%w: %d < %d for (%s, %s)",
			ErrCheckpointRegression, checkpoint, current, lang, tokenizer)
	}

	for _, rec := range records {
		_, insErr := tx.ExecContext(ctx,
			`INSERT INTO hit_records (lang, tokenizer, offset, hits, tokens) VALUES (?, ?, ?, ?, ?)`,
			string(lang), tokenizer, int64(rec.Offset), int64(rec.Hits), int64(rec.Tokens),
		)
		if insErr != nil {
			if isUniqueViolation(insErr) {
				return fmt.Errorf("%w: offset %d for (%s, %s)",
					ErrDuplicateOffset, rec.Offset, lang, tokenizer)
			}

			return fmt.Errorf("%w: insert record: %v", ErrStore, insErr)
		}
	}

	_, cpErr := tx.ExecContext(ctx,
		`INSERT INTO checkpoints (lang, tokenizer, offset) VALUES (?, ?, ?)
		 ON CONFLICT (lang, tokenizer) DO UPDATE SET offset = excluded.offset`,
		string(lang), tokenizer, int64(checkpoint),
	)
	if cpErr != nil {
		return fmt.Errorf("%w: advance checkpoint: %v", ErrStore, cpErr)
	}

	_, tallyErr := tx.ExecContext(ctx,
		`INSERT INTO tallies (lang, tokenizer, skipped, degenerate) VALUES (?, ?, ?, ?)
		 ON CONFLICT (lang, tokenizer) DO UPDATE SET
			skipped = skipped + excluded.skipped,
			degenerate = degenerate + excluded.degenerate`,
		string(lang), tokenizer, int64(tallies.Skipped), int64(tallies.Degenerate),
	)
	if tallyErr != nil {
		return fmt.Errorf("%w: update tallies: %v", ErrStore, tallyErr)
	}

	commitErr := tx.Commit()
	if commitErr != nil {
		return fmt.Errorf("%w: commit batch: %v", ErrStore, commitErr)
	}

	return nil
}

// Checkpoint returns the highest fully-committed offset for the pair. The
// second return is false when no batch has ever been committed.
func (s *Store) Checkpoint(
	ctx context.Context, lang script.Language, tokenizer string,
) (uint64, bool, error) {
	var offset int64

	err := s.db.QueryRowContext(ctx,
		`SELECT offset FROM checkpoints WHERE lang = ? AND tokenizer = ?`,
		string(lang), tokenizer,
	).Scan(&offset)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("%w: read checkpoint: %v", ErrStore, err)
	}

	return uint64(offset), true, nil
}

// Tallies returns the skip/degenerate counters for the pair.
func (s *Store) Tallies(
	ctx context.Context, lang script.Language, tokenizer string,
) (Tallies, error) {
	var skipped, degenerate int64

	err := s.db.QueryRowContext(ctx,
		`SELECT skipped, degenerate FROM tallies WHERE lang = ? AND tokenizer = ?`,
		string(lang), tokenizer,
	).Scan(&skipped, &degenerate)

	if errors.Is(err, sql.ErrNoRows) {
		return Tallies{}, nil
	}

	if err != nil {
		return Tallies{}, fmt.Errorf("%w: read tallies: %v", ErrStore, err)
	}

	return Tallies{Skipped: uint64(skipped), Degenerate: uint64(degenerate)}, nil
}

// Reset deletes all state for the pair: records, checkpoint, tallies. Used
// when a run starts fresh instead of resuming.
func (s *Store) Reset(ctx context.Context, lang script.Language, tokenizer string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin reset: %v", ErrStore, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"hit_records", "checkpoints", "tallies"} {
		_, delErr := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE lang = ? AND tokenizer = ?`,
			string(lang), tokenizer,
		)
		if delErr != nil {
			return fmt.Errorf("%w: reset %s: %v", ErrStore, table, delErr)
		}
	}

	commitErr := tx.Commit()
	if commitErr != nil {
		return fmt.Errorf("%w: commit reset: %v", ErrStore, commitErr)
	}

	return nil
}

func checkpointTx(
	ctx context.Context, tx *sql.Tx, lang script.Language, tokenizer string,
) (uint64, bool, error) {
	var offset int64

	err := tx.QueryRowContext(ctx,
		`SELECT offset FROM checkpoints WHERE lang = ? AND tokenizer = ?`,
		string(lang), tokenizer,
	).Scan(&offset)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("%w: read checkpoint: %v", ErrStore, err)
	}

	return uint64(offset), true, nil
}

// isUniqueViolation reports whether the error is a primary-key conflict.
// Only SQLITE_CONSTRAINT_PRIMARYKEY qualifies; other constraint classes
// stay plain storage failures.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error

	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
