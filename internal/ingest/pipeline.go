package ingest

import (
	"context"
	"fmt"

	"finderhub-backend/internal/tabular"
)

// Store is the collection a pipeline persists into. Implementations bind the
// generic record fields onto their own schema.
type Store interface {
	// FindByKey reports whether an entity with this natural-key value
	// already exists.
	FindByKey(ctx context.Context, key string) (bool, error)
	Insert(ctx context.Context, rec tabular.Record) error
	InsertBatch(ctx context.Context, recs []tabular.Record) error
}

// ConditionalStore inserts only when the natural key is still absent,
// reporting whether a row was written. Required for PersistConditional.
type ConditionalStore interface {
	InsertUnique(ctx context.Context, rec tabular.Record) (bool, error)
}

type PersistMode string

const (
	// PersistPerRecord inserts each staged record as soon as it clears the
	// duplicate check.
	PersistPerRecord PersistMode = "per-record"
	// PersistBatch stages all records and bulk-inserts once at the end.
	PersistBatch PersistMode = "batch"
	// PersistConditional delegates duplicate detection to the store's
	// conditional insert, eliminating the lookup-then-insert window that
	// the other two modes leave open between concurrent requests.
	PersistConditional PersistMode = "conditional"
)

type Options struct {
	// KeyField is the natural-key column label.
	KeyField string
	// SkipMissingKey drops records with an empty or absent key from both
	// counters instead of treating them as insertable.
	SkipMissingKey bool
	Mode           PersistMode
}

type Result struct {
	Processed  int
	Duplicates int
}

// Run walks the normalized records in order, routing each to the insert
// batch or the duplicate counter. Any store error aborts the run; partial
// counts are not returned.
func Run(ctx context.Context, recs []tabular.Record, store Store, opts Options) (Result, error) {
	var res Result

	if opts.Mode == PersistConditional {
		return runConditional(ctx, recs, store, opts)
	}

	var staged []tabular.Record
	for _, rec := range recs {
		key := rec.Get(opts.KeyField)
		if key == "" {
			if opts.SkipMissingKey {
				continue
			}
			// Key-bearing pipelines without a skip rule still dedup on
			// the empty value, matching lookup by exact equality.
		}

		exists, err := store.FindByKey(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("lookup %s=%q: %w", opts.KeyField, key, err)
		}
		if exists {
			res.Duplicates++
			continue
		}

		switch opts.Mode {
		case PersistPerRecord:
			if err := store.Insert(ctx, rec); err != nil {
				return Result{}, fmt.Errorf("insert %s=%q: %w", opts.KeyField, key, err)
			}
		default:
			staged = append(staged, rec)
		}
		res.Processed++
	}

	if opts.Mode == PersistBatch && len(staged) > 0 {
		if err := store.InsertBatch(ctx, staged); err != nil {
			return Result{}, fmt.Errorf("bulk insert: %w", err)
		}
	}

	return res, nil
}

func runConditional(ctx context.Context, recs []tabular.Record, store Store, opts Options) (Result, error) {
	cond, ok := store.(ConditionalStore)
	if !ok {
		return Result{}, fmt.Errorf("store does not support conditional inserts")
	}

	var res Result
	for _, rec := range recs {
		if opts.SkipMissingKey && rec.Get(opts.KeyField) == "" {
			continue
		}
		inserted, err := cond.InsertUnique(ctx, rec)
		if err != nil {
			return Result{}, fmt.Errorf("conditional insert %s=%q: %w", opts.KeyField, rec.Get(opts.KeyField), err)
		}
		if inserted {
			res.Processed++
		} else {
			res.Duplicates++
		}
	}
	return res, nil
}
