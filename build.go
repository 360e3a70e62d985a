package glossa

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder ingests source adapters and produces an immutable Database. The
// same inputs always produce the same graph, whatever order the adapters ran
// in or how many merge workers were used.
type Builder struct {
	adapters []SourceAdapter
	pri      *PriorityTable
	log      *zap.Logger
	parallel int
}

// NewBuilder returns a Builder with the default priority table, no logging,
// and one merge worker per CPU.
func NewBuilder() *Builder {
	return &Builder{
		pri:      DefaultPriorities(),
		log:      zap.NewNop(),
		parallel: runtime.NumCPU(),
	}
}

// WithPriorities replaces the source priority table.
func (b *Builder) WithPriorities(pri *PriorityTable) *Builder {
	b.pri = pri
	return b
}

// WithLogger attaches a logger for build progress and statistics.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithParallel sets the merge worker count. Values below 1 mean serial.
func (b *Builder) WithParallel(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.parallel = n
	return b
}

// AddSource registers an adapter. Each source tag may be registered once and
// must appear in the priority table.
func (b *Builder) AddSource(a SourceAdapter) *Builder {
	b.adapters = append(b.adapters, a)
	return b
}

// Build runs the full pipeline: ingest, group, merge, assemble, index. The
// returned Database is complete and self-contained; the build report is
// available through its Report method and persists with Save.
func (b *Builder) Build(ctx context.Context) (*Database, error) {
	start := time.Now()

	if len(b.adapters) == 0 {
		return nil, errors.New("glossa: build with no sources")
	}
	seen := make(map[string]bool, len(b.adapters))
	for _, a := range b.adapters {
		tag := a.Source()
		if seen[tag] {
			return nil, fmt.Errorf("glossa: source %q registered twice", tag)
		}
		seen[tag] = true
		if _, ok := b.pri.Rank(tag); !ok {
			return nil, fmt.Errorf("glossa: source %q has no priority rank", tag)
		}
	}

	recs, tombstoneRecs, malformed, err := b.ingest(ctx)
	if err != nil {
		return nil, err
	}
	b.log.Info("ingest complete",
		zap.Int("records", len(recs)),
		zap.Int("tombstones", len(tombstoneRecs)),
		zap.Int("malformed", malformed))

	groups := groupRecords(recs)
	ids := assignCanonicalIDs(groups)
	b.log.Info("identity resolution complete",
		zap.Int("groups", len(groups)))

	merged, conflicts, err := b.mergeAll(ctx, groups, ids)
	if err != nil {
		return nil, err
	}

	db := &Database{}
	dangling, err := assemble(db, merged)
	if err != nil {
		return nil, err
	}

	tombstones := mergeDeprecated(tombstoneRecs)
	idx, err := buildIndex(db, tombstones)
	if err != nil {
		return nil, err
	}
	db.idx = idx
	db.tombstones = tombstones
	db.report = Report{
		Conflicts: conflicts,
		Dangling:  dangling,
		Malformed: malformed,
	}

	b.log.Info("build complete",
		zap.Int("languoids", len(db.languoids)),
		zap.Int("scripts", len(db.scripts)),
		zap.Int("regions", len(db.regions)),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("dangling", len(dangling)),
		zap.Duration("elapsed", time.Since(start)))
	return db, nil
}

// ingest drains every adapter in registration order, normalizing as it goes.
// Malformed records are counted and skipped; I/O errors abort.
func (b *Builder) ingest(ctx context.Context) (recs, tombstones []*record, malformed int, err error) {
	seq := 0
	var malformedErr *malformedError
	for _, a := range b.adapters {
		tag := a.Source()
		for raw, err := range a.Records(ctx) {
			if err != nil {
				if errors.As(err, &malformedErr) {
					malformed++
					b.log.Debug("skipping malformed record", zap.Error(err))
					continue
				}
				return nil, nil, 0, fmt.Errorf("source %s: %w", tag, err)
			}
			seq++
			rec, err := normalize(tag, seq, raw)
			if err != nil {
				if errors.As(err, &malformedErr) {
					malformed++
					b.log.Debug("skipping malformed record", zap.Error(err))
					continue
				}
				return nil, nil, 0, err
			}
			if rec.tombstone {
				tombstones = append(tombstones, rec)
			} else {
				recs = append(recs, rec)
			}
		}
	}
	return recs, tombstones, malformed, nil
}

// mergeAll merges groups concurrently. Each worker writes to its own slot, so
// the output order is the group order regardless of scheduling; conflict
// records are concatenated in that same order.
func (b *Builder) mergeAll(ctx context.Context, groups []*group, ids []string) ([]*mergedEntity, []ConflictRecord, error) {
	merged := make([]*mergedEntity, len(groups))
	perGroup := make([][]ConflictRecord, len(groups))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallel)
	for i := range groups {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, conflicts, err := mergeGroup(ids[i], groups[i], b.pri)
			if err != nil {
				return err
			}
			merged[i] = m
			perGroup[i] = conflicts
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var conflicts []ConflictRecord
	for _, cs := range perGroup {
		conflicts = append(conflicts, cs...)
	}
	return merged, conflicts, nil
}
