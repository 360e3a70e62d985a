package glossa

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
)

// RawRecord is one source's view of one entity, as handed over by an adapter.
// IDs holds the identifier candidates usable to match this record against
// records from other sources; Fields holds everything else.
type RawRecord struct {
	Kind   Kind                `json:"kind"`
	IDs    map[Standard]string `json:"ids"`
	Fields map[string]any      `json:"fields,omitempty"`
}

// SourceAdapter produces the normalized record stream for one upstream
// source. Adapters own all I/O and parsing of the upstream distribution; the
// build pipeline only ever sees fully-read RawRecords.
type SourceAdapter interface {
	// Source is the source tag, which must appear in the priority table.
	Source() string
	// Records streams the source's records. Iteration stops early when the
	// yield function returns false or ctx is done.
	Records(ctx context.Context) iter.Seq2[RawRecord, error]
}

// JSONLAdapter reads RawRecords from a JSON-lines file, one record per line.
// Blank lines are skipped.
type JSONLAdapter struct {
	source string
	path   string
}

// NewJSONLAdapter creates an adapter named source reading from path.
func NewJSONLAdapter(source, path string) *JSONLAdapter {
	return &JSONLAdapter{source: source, path: path}
}

func (a *JSONLAdapter) Source() string { return a.source }

func (a *JSONLAdapter) Records(ctx context.Context) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		f, err := os.Open(a.path)
		if err != nil {
			yield(RawRecord{}, fmt.Errorf("open %s: %w", a.path, err))
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for sc.Scan() {
			line++
			if err := ctx.Err(); err != nil {
				yield(RawRecord{}, err)
				return
			}
			raw := sc.Bytes()
			if len(raw) == 0 {
				continue
			}
			var rec RawRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				// Unparseable lines are malformed records: skipped and
				// counted by the builder, not fatal to the whole build.
				if !yield(RawRecord{}, &malformedError{source: a.source, seq: line, reason: err.Error()}) {
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(RawRecord{}, fmt.Errorf("read %s: %w", a.path, err))
		}
	}
}
