package glossa

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PriorityTable is a total order over source tags. Lower rank wins: when two
// sources disagree on a field, the value comes from the lower-ranked source.
// Precedence is data, not iteration order, so it is auditable and testable.
type PriorityTable struct {
	ranks map[string]int
}

// DefaultPriorities returns the built-in table: standards-body and research
// catalogs outrank crowd-sourced locale data.
func DefaultPriorities() *PriorityTable {
	return &PriorityTable{ranks: map[string]int{
		"glottolog":  10,
		"iana":       15,
		"linguameta": 20,
		"wikidata":   30,
		"glotscript": 40,
		"pycountry":  50,
		"wikipedia":  60,
		"sil":        70,
	}}
}

// LoadPriorities reads a YAML file mapping source tag to rank:
//
//	glottolog: 10
//	linguameta: 20
//
// Ranks must be distinct — ties would make conflict resolution depend on
// arrival order, which the build forbids.
func LoadPriorities(path string) (*PriorityTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read priority table: %w", err)
	}
	var ranks map[string]int
	if err := yaml.Unmarshal(data, &ranks); err != nil {
		return nil, fmt.Errorf("parse priority table %s: %w", path, err)
	}
	return NewPriorities(ranks)
}

// NewPriorities builds a table from explicit ranks, rejecting duplicates.
func NewPriorities(ranks map[string]int) (*PriorityTable, error) {
	byRank := make(map[int]string, len(ranks))
	for source, rank := range ranks {
		if other, ok := byRank[rank]; ok {
			return nil, fmt.Errorf("priority table: %q and %q share rank %d", source, other, rank)
		}
		byRank[rank] = source
	}
	cp := make(map[string]int, len(ranks))
	for source, rank := range ranks {
		cp[source] = rank
	}
	return &PriorityTable{ranks: cp}, nil
}

// Rank returns the source's rank. Unknown sources are rejected at build
// start, before any record is processed.
func (p *PriorityTable) Rank(source string) (int, bool) {
	rank, ok := p.ranks[source]
	return rank, ok
}

// Sources lists the configured source tags, highest priority first.
func (p *PriorityTable) Sources() []string {
	out := make([]string, 0, len(p.ranks))
	for source := range p.ranks {
		out = append(out, source)
	}
	sort.Slice(out, func(i, j int) bool { return p.ranks[out[i]] < p.ranks[out[j]] })
	return out
}
