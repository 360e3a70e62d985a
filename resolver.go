package glossa

import (
	"fmt"
	"sort"
)

// group is one resolved identity: all records, across sources, that denote
// the same real-world entity.
type group struct {
	kind    Kind
	records []*record // in arrival order

	// sortKey is the lexicographically smallest (standard rank, code) pair
	// across all member identifiers. Groups are ordered by it before
	// canonical IDs are assigned, so IDs never depend on arrival order.
	sortStd  int
	sortCode string
}

// idKey is one (kind, standard, code) identifier occurrence. Kinds have
// disjoint key spaces: a script code never matches a languoid code.
type idKey struct {
	kind Kind
	std  Standard
	code string
}

// groupRecords partitions records into identity groups. Two records belong
// together when they share at least one identifier value in a matching
// standard; matching is transitive (A~B on one key and B~C on another puts
// A, B, C in one group), modeling sources with partial identifier coverage.
func groupRecords(recs []*record) []*group {
	parent := make([]int, len(recs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra > rb {
				ra, rb = rb, ra
			}
			parent[rb] = ra // root at the earliest record
		}
	}

	firstSeen := make(map[idKey]int)
	for i, rec := range recs {
		for _, std := range matchStandards(rec.kind) {
			code, ok := rec.ids[std]
			if !ok {
				continue
			}
			key := idKey{kind: rec.kind, std: std, code: code}
			if j, ok := firstSeen[key]; ok {
				union(i, j)
			} else {
				firstSeen[key] = i
			}
		}
	}

	byRoot := make(map[int]*group)
	var groups []*group
	for i, rec := range recs {
		root := find(i)
		g, ok := byRoot[root]
		if !ok {
			g = &group{kind: rec.kind, sortStd: len(standardOrder) + 1}
			byRoot[root] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, rec)
		for std, code := range rec.ids {
			rank := standardRank(std)
			if rank < g.sortStd || (rank == g.sortStd && code < g.sortCode) {
				g.sortStd, g.sortCode = rank, code
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.kind != b.kind {
			return kindOrder(a.kind) < kindOrder(b.kind)
		}
		if a.sortStd != b.sortStd {
			return a.sortStd < b.sortStd
		}
		return a.sortCode < b.sortCode
	})
	return groups
}

func kindOrder(k Kind) int {
	switch k {
	case KindLanguoid:
		return 0
	case KindScript:
		return 1
	default:
		return 2
	}
}

// assignCanonicalIDs stamps each group with its canonical ID. IDs are dense
// per kind and stable across rebuilds of the same inputs because groups
// arrive pre-sorted by their smallest identifier.
func assignCanonicalIDs(groups []*group) []string {
	counters := map[Kind]int{}
	ids := make([]string, len(groups))
	for i, g := range groups {
		counters[g.kind]++
		switch g.kind {
		case KindLanguoid:
			ids[i] = fmt.Sprintf("lang:%06d", counters[g.kind])
		case KindScript:
			ids[i] = fmt.Sprintf("script:%04d", counters[g.kind])
		default:
			ids[i] = fmt.Sprintf("region:%04d", counters[g.kind])
		}
	}
	return ids
}
