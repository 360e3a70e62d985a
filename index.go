package glossa

import "fmt"

// deprecatedEntry is one retired code: where it redirects, or a tombstone
// (target == none) when the code was retired with no single successor.
type deprecatedEntry struct {
	target int32
	reason string
}

// index maps external codes to arena indices. Live codes are globally unique
// per standard; retired codes live in a parallel table consulted only after
// the live one misses.
type index struct {
	live       map[Standard]map[string]int32
	scripts    map[string]int32
	regions    map[string]int32
	deprecated map[Standard]map[string]deprecatedEntry
}

// buildIndex indexes every code in the arena. Two languoids claiming the same
// live code under one standard is a fatal collision: serving either would be
// a silent wrong answer.
func buildIndex(db *Database, tombstones []DeprecatedCode) (*index, error) {
	ix := &index{
		live:       make(map[Standard]map[string]int32),
		scripts:    make(map[string]int32, len(db.scripts)),
		regions:    make(map[string]int32, len(db.regions)),
		deprecated: make(map[Standard]map[string]deprecatedEntry),
	}

	for i := range db.languoids {
		l := &db.languoids[i]
		for _, std := range standardOrder {
			code, ok := l.Codes[std]
			if !ok {
				continue
			}
			byCode := ix.live[std]
			if byCode == nil {
				byCode = make(map[string]int32)
				ix.live[std] = byCode
			}
			if prev, taken := byCode[code]; taken {
				return nil, &CollisionError{
					Standard: std,
					Codes:    []string{code},
					Entities: []string{db.languoids[prev].ID, l.ID},
				}
			}
			byCode[code] = int32(i)
		}
	}

	for i := range db.scripts {
		ix.scripts[db.scripts[i].Code] = int32(i)
	}
	for i := range db.regions {
		ix.regions[db.regions[i].Code] = int32(i)
	}

	// Redirects from entities' own retired-code lists, then standalone
	// tombstones. First claim wins; arena order makes that deterministic.
	addDeprecated := func(d DeprecatedCode, target int32) {
		byCode := ix.deprecated[d.Standard]
		if byCode == nil {
			byCode = make(map[string]deprecatedEntry)
			ix.deprecated[d.Standard] = byCode
		}
		if _, taken := byCode[d.Code]; !taken {
			byCode[d.Code] = deprecatedEntry{target: target, reason: d.Reason}
		}
	}
	for i := range db.languoids {
		for _, d := range db.languoids[i].Deprecated {
			addDeprecated(d, int32(i))
		}
	}
	for _, d := range tombstones {
		addDeprecated(d, none)
	}

	return ix, nil
}

// lookup resolves a languoid code. Live codes win over retired ones. A hit on
// a retired code returns the successor plus a Redirect; a tombstoned code
// returns a Redirect and ErrNotFound, since there is no single successor.
func (ix *index) lookup(std Standard, code string) (int32, *Redirect, error) {
	if std == ISO6392T {
		std = ISO6393
	}
	if byCode := ix.live[std]; byCode != nil {
		if i, ok := byCode[code]; ok {
			return i, nil, nil
		}
	}
	if byCode := ix.deprecated[std]; byCode != nil {
		if e, ok := byCode[code]; ok {
			r := &Redirect{Code: code, Standard: std, Reason: e.reason}
			if e.target == none {
				return none, r, fmt.Errorf("code %s retired without replacement under %s: %w", code, std, ErrNotFound)
			}
			return e.target, r, nil
		}
	}
	return none, nil, fmt.Errorf("code %s under %s: %w", code, std, ErrNotFound)
}
