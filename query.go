package glossa

import (
	"iter"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Parent returns the languoid's classification parent, or nil at a root.
func (l *Languoid) Parent() *Languoid {
	if l.parent == none {
		return nil
	}
	return &l.db.languoids[l.parent]
}

// Children returns the direct children in canonical ID order.
func (l *Languoid) Children() []*Languoid {
	return l.db.resolveLanguoids(l.children)
}

// Siblings returns the other children of the languoid's parent. A root
// languoid has no siblings.
func (l *Languoid) Siblings() []*Languoid {
	p := l.Parent()
	if p == nil {
		return nil
	}
	out := make([]*Languoid, 0, len(p.children)-1)
	for _, c := range p.children {
		if sib := &l.db.languoids[c]; sib != l {
			out = append(out, sib)
		}
	}
	return out
}

// FamilyTree returns the lineage from the root family down to the languoid
// itself, inclusive.
func (l *Languoid) FamilyTree() []*Languoid {
	var up []*Languoid
	for cur := l; cur != nil; cur = cur.Parent() {
		up = append(up, cur)
	}
	for i, j := 0, len(up)-1; i < j; i, j = i+1, j-1 {
		up[i], up[j] = up[j], up[i]
	}
	return up
}

// RootFamily returns the topmost ancestor, or the languoid itself when it has
// no parent.
func (l *Languoid) RootFamily() *Languoid {
	cur := l
	for p := cur.Parent(); p != nil; p = cur.Parent() {
		cur = p
	}
	return cur
}

// Descendants iterates the full subtree below the languoid in depth-first
// preorder, excluding the languoid itself. Lazy: walking stops as soon as the
// consumer does.
func (l *Languoid) Descendants() iter.Seq[*Languoid] {
	return func(yield func(*Languoid) bool) {
		stack := make([]int32, len(l.children))
		copy(stack, l.children)
		// Children are pushed in reverse so they pop in canonical order.
		for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
			stack[i], stack[j] = stack[j], stack[i]
		}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node := &l.db.languoids[i]
			if !yield(node) {
				return
			}
			for k := len(node.children) - 1; k >= 0; k-- {
				stack = append(stack, node.children[k])
			}
		}
	}
}

// Macrolanguage returns the macrolanguage this languoid belongs to, or nil.
func (l *Languoid) Macrolanguage() *Languoid {
	if l.macro == none {
		return nil
	}
	return &l.db.languoids[l.macro]
}

// IndividualLanguages returns the individual languages grouped under this
// macrolanguage, in canonical ID order.
func (l *Languoid) IndividualLanguages() []*Languoid {
	return l.db.resolveLanguoids(l.individuals)
}

// Scripts returns the languoid's script attachments with their usage flags.
func (l *Languoid) Scripts() []ScriptUse {
	out := make([]ScriptUse, len(l.scripts))
	copy(out, l.scripts)
	return out
}

// CanonicalScripts returns the scripts the languoid is canonically written
// in, per the merged canonical flag.
func (l *Languoid) CanonicalScripts() []*Script {
	var out []*Script
	for _, u := range l.scripts {
		if u.Canonical == TriTrue {
			out = append(out, &l.db.scripts[u.script])
		}
	}
	return out
}

// Regions returns the languoid's region attachments.
func (l *Languoid) Regions() []RegionUse {
	out := make([]RegionUse, len(l.regions))
	copy(out, l.regions)
	return out
}

// OfficialRegions returns the regions where the languoid has official status.
func (l *Languoid) OfficialRegions() []*Region {
	var out []*Region
	for _, u := range l.regions {
		if u.Official == TriTrue {
			out = append(out, &l.db.regions[u.region])
		}
	}
	return out
}

// SameScript returns the other languoids written in any of this languoid's
// scripts, in canonical ID order.
func (l *Languoid) SameScript() []*Languoid {
	return l.fellow(func() []int32 {
		var idxs []int32
		for _, u := range l.scripts {
			for _, user := range l.db.scripts[u.script].users {
				idxs = append(idxs, user.languoid)
			}
		}
		return idxs
	})
}

// SameRegion returns the other languoids used in any of this languoid's
// regions, in canonical ID order.
func (l *Languoid) SameRegion() []*Languoid {
	return l.fellow(func() []int32 {
		var idxs []int32
		for _, u := range l.regions {
			for _, user := range l.db.regions[u.region].languoids {
				idxs = append(idxs, user.languoid)
			}
		}
		return idxs
	})
}

func (l *Languoid) fellow(collect func() []int32) []*Languoid {
	seen := make(map[int32]bool)
	var idxs []int32
	for _, i := range collect() {
		if i != l.self && !seen[i] {
			seen[i] = true
			idxs = append(idxs, i)
		}
	}
	sort.Slice(idxs, func(a, b int) bool { return idxs[a] < idxs[b] })
	return l.db.resolveLanguoids(idxs)
}

// NLLBCodes returns the languoid's NLLB-style codes, one per attached script:
// the ISO 639-3 code joined to the ISO 15924 code. Empty when the languoid
// has no ISO 639-3 code or no scripts.
func (l *Languoid) NLLBCodes() []string {
	base := l.Code(ISO6393)
	if base == "" {
		return nil
	}
	out := make([]string, 0, len(l.scripts))
	for _, u := range l.scripts {
		out = append(out, base+"_"+u.Code)
	}
	sort.Strings(out)
	return out
}

// NameIn returns the languoid's name as written in the given language (a code
// under any standard). Canonical entries win over alternates; "" when no
// entry matches.
func (l *Languoid) NameIn(lang string) string {
	fallback := ""
	for _, n := range l.Names {
		if n.InLanguage != lang {
			continue
		}
		if n.Canonical {
			return n.Name
		}
		if fallback == "" {
			fallback = n.Name
		}
	}
	return fallback
}

func (db *Database) resolveLanguoids(idxs []int32) []*Languoid {
	out := make([]*Languoid, len(idxs))
	for i, idx := range idxs {
		out[i] = &db.languoids[idx]
	}
	return out
}

// Languoids returns every languoid written in this script, in canonical ID
// order.
func (s *Script) Languoids() []*Languoid {
	out := make([]*Languoid, len(s.users))
	for i, u := range s.users {
		out[i] = &s.db.languoids[u.languoid]
	}
	return out
}

// CanonicalLanguoids returns the languoids for which this script is the
// canonical writing system.
func (s *Script) CanonicalLanguoids() []*Languoid {
	var out []*Languoid
	for _, u := range s.users {
		if u.canonical == TriTrue {
			out = append(out, &s.db.languoids[u.languoid])
		}
	}
	return out
}

// ParentRegion returns the containing region (subdivision -> country), or nil.
func (r *Region) ParentRegion() *Region {
	if r.parent == none {
		return nil
	}
	return &r.db.regions[r.parent]
}

// Subdivisions returns the region's direct subdivisions in canonical ID order.
func (r *Region) Subdivisions() []*Region {
	out := make([]*Region, len(r.children))
	for i, c := range r.children {
		out[i] = &r.db.regions[c]
	}
	return out
}

// Languoids returns every languoid attached to the region, in canonical ID
// order.
func (r *Region) Languoids() []*Languoid {
	out := make([]*Languoid, len(r.languoids))
	for i, u := range r.languoids {
		out[i] = &r.db.languoids[u.languoid]
	}
	return out
}

// AllLanguoids returns the languoids attached to the region or to any of its
// subdivisions, deduplicated, in canonical ID order.
func (r *Region) AllLanguoids() []*Languoid {
	seen := make(map[int32]bool)
	var idxs []int32
	var walk func(*Region)
	walk = func(reg *Region) {
		for _, u := range reg.languoids {
			if !seen[u.languoid] {
				seen[u.languoid] = true
				idxs = append(idxs, u.languoid)
			}
		}
		for _, c := range reg.children {
			walk(&r.db.regions[c])
		}
	}
	walk(r)
	sort.Slice(idxs, func(a, b int) bool { return idxs[a] < idxs[b] })
	return r.db.resolveLanguoids(idxs)
}

// OfficialLanguoids returns the languoids with official status in the region.
func (r *Region) OfficialLanguoids() []*Languoid {
	var out []*Languoid
	for _, u := range r.languoids {
		if u.official == TriTrue {
			out = append(out, &r.db.languoids[u.languoid])
		}
	}
	return out
}

// Search match ranks, best first.
const (
	matchExactCode = iota
	matchExactName
	matchExactAlternate
	matchPrefix
	matchSubstring
)

// Search finds languoids whose codes or names match the query, best matches
// first. Name matching is Unicode case-folded; ties break on canonical ID.
func (db *Database) Search(query string) []*Languoid {
	folder := cases.Fold()
	q := folder.String(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type hit struct {
		rank int
		idx  int
	}
	var hits []hit
	for i := range db.languoids {
		l := &db.languoids[i]
		rank := -1

		for _, std := range standardOrder {
			if code, ok := l.Codes[std]; ok && folder.String(code) == q {
				rank = matchExactCode
				break
			}
		}
		if rank < 0 {
			name := folder.String(l.Name)
			endonym := folder.String(l.Endonym)
			switch {
			case name == q || endonym == q:
				rank = matchExactName
			case strings.HasPrefix(name, q) || strings.HasPrefix(endonym, q):
				rank = matchPrefix
			case strings.Contains(name, q) || strings.Contains(endonym, q):
				rank = matchSubstring
			}
		}
		if rank < 0 || rank > matchExactAlternate {
			for _, n := range l.Names {
				folded := folder.String(n.Name)
				if folded == q {
					rank = matchExactAlternate
					break
				}
				if rank < 0 && strings.Contains(folded, q) {
					rank = matchSubstring
				}
			}
		}
		if rank >= 0 {
			hits = append(hits, hit{rank: rank, idx: i})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return hits[a].idx < hits[b].idx
	})
	out := make([]*Languoid, len(hits))
	for i, h := range hits {
		out[i] = &db.languoids[h.idx]
	}
	return out
}

// SearchScripts finds scripts by code or name, best matches first.
func (db *Database) SearchScripts(query string) []*Script {
	folder := cases.Fold()
	q := folder.String(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	type hit struct {
		rank int
		idx  int
	}
	var hits []hit
	for i := range db.scripts {
		s := &db.scripts[i]
		rank := -1
		name := folder.String(s.Name)
		full := folder.String(s.FullName)
		switch {
		case folder.String(s.Code) == q:
			rank = matchExactCode
		case name == q || full == q:
			rank = matchExactName
		case strings.HasPrefix(name, q) || strings.HasPrefix(full, q):
			rank = matchPrefix
		case strings.Contains(name, q) || strings.Contains(full, q):
			rank = matchSubstring
		}
		if rank >= 0 {
			hits = append(hits, hit{rank: rank, idx: i})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return hits[a].idx < hits[b].idx
	})
	out := make([]*Script, len(hits))
	for i, h := range hits {
		out[i] = &db.scripts[h.idx]
	}
	return out
}

// SearchRegions finds regions by code or name, best matches first.
func (db *Database) SearchRegions(query string) []*Region {
	folder := cases.Fold()
	q := folder.String(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	type hit struct {
		rank int
		idx  int
	}
	var hits []hit
	for i := range db.regions {
		r := &db.regions[i]
		rank := -1
		name := folder.String(r.Name)
		official := folder.String(r.OfficialName)
		switch {
		case folder.String(r.Code) == q:
			rank = matchExactCode
		case name == q || official == q:
			rank = matchExactName
		case strings.HasPrefix(name, q) || strings.HasPrefix(official, q):
			rank = matchPrefix
		case strings.Contains(name, q) || strings.Contains(official, q):
			rank = matchSubstring
		}
		if rank >= 0 {
			hits = append(hits, hit{rank: rank, idx: i})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return hits[a].idx < hits[b].idx
	})
	out := make([]*Region, len(hits))
	for i, h := range hits {
		out[i] = &db.regions[h.idx]
	}
	return out
}
