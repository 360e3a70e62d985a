package glossa

import (
	"fmt"
	"sort"
	"strconv"
)

// mergedEntity is one canonical entity after conflict resolution, before
// graph assembly. Field values each come from exactly one source — the one
// selected by priority — never a blend.
type mergedEntity struct {
	ID     string
	Kind   Kind
	IDs    map[Standard]string
	Fields map[string]any

	ParentRef string
	MacroRef  string

	Scripts    []mergedScriptUse
	Regions    []mergedRegionUse
	Names      []NameEntry
	Deprecated []DeprecatedCode
}

type mergedScriptUse struct {
	scriptAttach
	Source string
}

type mergedRegionUse struct {
	regionAttach
	Source string
}

// candidate is one source's offer for a field value.
type candidate struct {
	rank   int
	seq    int
	source string
	value  any // string, int64, float64, or TriState
}

// pick sorts candidates by (priority rank, arrival sequence) and returns the
// winner. The sequence tie-break only matters when one source contributes
// twice; it is the single documented ordering dependency of the merge.
func pick(cands []candidate) candidate {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].rank != cands[j].rank {
			return cands[i].rank < cands[j].rank
		}
		return cands[i].seq < cands[j].seq
	})
	return cands[0]
}

// distinctValues returns the rendered distinct values in winner-first order.
// Callers must pass cands already sorted by pick.
func distinctValues(cands []candidate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cands {
		v := formatValue(c.value)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case TriState:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func conflictFrom(entityID, field string, cands []candidate, winner candidate) ConflictRecord {
	values := make([]ConflictValue, len(cands))
	for i, c := range cands {
		values[i] = ConflictValue{Source: c.source, Value: formatValue(c.value)}
	}
	return ConflictRecord{
		EntityID:       entityID,
		Field:          field,
		Values:         values,
		Selected:       formatValue(winner.value),
		SelectedSource: winner.source,
	}
}

func isMatchStandard(kind Kind, std Standard) bool {
	for _, s := range matchStandards(kind) {
		if s == std {
			return true
		}
	}
	return false
}

// mergeGroup collapses one identity group into a canonical entity. Every
// field offered with two or more distinct values is appended to the conflict
// log. A group carrying two distinct codes for one matching standard is an
// unresolvable identity ambiguity and aborts the build.
func mergeGroup(id string, g *group, pri *PriorityTable) (*mergedEntity, []ConflictRecord, error) {
	recs := g.records
	m := &mergedEntity{
		ID:     id,
		Kind:   g.kind,
		IDs:    make(map[Standard]string),
		Fields: make(map[string]any),
	}
	var conflicts []ConflictRecord

	rankOf := func(r *record) int {
		rank, _ := pri.Rank(r.source) // sources are validated before merge
		return rank
	}

	resolve := func(field string, cands []candidate) candidate {
		win := pick(cands)
		if distinct := distinctValues(cands); len(distinct) > 1 {
			conflicts = append(conflicts, conflictFrom(id, field, cands, win))
		}
		return win
	}

	// Identifiers. Iterated in standardOrder, never map order.
	for _, std := range standardOrder {
		var cands []candidate
		for _, r := range recs {
			if code, ok := r.ids[std]; ok {
				cands = append(cands, candidate{rank: rankOf(r), seq: r.seq, source: r.source, value: code})
			}
		}
		if len(cands) == 0 {
			continue
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].rank != cands[j].rank {
				return cands[i].rank < cands[j].rank
			}
			return cands[i].seq < cands[j].seq
		})
		if distinct := distinctValues(cands); len(distinct) > 1 && isMatchStandard(g.kind, std) {
			return nil, nil, &CollisionError{Standard: std, Codes: distinct}
		}
		win := resolve("id."+string(std), cands)
		m.IDs[std] = win.value.(string)
	}

	// Scalar fields.
	for _, field := range sortedFieldNames(recs) {
		var cands []candidate
		for _, r := range recs {
			if v, ok := r.fields[field]; ok {
				cands = append(cands, candidate{rank: rankOf(r), seq: r.seq, source: r.source, value: v})
			}
		}
		m.Fields[field] = resolve(field, cands).value
	}

	// Parent and macrolanguage references behave like scalar fields.
	if cands := refCandidates(recs, rankOf, func(r *record) string { return r.parentRef }); len(cands) > 0 {
		m.ParentRef = resolve(FieldParent, cands).value.(string)
	}
	if cands := refCandidates(recs, rankOf, func(r *record) string { return r.macroRef }); len(cands) > 0 {
		m.MacroRef = resolve(FieldMacrolanguage, cands).value.(string)
	}

	m.Scripts = mergeScriptUses(id, recs, rankOf, &conflicts)
	m.Regions = mergeRegionUses(id, recs, rankOf, &conflicts)
	m.Names = mergeNames(recs, rankOf)
	m.Deprecated = mergeDeprecated(recs)

	return m, conflicts, nil
}

func refCandidates(recs []*record, rankOf func(*record) int, get func(*record) string) []candidate {
	var cands []candidate
	for _, r := range recs {
		if ref := get(r); ref != "" {
			cands = append(cands, candidate{rank: rankOf(r), seq: r.seq, source: r.source, value: ref})
		}
	}
	return cands
}

// mergeScriptUses merges attachments per script code; flags blend per
// sub-field by priority (allowed), values never average.
func mergeScriptUses(entityID string, recs []*record, rankOf func(*record) int, conflicts *[]ConflictRecord) []mergedScriptUse {
	type contribution struct {
		rank, seq int
		source    string
		attach    scriptAttach
	}
	byCode := make(map[string][]contribution)
	var codes []string
	for _, r := range recs {
		for _, a := range r.scripts {
			if _, ok := byCode[a.Code]; !ok {
				codes = append(codes, a.Code)
			}
			byCode[a.Code] = append(byCode[a.Code], contribution{
				rank: rankOf(r), seq: r.seq, source: r.source, attach: a,
			})
		}
	}
	sort.Strings(codes)

	out := make([]mergedScriptUse, 0, len(codes))
	for _, code := range codes {
		contribs := byCode[code]
		sort.Slice(contribs, func(i, j int) bool {
			if contribs[i].rank != contribs[j].rank {
				return contribs[i].rank < contribs[j].rank
			}
			return contribs[i].seq < contribs[j].seq
		})
		use := mergedScriptUse{
			scriptAttach: scriptAttach{Code: code},
			Source:       contribs[0].source,
		}
		flags := []struct {
			name string
			get  func(*scriptAttach) *TriState
		}{
			{"canonical", func(a *scriptAttach) *TriState { return &a.Canonical }},
			{"historical", func(a *scriptAttach) *TriState { return &a.Historical }},
			{"religious", func(a *scriptAttach) *TriState { return &a.Religious }},
			{"transliteration", func(a *scriptAttach) *TriState { return &a.Transliteration }},
			{"accessibility", func(a *scriptAttach) *TriState { return &a.Accessibility }},
			{"widespread", func(a *scriptAttach) *TriState { return &a.Widespread }},
			{"official", func(a *scriptAttach) *TriState { return &a.Official }},
			{"symbolic", func(a *scriptAttach) *TriState { return &a.Symbolic }},
		}
		for _, f := range flags {
			var cands []candidate
			for _, c := range contribs {
				attach := c.attach
				if v := *f.get(&attach); v != TriUnknown {
					cands = append(cands, candidate{rank: c.rank, seq: c.seq, source: c.source, value: v})
				}
			}
			if len(cands) == 0 {
				continue
			}
			win := pick(cands)
			if distinct := distinctValues(cands); len(distinct) > 1 {
				field := fmt.Sprintf("scripts[%s].%s", code, f.name)
				*conflicts = append(*conflicts, conflictFrom(entityID, field, cands, win))
			}
			*f.get(&use.scriptAttach) = win.value.(TriState)
		}
		out = append(out, use)
	}
	return out
}

func mergeRegionUses(entityID string, recs []*record, rankOf func(*record) int, conflicts *[]ConflictRecord) []mergedRegionUse {
	type contribution struct {
		rank, seq int
		source    string
		attach    regionAttach
	}
	byCode := make(map[string][]contribution)
	var codes []string
	for _, r := range recs {
		for _, a := range r.regions {
			if _, ok := byCode[a.Code]; !ok {
				codes = append(codes, a.Code)
			}
			byCode[a.Code] = append(byCode[a.Code], contribution{
				rank: rankOf(r), seq: r.seq, source: r.source, attach: a,
			})
		}
	}
	sort.Strings(codes)

	out := make([]mergedRegionUse, 0, len(codes))
	for _, code := range codes {
		contribs := byCode[code]
		sort.Slice(contribs, func(i, j int) bool {
			if contribs[i].rank != contribs[j].rank {
				return contribs[i].rank < contribs[j].rank
			}
			return contribs[i].seq < contribs[j].seq
		})
		use := mergedRegionUse{
			regionAttach: regionAttach{Code: code},
			Source:       contribs[0].source,
		}

		var officials []candidate
		for _, c := range contribs {
			if c.attach.Official != TriUnknown {
				officials = append(officials, candidate{rank: c.rank, seq: c.seq, source: c.source, value: c.attach.Official})
			}
		}
		if len(officials) > 0 {
			win := pick(officials)
			if distinct := distinctValues(officials); len(distinct) > 1 {
				*conflicts = append(*conflicts, conflictFrom(entityID,
					fmt.Sprintf("regions[%s].official", code), officials, win))
			}
			use.Official = win.value.(TriState)
		}

		var speakers []candidate
		for _, c := range contribs {
			if c.attach.SpeakerCount != nil {
				speakers = append(speakers, candidate{rank: c.rank, seq: c.seq, source: c.source, value: *c.attach.SpeakerCount})
			}
		}
		if len(speakers) > 0 {
			win := pick(speakers)
			if distinct := distinctValues(speakers); len(distinct) > 1 {
				*conflicts = append(*conflicts, conflictFrom(entityID,
					fmt.Sprintf("regions[%s].speaker_count", code), speakers, win))
			}
			n := win.value.(int64)
			use.SpeakerCount = &n
		}

		out = append(out, use)
	}
	return out
}

// mergeNames unions name entries across sources, deduplicated by
// (in-language, name). Disagreements here are expected — every source names
// things its own way — so names are a set, not a conflict.
func mergeNames(recs []*record, rankOf func(*record) int) []NameEntry {
	type keyed struct {
		rank, seq int
		entry     NameEntry
	}
	type nameKey struct{ in, name string }
	best := make(map[nameKey]keyed)
	for _, r := range recs {
		for _, e := range r.names {
			k := nameKey{in: e.InLanguage, name: e.Name}
			cur, ok := best[k]
			cand := keyed{rank: rankOf(r), seq: r.seq, entry: e}
			if !ok || cand.rank < cur.rank || (cand.rank == cur.rank && cand.seq < cur.seq) {
				// Preserve a canonical marking from any source.
				if ok && cur.entry.Canonical {
					cand.entry.Canonical = true
				}
				best[k] = cand
			} else if e.Canonical && !cur.entry.Canonical {
				cur.entry.Canonical = true
				best[k] = cur
			}
		}
	}
	out := make([]NameEntry, 0, len(best))
	for _, v := range best {
		out = append(out, v.entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InLanguage != out[j].InLanguage {
			return out[i].InLanguage < out[j].InLanguage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// mergeDeprecated concatenates and deduplicates retired codes by
// (standard, code), keeping the first-seen record for each.
func mergeDeprecated(recs []*record) []DeprecatedCode {
	type depKey struct {
		std  Standard
		code string
	}
	seen := make(map[depKey]bool)
	var out []DeprecatedCode
	for _, r := range recs {
		for _, d := range r.deprecated {
			k := depKey{std: d.Standard, code: d.Code}
			if !seen[k] {
				seen[k] = true
				out = append(out, d)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Standard != out[j].Standard {
			return out[i].Standard < out[j].Standard
		}
		return out[i].Code < out[j].Code
	})
	return out
}
