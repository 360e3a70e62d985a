package glossa

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Field names recognized in RawRecord.Fields. Adapters emit these; anything
// else is ignored.
const (
	FieldName              = "name"
	FieldEndonym           = "endonym"
	FieldSpeakerCount      = "speaker_count"
	FieldLatitude          = "latitude"
	FieldLongitude         = "longitude"
	FieldLevel             = "level"
	FieldScope             = "scope"
	FieldStatus            = "status"
	FieldEndangerment      = "endangerment"
	FieldDescription       = "description"
	FieldWikipediaURL      = "wikipedia_url"
	FieldWikipediaCode     = "wikipedia_code"
	FieldWikipediaArticles = "wikipedia_article_count"
	FieldWikipediaUsers    = "wikipedia_active_users"
	FieldParent            = "parent"        // "standard:code" reference
	FieldMacrolanguage     = "macrolanguage" // "standard:code" reference
	FieldScripts           = "scripts"       // list of script attachments
	FieldRegions           = "regions"       // list of region attachments
	FieldNames             = "names"         // list of name entries
	FieldDeprecated        = "deprecated"    // list of retired codes

	FieldFullName        = "full_name"
	FieldOfficialName    = "official_name"
	FieldSubdivisionCode = "subdivision_code"
	FieldSubdivisionType = "subdivision_type"
	FieldParentRegion    = "parent_region" // ISO 3166 code of the parent country
	FieldHistorical      = "historical"
)

type valueKind int

const (
	vString valueKind = iota
	vInt
	vFloat
	vTri
)

// scalarFields declares, per kind, which scalar fields exist and how their
// raw values are typed.
var scalarFields = map[Kind]map[string]valueKind{
	KindLanguoid: {
		FieldName:              vString,
		FieldEndonym:           vString,
		FieldSpeakerCount:      vInt,
		FieldLatitude:          vFloat,
		FieldLongitude:         vFloat,
		FieldLevel:             vString,
		FieldScope:             vString,
		FieldStatus:            vString,
		FieldEndangerment:      vString,
		FieldDescription:       vString,
		FieldWikipediaURL:      vString,
		FieldWikipediaCode:     vString,
		FieldWikipediaArticles: vInt,
		FieldWikipediaUsers:    vInt,
	},
	KindScript: {
		FieldName:       vString,
		FieldFullName:   vString,
		FieldHistorical: vTri,
	},
	KindRegion: {
		FieldName:            vString,
		FieldOfficialName:    vString,
		FieldSubdivisionCode: vString,
		FieldSubdivisionType: vString,
		FieldHistorical:      vTri,
	},
}

// validIDStandards declares which identifier standards a record of each kind
// may carry.
var validIDStandards = map[Kind]map[Standard]bool{
	KindLanguoid: {
		BCP47: true, ISO6391: true, ISO6392B: true, ISO6392T: true,
		ISO6393: true, ISO6395: true, Glottocode: true,
		WikidataID: true, WikipediaID: true,
	},
	KindScript: {ISO15924: true},
	KindRegion: {ISO3166: true},
}

// matchStandards lists the standards used for cross-source entity matching.
// Short, collision-prone codes like ISO 639-1 never drive a merge on their
// own.
func matchStandards(kind Kind) []Standard {
	switch kind {
	case KindScript:
		return []Standard{ISO15924}
	case KindRegion:
		return []Standard{ISO3166}
	default:
		return []Standard{BCP47, ISO6393, Glottocode, WikidataID, WikipediaID}
	}
}

// scriptAttach is a pre-merge languoid-script attachment.
type scriptAttach struct {
	Code            string
	Canonical       TriState
	Historical      TriState
	Religious       TriState
	Transliteration TriState
	Accessibility   TriState
	Widespread      TriState
	Official        TriState
	Symbolic        TriState
}

// regionAttach is a pre-merge languoid-region attachment.
type regionAttach struct {
	Code         string
	Official     TriState
	SpeakerCount *int64
}

// record is the normalized, typed form of one RawRecord. It exists only
// during the build pass and is never persisted.
type record struct {
	source string
	seq    int // arrival sequence, the documented merge tie-break
	kind   Kind

	ids    map[Standard]string
	fields map[string]any // values are string, int64, float64, or TriState

	parentRef string // "standard:code"
	macroRef  string

	scripts    []scriptAttach
	regions    []regionAttach
	names      []NameEntry
	deprecated []DeprecatedCode

	// tombstone marks an identity-less record that only retires codes
	// ("split into X and Y", no single replacement).
	tombstone bool
}

// normalize converts one adapter record into the common record schema.
// Returns a *malformedError when required structural fields are absent;
// such records are skipped and counted, never fatal.
func normalize(source string, seq int, raw RawRecord) (*record, error) {
	malformed := func(format string, args ...any) error {
		return &malformedError{source: source, seq: seq, reason: fmt.Sprintf(format, args...)}
	}

	specs, ok := scalarFields[raw.Kind]
	if !ok {
		return nil, malformed("unknown entity kind %q", raw.Kind)
	}

	rec := &record{
		source: source,
		seq:    seq,
		kind:   raw.Kind,
		ids:    make(map[Standard]string, len(raw.IDs)),
		fields: make(map[string]any),
	}

	valid := validIDStandards[raw.Kind]
	for std, code := range raw.IDs {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !valid[std] {
			return nil, malformed("identifier standard %q not valid for kind %q", std, raw.Kind)
		}
		// 2T codes are the 639-3 code space; fold them together up front.
		if std == ISO6392T {
			std = ISO6393
		}
		if prev, ok := rec.ids[std]; ok && prev != code {
			return nil, malformed("two %s codes in one record: %q and %q", std, prev, code)
		}
		rec.ids[std] = code
	}

	for name, val := range raw.Fields {
		if val == nil {
			continue
		}
		switch name {
		case FieldParent:
			s, err := asRef(val)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.parentRef = s
		case FieldMacrolanguage:
			s, err := asRef(val)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.macroRef = s
		case FieldParentRegion:
			s, ok := val.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, malformed("field %s: expected region code string", name)
			}
			// Region parents are plain ISO 3166 codes; reuse the ref slot.
			rec.parentRef = string(ISO3166) + ":" + strings.TrimSpace(s)
		case FieldScripts:
			attaches, err := asScriptAttaches(val)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.scripts = attaches
		case FieldRegions:
			attaches, err := asRegionAttaches(val)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.regions = attaches
		case FieldNames:
			entries, err := asNameEntries(val, source)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.names = entries
		case FieldDeprecated:
			codes, err := asDeprecatedCodes(val)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			rec.deprecated = codes
		default:
			kind, known := specs[name]
			if !known {
				continue // sources ship extra columns; ignore them
			}
			typed, err := coerceScalar(val, kind)
			if err != nil {
				return nil, malformed("field %s: %v", name, err)
			}
			if typed != nil {
				rec.fields[name] = typed
			}
		}
	}

	if len(rec.ids) == 0 {
		// Identity-less records are malformed, with one exception: a pure
		// retirement record that only tombstones codes.
		if raw.Kind == KindLanguoid && len(rec.deprecated) > 0 && len(rec.fields) == 0 &&
			rec.parentRef == "" && len(rec.scripts) == 0 && len(rec.regions) == 0 {
			rec.tombstone = true
			return rec, nil
		}
		return nil, malformed("no identifier candidates")
	}

	return rec, nil
}

// asRef validates a "standard:code" reference string.
func asRef(val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("expected \"standard:code\" string, got %T", val)
	}
	std, code, found := strings.Cut(s, ":")
	if !found || std == "" || strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("expected \"standard:code\", got %q", s)
	}
	return s, nil
}

// parseRef splits a validated "standard:code" reference.
func parseRef(ref string) (Standard, string) {
	std, code, _ := strings.Cut(ref, ":")
	return Standard(std), code
}

func coerceScalar(val any, kind valueKind) (any, error) {
	switch kind {
	case vString:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", val)
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, nil
		}
		return s, nil
	case vInt:
		switch n := val.(type) {
		case float64: // JSON numbers
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			return int64(n), nil
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
		return nil, fmt.Errorf("expected integer, got %T", val)
	case vFloat:
		switch n := val.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
		return nil, fmt.Errorf("expected number, got %T", val)
	case vTri:
		t, err := asTri(val)
		if err != nil {
			return nil, err
		}
		if t == TriUnknown {
			return nil, nil
		}
		return t, nil
	}
	return nil, fmt.Errorf("unhandled value kind %d", kind)
}

func asTri(val any) (TriState, error) {
	switch v := val.(type) {
	case nil:
		return TriUnknown, nil
	case bool:
		return TriOf(v), nil
	case TriState:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true":
			return TriTrue, nil
		case "false":
			return TriFalse, nil
		case "", "unknown":
			return TriUnknown, nil
		}
	}
	return TriUnknown, fmt.Errorf("expected tri-state bool, got %v", val)
}

func asList(val any) ([]map[string]any, error) {
	items, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", val)
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected object, got %T", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

func entryString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func entryTri(m map[string]any, key string) (TriState, error) {
	v, ok := m[key]
	if !ok {
		return TriUnknown, nil
	}
	return asTri(v)
}

func asScriptAttaches(val any) ([]scriptAttach, error) {
	entries, err := asList(val)
	if err != nil {
		return nil, err
	}
	out := make([]scriptAttach, 0, len(entries))
	for i, m := range entries {
		a := scriptAttach{Code: entryString(m, "code")}
		if a.Code == "" {
			return nil, fmt.Errorf("entry %d: missing script code", i)
		}
		flags := []struct {
			key string
			dst *TriState
		}{
			{"canonical", &a.Canonical},
			{"historical", &a.Historical},
			{"religious", &a.Religious},
			{"transliteration", &a.Transliteration},
			{"accessibility", &a.Accessibility},
			{"widespread", &a.Widespread},
			{"official", &a.Official},
			{"symbolic", &a.Symbolic},
		}
		for _, f := range flags {
			t, err := entryTri(m, f.key)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %s: %v", i, f.key, err)
			}
			*f.dst = t
		}
		out = append(out, a)
	}
	return out, nil
}

func asRegionAttaches(val any) ([]regionAttach, error) {
	entries, err := asList(val)
	if err != nil {
		return nil, err
	}
	out := make([]regionAttach, 0, len(entries))
	for i, m := range entries {
		a := regionAttach{Code: entryString(m, "code")}
		if a.Code == "" {
			return nil, fmt.Errorf("entry %d: missing region code", i)
		}
		official, err := entryTri(m, "official")
		if err != nil {
			return nil, fmt.Errorf("entry %d: official: %v", i, err)
		}
		a.Official = official
		if raw, ok := m["speaker_count"]; ok && raw != nil {
			typed, err := coerceScalar(raw, vInt)
			if err != nil {
				return nil, fmt.Errorf("entry %d: speaker_count: %v", i, err)
			}
			n := typed.(int64)
			a.SpeakerCount = &n
		}
		out = append(out, a)
	}
	return out, nil
}

func asNameEntries(val any, source string) ([]NameEntry, error) {
	entries, err := asList(val)
	if err != nil {
		return nil, err
	}
	out := make([]NameEntry, 0, len(entries))
	for i, m := range entries {
		e := NameEntry{
			InLanguage: entryString(m, "in"),
			Name:       entryString(m, "name"),
			Source:     source,
		}
		if e.Name == "" || e.InLanguage == "" {
			return nil, fmt.Errorf("entry %d: name entries need both \"in\" and \"name\"", i)
		}
		if canonical, ok := m["canonical"].(bool); ok {
			e.Canonical = canonical
		}
		out = append(out, e)
	}
	return out, nil
}

func asDeprecatedCodes(val any) ([]DeprecatedCode, error) {
	entries, err := asList(val)
	if err != nil {
		return nil, err
	}
	out := make([]DeprecatedCode, 0, len(entries))
	for i, m := range entries {
		d := DeprecatedCode{
			Code:      entryString(m, "code"),
			Standard:  Standard(entryString(m, "standard")),
			Reason:    entryString(m, "reason"),
			Name:      entryString(m, "name"),
			Effective: entryString(m, "effective"),
			Remedy:    entryString(m, "remedy"),
		}
		if d.Code == "" || d.Standard == "" {
			return nil, fmt.Errorf("entry %d: deprecated entries need both \"code\" and \"standard\"", i)
		}
		if d.Standard == ISO6392T {
			d.Standard = ISO6393
		}
		out = append(out, d)
	}
	return out, nil
}

// sortedFieldNames returns the record group's scalar field names in a fixed
// order, so merge output never depends on map iteration.
func sortedFieldNames(recs []*record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range recs {
		for name := range r.fields {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
