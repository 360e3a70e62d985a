package glossa

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/jward/glossa/internal/store"
)

// Database is an immutable, fully-loaded languoid graph. All lookups and
// traversals run against in-memory arenas; the SQLite artifact is only
// touched by Save and Load. Safe for concurrent readers.
type Database struct {
	languoids []Languoid
	scripts   []Script
	regions   []Region

	idx        *index
	tombstones []DeprecatedCode // retired codes with no successor entity
	report     Report
}

// Get resolves a code under the given standard. A hit on a retired code
// returns the successor languoid plus a Redirect describing the retirement;
// a code retired with no successor returns only the Redirect and an error
// wrapping ErrNotFound.
func (db *Database) Get(code string, std Standard) (*Languoid, *Redirect, error) {
	i, redirect, err := db.idx.lookup(std, code)
	if err != nil {
		return nil, redirect, err
	}
	return &db.languoids[i], redirect, nil
}

// Guess resolves a code without knowing its standard, trying standards from
// most to least specific. Live codes win over retired ones across all
// standards.
func (db *Database) Guess(code string) (*Languoid, Standard, *Redirect, error) {
	for _, std := range standardOrder {
		if byCode := db.idx.live[std]; byCode != nil {
			if i, ok := byCode[code]; ok {
				return &db.languoids[i], std, nil, nil
			}
		}
	}
	for _, std := range standardOrder {
		if byCode := db.idx.deprecated[std]; byCode != nil {
			if e, ok := byCode[code]; ok {
				r := &Redirect{Code: code, Standard: std, Reason: e.reason}
				if e.target == none {
					return nil, std, r, fmt.Errorf("code %s retired without replacement under %s: %w", code, std, ErrNotFound)
				}
				return &db.languoids[e.target], std, r, nil
			}
		}
	}
	return nil, "", nil, fmt.Errorf("code %s under any standard: %w", code, ErrNotFound)
}

// Convert translates a code from one standard to another. The source code may
// be retired; the returned Redirect reports that. ErrNoMapping means the
// languoid exists but carries no code under the target standard.
func (db *Database) Convert(code string, from, to Standard) (string, *Redirect, error) {
	l, redirect, err := db.Get(code, from)
	if err != nil {
		return "", redirect, err
	}
	out := l.Code(to)
	if out == "" {
		return "", redirect, fmt.Errorf("%s has no %s code: %w", l.ID, to, ErrNoMapping)
	}
	return out, redirect, nil
}

// ConvertAny is Convert with the source standard guessed.
func (db *Database) ConvertAny(code string, to Standard) (string, *Redirect, error) {
	l, _, redirect, err := db.Guess(code)
	if err != nil {
		return "", redirect, err
	}
	out := l.Code(to)
	if out == "" {
		return "", redirect, fmt.Errorf("%s has no %s code: %w", l.ID, to, ErrNoMapping)
	}
	return out, redirect, nil
}

// Script looks up a writing system by ISO 15924 code.
func (db *Database) Script(code string) (*Script, error) {
	i, ok := db.idx.scripts[code]
	if !ok {
		return nil, fmt.Errorf("script %s: %w", code, ErrNotFound)
	}
	return &db.scripts[i], nil
}

// Region looks up a region by ISO 3166 code.
func (db *Database) Region(code string) (*Region, error) {
	i, ok := db.idx.regions[code]
	if !ok {
		return nil, fmt.Errorf("region %s: %w", code, ErrNotFound)
	}
	return &db.regions[i], nil
}

// Languoids iterates every languoid in canonical ID order.
func (db *Database) Languoids() iter.Seq[*Languoid] {
	return func(yield func(*Languoid) bool) {
		for i := range db.languoids {
			if !yield(&db.languoids[i]) {
				return
			}
		}
	}
}

// Languages iterates languoids classified as individual languages.
func (db *Database) Languages() iter.Seq[*Languoid] { return db.byLevel(LevelLanguage) }

// Families iterates languoids classified as language families.
func (db *Database) Families() iter.Seq[*Languoid] { return db.byLevel(LevelFamily) }

// Dialects iterates languoids classified as dialects.
func (db *Database) Dialects() iter.Seq[*Languoid] { return db.byLevel(LevelDialect) }

func (db *Database) byLevel(level Level) iter.Seq[*Languoid] {
	return func(yield func(*Languoid) bool) {
		for i := range db.languoids {
			if db.languoids[i].Level != level {
				continue
			}
			if !yield(&db.languoids[i]) {
				return
			}
		}
	}
}

// AllScripts iterates every script in canonical ID order.
func (db *Database) AllScripts() iter.Seq[*Script] {
	return func(yield func(*Script) bool) {
		for i := range db.scripts {
			if !yield(&db.scripts[i]) {
				return
			}
		}
	}
}

// AllRegions iterates every region in canonical ID order.
func (db *Database) AllRegions() iter.Seq[*Region] {
	return func(yield func(*Region) bool) {
		for i := range db.regions {
			if !yield(&db.regions[i]) {
				return
			}
		}
	}
}

// Report returns the build report persisted alongside the graph.
func (db *Database) Report() Report {
	return db.report
}

// Stats summarizes the graph for the CLI and for monitoring rebuilds.
type Stats struct {
	Languoids  int
	Languages  int
	Families   int
	Dialects   int
	Scripts    int
	Regions    int
	Deprecated int
	Conflicts  int
	Dangling   int
	Malformed  int
}

func (db *Database) Stats() Stats {
	st := Stats{
		Languoids: len(db.languoids),
		Scripts:   len(db.scripts),
		Regions:   len(db.regions),
		Conflicts: len(db.report.Conflicts),
		Dangling:  len(db.report.Dangling),
		Malformed: db.report.Malformed,
	}
	for i := range db.languoids {
		switch db.languoids[i].Level {
		case LevelLanguage:
			st.Languages++
		case LevelFamily:
			st.Families++
		case LevelDialect:
			st.Dialects++
		}
		st.Deprecated += len(db.languoids[i].Deprecated)
	}
	st.Deprecated += len(db.tombstones)
	return st
}

// Save writes the graph to a SQLite artifact at path, replacing any previous
// content. The artifact is self-describing: Load refuses files written under
// a different format version.
func (db *Database) Save(path string) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	snap, err := db.snapshot()
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	if err := st.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

// Load reads a graph artifact into memory and rebuilds the identifier index.
func Load(ctx context.Context, path string) (*Database, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	defer st.Close()

	version, err := st.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w: %v", path, ErrIncompatibleFormat, err)
	}
	if version != store.FormatVersion {
		return nil, fmt.Errorf("load artifact %s: version %d, engine supports %d: %w",
			path, version, store.FormatVersion, ErrIncompatibleFormat)
	}

	snap, err := st.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", path, err)
	}
	return fromSnapshot(snap)
}

// snapshot flattens the arenas into store rows. Arena order is preserved so a
// save/load round trip yields an identical database.
func (db *Database) snapshot() (*store.Snapshot, error) {
	snap := &store.Snapshot{Malformed: int64(db.report.Malformed)}

	for i := range db.languoids {
		l := &db.languoids[i]
		row := store.Languoid{
			ID:           l.ID,
			Name:         l.Name,
			Endonym:      l.Endonym,
			SpeakerCount: l.SpeakerCount,
			Latitude:     l.Latitude,
			Longitude:    l.Longitude,
			Level:        string(l.Level),
			Scope:        string(l.Scope),
			Status:       string(l.Status),
			Endangerment: string(l.Endangerment),
			Description:  l.Description,
		}
		if l.Wikipedia != nil {
			row.WikipediaURL = l.Wikipedia.URL
			row.WikipediaCode = l.Wikipedia.Code
			row.WikipediaArticles = l.Wikipedia.ArticleCount
			row.WikipediaUsers = l.Wikipedia.ActiveUsers
		}
		if l.parent != none {
			row.ParentID = db.languoids[l.parent].ID
		}
		if l.macro != none {
			row.MacroID = db.languoids[l.macro].ID
		}
		snap.Languoids = append(snap.Languoids, row)

		for _, std := range standardOrder {
			if code, ok := l.Codes[std]; ok {
				snap.Codes = append(snap.Codes, store.LanguoidCode{
					LanguoidID: l.ID, Standard: string(std), Code: code,
				})
			}
		}
		for _, u := range l.scripts {
			snap.ScriptUses = append(snap.ScriptUses, store.ScriptUse{
				LanguoidID:      l.ID,
				ScriptID:        db.scripts[u.script].ID,
				Canonical:       int64(u.Canonical),
				Historical:      int64(u.Historical),
				Religious:       int64(u.Religious),
				Transliteration: int64(u.Transliteration),
				Accessibility:   int64(u.Accessibility),
				Widespread:      int64(u.Widespread),
				Official:        int64(u.Official),
				Symbolic:        int64(u.Symbolic),
				Source:          u.Source,
			})
		}
		for _, u := range l.regions {
			snap.RegionUses = append(snap.RegionUses, store.RegionUse{
				LanguoidID:   l.ID,
				RegionID:     db.regions[u.region].ID,
				Official:     int64(u.Official),
				SpeakerCount: u.SpeakerCount,
				Source:       u.Source,
			})
		}
		for _, n := range l.Names {
			snap.Names = append(snap.Names, store.Name{
				LanguoidID: l.ID, InLanguage: n.InLanguage, Name: n.Name,
				Canonical: n.Canonical, Source: n.Source,
			})
		}
		for _, d := range l.Deprecated {
			snap.Deprecated = append(snap.Deprecated, store.DeprecatedCode{
				Standard: string(d.Standard), Code: d.Code, LanguoidID: l.ID,
				Reason: d.Reason, Name: d.Name, Effective: d.Effective, Remedy: d.Remedy,
			})
		}
	}
	for _, d := range db.tombstones {
		snap.Deprecated = append(snap.Deprecated, store.DeprecatedCode{
			Standard: string(d.Standard), Code: d.Code,
			Reason: d.Reason, Name: d.Name, Effective: d.Effective, Remedy: d.Remedy,
		})
	}

	for i := range db.scripts {
		s := &db.scripts[i]
		snap.Scripts = append(snap.Scripts, store.Script{
			ID: s.ID, Code: s.Code, Name: s.Name, FullName: s.FullName,
			Historical: int64(s.Historical),
		})
	}
	for i := range db.regions {
		r := &db.regions[i]
		row := store.Region{
			ID: r.ID, Code: r.Code, Name: r.Name, OfficialName: r.OfficialName,
			SubdivisionCode: r.SubdivisionCode, SubdivisionType: r.SubdivisionType,
			Historical: int64(r.Historical),
		}
		if r.parent != none {
			row.ParentID = db.regions[r.parent].ID
		}
		snap.Regions = append(snap.Regions, row)
	}

	for _, c := range db.report.Conflicts {
		candidates, err := json.Marshal(c.Values)
		if err != nil {
			return nil, fmt.Errorf("encode conflict %s.%s: %w", c.EntityID, c.Field, err)
		}
		snap.Conflicts = append(snap.Conflicts, store.Conflict{
			EntityID: c.EntityID, Field: c.Field, Candidates: string(candidates),
			Selected: c.Selected, SelectedSource: c.SelectedSource,
		})
	}
	for _, d := range db.report.Dangling {
		snap.Dangling = append(snap.Dangling, store.DanglingRef{
			EntityID: d.EntityID, Field: d.Field, Ref: d.Ref,
		})
	}

	return snap, nil
}

// fromSnapshot rebuilds the arenas and index from store rows.
func fromSnapshot(snap *store.Snapshot) (*Database, error) {
	db := &Database{}

	langIdx := make(map[string]int32, len(snap.Languoids))
	db.languoids = make([]Languoid, len(snap.Languoids))
	for i, row := range snap.Languoids {
		l := Languoid{
			ID:           row.ID,
			Codes:        make(map[Standard]string),
			Name:         row.Name,
			Endonym:      row.Endonym,
			SpeakerCount: row.SpeakerCount,
			Latitude:     row.Latitude,
			Longitude:    row.Longitude,
			Level:        Level(row.Level),
			Scope:        Scope(row.Scope),
			Status:       LifeStatus(row.Status),
			Endangerment: Endangerment(row.Endangerment),
			Description:  row.Description,
			db:           db,
			self:         int32(i),
			parent:       none,
			macro:        none,
		}
		if row.WikipediaURL != "" || row.WikipediaCode != "" {
			l.Wikipedia = &WikipediaInfo{
				URL:          row.WikipediaURL,
				Code:         row.WikipediaCode,
				ArticleCount: row.WikipediaArticles,
				ActiveUsers:  row.WikipediaUsers,
			}
		}
		db.languoids[i] = l
		langIdx[row.ID] = int32(i)
	}
	for i, row := range snap.Languoids {
		if row.ParentID != "" {
			p, ok := langIdx[row.ParentID]
			if !ok {
				return nil, fmt.Errorf("artifact references unknown languoid %s", row.ParentID)
			}
			db.languoids[i].parent = p
			db.languoids[p].children = append(db.languoids[p].children, int32(i))
		}
		if row.MacroID != "" {
			m, ok := langIdx[row.MacroID]
			if !ok {
				return nil, fmt.Errorf("artifact references unknown languoid %s", row.MacroID)
			}
			db.languoids[i].macro = m
			db.languoids[m].individuals = append(db.languoids[m].individuals, int32(i))
		}
	}

	for _, row := range snap.Codes {
		i, ok := langIdx[row.LanguoidID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown languoid %s", row.LanguoidID)
		}
		db.languoids[i].Codes[Standard(row.Standard)] = row.Code
	}

	scriptIdx := make(map[string]int32, len(snap.Scripts))
	db.scripts = make([]Script, len(snap.Scripts))
	for i, row := range snap.Scripts {
		db.scripts[i] = Script{
			ID: row.ID, Code: row.Code, Name: row.Name, FullName: row.FullName,
			Historical: TriState(row.Historical), db: db,
		}
		scriptIdx[row.ID] = int32(i)
	}

	regionIdx := make(map[string]int32, len(snap.Regions))
	db.regions = make([]Region, len(snap.Regions))
	for i, row := range snap.Regions {
		db.regions[i] = Region{
			ID: row.ID, Code: row.Code, Name: row.Name, OfficialName: row.OfficialName,
			SubdivisionCode: row.SubdivisionCode, SubdivisionType: row.SubdivisionType,
			Historical: TriState(row.Historical), db: db, parent: none,
		}
		regionIdx[row.ID] = int32(i)
	}
	for i, row := range snap.Regions {
		if row.ParentID == "" {
			continue
		}
		p, ok := regionIdx[row.ParentID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown region %s", row.ParentID)
		}
		db.regions[i].parent = p
		db.regions[p].children = append(db.regions[p].children, int32(i))
	}

	for _, row := range snap.ScriptUses {
		li, ok := langIdx[row.LanguoidID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown languoid %s", row.LanguoidID)
		}
		si, ok := scriptIdx[row.ScriptID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown script %s", row.ScriptID)
		}
		use := ScriptUse{
			Code:            db.scripts[si].Code,
			Canonical:       TriState(row.Canonical),
			Historical:      TriState(row.Historical),
			Religious:       TriState(row.Religious),
			Transliteration: TriState(row.Transliteration),
			Accessibility:   TriState(row.Accessibility),
			Widespread:      TriState(row.Widespread),
			Official:        TriState(row.Official),
			Symbolic:        TriState(row.Symbolic),
			Source:          row.Source,
			script:          si,
		}
		db.languoids[li].scripts = append(db.languoids[li].scripts, use)
		db.scripts[si].users = append(db.scripts[si].users, scriptUser{
			languoid: li, canonical: use.Canonical,
		})
	}

	for _, row := range snap.RegionUses {
		li, ok := langIdx[row.LanguoidID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown languoid %s", row.LanguoidID)
		}
		ri, ok := regionIdx[row.RegionID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown region %s", row.RegionID)
		}
		use := RegionUse{
			Code:         db.regions[ri].Code,
			Official:     TriState(row.Official),
			SpeakerCount: row.SpeakerCount,
			Source:       row.Source,
			region:       ri,
		}
		db.languoids[li].regions = append(db.languoids[li].regions, use)
		db.regions[ri].languoids = append(db.regions[ri].languoids, regionUser{
			languoid: li, official: use.Official, speakerCount: use.SpeakerCount,
		})
	}

	for _, row := range snap.Names {
		i, ok := langIdx[row.LanguoidID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown languoid %s", row.LanguoidID)
		}
		db.languoids[i].Names = append(db.languoids[i].Names, NameEntry{
			InLanguage: row.InLanguage, Name: row.Name,
			Canonical: row.Canonical, Source: row.Source,
		})
	}

	for _, row := range snap.Deprecated {
		d := DeprecatedCode{
			Code: row.Code, Standard: Standard(row.Standard),
			Reason: row.Reason, Name: row.Name, Effective: row.Effective, Remedy: row.Remedy,
		}
		if row.LanguoidID == "" {
			db.tombstones = append(db.tombstones, d)
			continue
		}
		i, ok := langIdx[row.LanguoidID]
		if !ok {
			return nil, fmt.Errorf("artifact references unknown languoid %s", row.LanguoidID)
		}
		db.languoids[i].Deprecated = append(db.languoids[i].Deprecated, d)
	}

	for _, row := range snap.Conflicts {
		var values []ConflictValue
		if err := json.Unmarshal([]byte(row.Candidates), &values); err != nil {
			return nil, fmt.Errorf("decode conflict %s.%s: %w", row.EntityID, row.Field, err)
		}
		db.report.Conflicts = append(db.report.Conflicts, ConflictRecord{
			EntityID: row.EntityID, Field: row.Field, Values: values,
			Selected: row.Selected, SelectedSource: row.SelectedSource,
		})
	}
	for _, row := range snap.Dangling {
		db.report.Dangling = append(db.report.Dangling, DanglingReference{
			EntityID: row.EntityID, Field: row.Field, Ref: row.Ref,
		})
	}
	db.report.Malformed = int(snap.Malformed)

	idx, err := buildIndex(db, db.tombstones)
	if err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	db.idx = idx
	return db, nil
}
