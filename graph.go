package glossa

// assemble builds the immutable entity arenas from merged entities and wires
// the hierarchy, script, and region edges. References that do not resolve are
// dropped and reported; a cycle in a parent hierarchy aborts the build.
func assemble(db *Database, merged []*mergedEntity) ([]DanglingReference, error) {
	var langs, scripts, regions []*mergedEntity
	for _, m := range merged {
		switch m.Kind {
		case KindLanguoid:
			langs = append(langs, m)
		case KindScript:
			scripts = append(scripts, m)
		default:
			regions = append(regions, m)
		}
	}

	var dangling []DanglingReference

	// Scripts and regions first, so languoid attachments can resolve.
	scriptIdx := make(map[string]int32, len(scripts))
	db.scripts = make([]Script, len(scripts))
	for i, m := range scripts {
		db.scripts[i] = Script{
			ID:         m.ID,
			Code:       m.IDs[ISO15924],
			Name:       fieldString(m, FieldName),
			FullName:   fieldString(m, FieldFullName),
			Historical: fieldTri(m, FieldHistorical),
			db:         db,
		}
		scriptIdx[db.scripts[i].Code] = int32(i)
	}

	regionIdx := make(map[string]int32, len(regions))
	db.regions = make([]Region, len(regions))
	for i, m := range regions {
		db.regions[i] = Region{
			ID:              m.ID,
			Code:            m.IDs[ISO3166],
			Name:            fieldString(m, FieldName),
			OfficialName:    fieldString(m, FieldOfficialName),
			SubdivisionCode: fieldString(m, FieldSubdivisionCode),
			SubdivisionType: fieldString(m, FieldSubdivisionType),
			Historical:      fieldTri(m, FieldHistorical),
			db:              db,
			parent:          none,
		}
		regionIdx[db.regions[i].Code] = int32(i)
	}

	db.languoids = make([]Languoid, len(langs))
	langByStd := make(map[Standard]map[string]int32)
	for i, m := range langs {
		l := Languoid{
			ID:           m.ID,
			Codes:        m.IDs,
			Name:         fieldString(m, FieldName),
			Endonym:      fieldString(m, FieldEndonym),
			SpeakerCount: fieldInt(m, FieldSpeakerCount),
			Latitude:     fieldFloat(m, FieldLatitude),
			Longitude:    fieldFloat(m, FieldLongitude),
			Level:        Level(fieldString(m, FieldLevel)),
			Scope:        Scope(fieldString(m, FieldScope)),
			Status:       LifeStatus(fieldString(m, FieldStatus)),
			Endangerment: Endangerment(fieldString(m, FieldEndangerment)),
			Description:  fieldString(m, FieldDescription),
			Names:        m.Names,
			Deprecated:   m.Deprecated,
			db:           db,
			self:         int32(i),
			parent:       none,
			macro:        none,
		}
		if url, code := fieldString(m, FieldWikipediaURL), fieldString(m, FieldWikipediaCode); url != "" || code != "" {
			l.Wikipedia = &WikipediaInfo{
				URL:          url,
				Code:         code,
				ArticleCount: fieldInt(m, FieldWikipediaArticles),
				ActiveUsers:  fieldInt(m, FieldWikipediaUsers),
			}
		}
		db.languoids[i] = l
		for std, code := range m.IDs {
			byCode := langByStd[std]
			if byCode == nil {
				byCode = make(map[string]int32)
				langByStd[std] = byCode
			}
			if _, taken := byCode[code]; !taken {
				byCode[code] = int32(i)
			}
		}
	}

	resolveLang := func(ref string) (int32, bool) {
		std, code := parseRef(ref)
		if std == ISO6392T {
			std = ISO6393
		}
		if byCode := langByStd[std]; byCode != nil {
			if idx, ok := byCode[code]; ok {
				return idx, true
			}
		}
		return none, false
	}

	// Hierarchy and macrolanguage edges. Children lists are inverted from the
	// parent edges afterwards; arena order is canonical order, so the lists
	// come out sorted without an explicit sort.
	for i, m := range langs {
		l := &db.languoids[i]
		if m.ParentRef != "" {
			if idx, ok := resolveLang(m.ParentRef); ok {
				l.parent = idx
			} else {
				dangling = append(dangling, DanglingReference{EntityID: m.ID, Field: "parent", Ref: m.ParentRef})
			}
		}
		if m.MacroRef != "" {
			if idx, ok := resolveLang(m.MacroRef); ok {
				l.macro = idx
			} else {
				dangling = append(dangling, DanglingReference{EntityID: m.ID, Field: "macrolanguage", Ref: m.MacroRef})
			}
		}
	}
	for i := range db.languoids {
		l := &db.languoids[i]
		if l.parent == int32(i) {
			return nil, &CycleError{Kind: KindLanguoid, Path: []string{l.ID, l.ID}}
		}
		if l.parent != none {
			p := &db.languoids[l.parent]
			p.children = append(p.children, int32(i))
		}
		if l.macro != none && l.macro != int32(i) {
			m := &db.languoids[l.macro]
			m.individuals = append(m.individuals, int32(i))
		}
	}
	if err := checkCycles(KindLanguoid, len(db.languoids),
		func(i int32) int32 { return db.languoids[i].parent },
		func(i int32) string { return db.languoids[i].ID }); err != nil {
		return nil, err
	}

	// Script and region attachments.
	for i, m := range langs {
		l := &db.languoids[i]
		for _, use := range m.Scripts {
			idx, ok := scriptIdx[use.Code]
			if !ok {
				dangling = append(dangling, DanglingReference{EntityID: m.ID, Field: "script", Ref: use.Code})
				continue
			}
			l.scripts = append(l.scripts, ScriptUse{
				Code:            use.Code,
				Canonical:       use.Canonical,
				Historical:      use.Historical,
				Religious:       use.Religious,
				Transliteration: use.Transliteration,
				Accessibility:   use.Accessibility,
				Widespread:      use.Widespread,
				Official:        use.Official,
				Symbolic:        use.Symbolic,
				Source:          use.Source,
				script:          idx,
			})
			db.scripts[idx].users = append(db.scripts[idx].users, scriptUser{
				languoid:  int32(i),
				canonical: use.Canonical,
			})
		}
		for _, use := range m.Regions {
			idx, ok := regionIdx[use.Code]
			if !ok {
				dangling = append(dangling, DanglingReference{EntityID: m.ID, Field: "region", Ref: use.Code})
				continue
			}
			l.regions = append(l.regions, RegionUse{
				Code:         use.Code,
				Official:     use.Official,
				SpeakerCount: use.SpeakerCount,
				Source:       use.Source,
				region:       idx,
			})
			db.regions[idx].languoids = append(db.regions[idx].languoids, regionUser{
				languoid:     int32(i),
				official:     use.Official,
				speakerCount: use.SpeakerCount,
			})
		}
	}

	// Region containment (country -> subdivision).
	for i, m := range regions {
		if m.ParentRef == "" {
			continue
		}
		_, code := parseRef(m.ParentRef)
		idx, ok := regionIdx[code]
		if !ok {
			dangling = append(dangling, DanglingReference{EntityID: m.ID, Field: "region_parent", Ref: code})
			continue
		}
		if idx == int32(i) {
			return nil, &CycleError{Kind: KindRegion, Path: []string{m.ID, m.ID}}
		}
		db.regions[i].parent = idx
	}
	for i := range db.regions {
		if p := db.regions[i].parent; p != none {
			db.regions[p].children = append(db.regions[p].children, int32(i))
		}
	}
	if err := checkCycles(KindRegion, len(db.regions),
		func(i int32) int32 { return db.regions[i].parent },
		func(i int32) string { return db.regions[i].ID }); err != nil {
		return nil, err
	}

	return dangling, nil
}

// checkCycles walks every parent chain once, marking nodes in-progress and
// done. Hitting an in-progress node means the chain loops back on itself.
func checkCycles(kind Kind, n int, parentOf func(int32) int32, idOf func(int32) string) error {
	const (
		unvisited = iota
		walking
		done
	)
	state := make([]int8, n)
	for start := 0; start < n; start++ {
		if state[start] != unvisited {
			continue
		}
		var path []int32
		i := int32(start)
		for i != none && state[i] == unvisited {
			state[i] = walking
			path = append(path, i)
			i = parentOf(i)
		}
		if i != none && state[i] == walking {
			var cycle []string
			emit := false
			for _, v := range path {
				if v == i {
					emit = true
				}
				if emit {
					cycle = append(cycle, idOf(v))
				}
			}
			cycle = append(cycle, idOf(i))
			return &CycleError{Kind: kind, Path: cycle}
		}
		for _, v := range path {
			state[v] = done
		}
	}
	return nil
}

func fieldString(m *mergedEntity, name string) string {
	if v, ok := m.Fields[name].(string); ok {
		return v
	}
	return ""
}

func fieldInt(m *mergedEntity, name string) *int64 {
	if v, ok := m.Fields[name].(int64); ok {
		return &v
	}
	return nil
}

func fieldFloat(m *mergedEntity, name string) *float64 {
	if v, ok := m.Fields[name].(float64); ok {
		return &v
	}
	return nil
}

func fieldTri(m *mergedEntity, name string) TriState {
	if v, ok := m.Fields[name].(TriState); ok {
		return v
	}
	return TriUnknown
}
