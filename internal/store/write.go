package store

import (
	"fmt"
	"strconv"
)

// SaveSnapshot writes the complete artifact within a single transaction,
// replacing any previous content. Hierarchy edges are written in a second
// pass so parents inserted later in arena order do not trip the FK checks.
func (s *Store) SaveSnapshot(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	// Child tables first, then the entity tables they reference.
	for _, q := range []string{
		"DELETE FROM dangling_refs",
		"DELETE FROM conflicts",
		"DELETE FROM deprecated_codes",
		"DELETE FROM names",
		"DELETE FROM region_uses",
		"DELETE FROM script_uses",
		"DELETE FROM languoid_codes",
		"DELETE FROM regions",
		"DELETE FROM scripts",
		"DELETE FROM languoids",
		"DELETE FROM meta",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("save snapshot: clear: %w", err)
		}
	}

	for _, l := range snap.Languoids {
		_, err := tx.Exec(
			`INSERT INTO languoids (id, name, endonym, speaker_count, latitude, longitude,
				level, scope, status, endangerment, description,
				wikipedia_url, wikipedia_code, wikipedia_articles, wikipedia_users)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Endonym, l.SpeakerCount, l.Latitude, l.Longitude,
			l.Level, l.Scope, l.Status, l.Endangerment, l.Description,
			l.WikipediaURL, l.WikipediaCode, l.WikipediaArticles, l.WikipediaUsers,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: languoid %s: %w", l.ID, err)
		}
	}
	for _, l := range snap.Languoids {
		if l.ParentID == "" && l.MacroID == "" {
			continue
		}
		_, err := tx.Exec(
			"UPDATE languoids SET parent_id = ?, macro_id = ? WHERE id = ?",
			nullable(l.ParentID), nullable(l.MacroID), l.ID,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: languoid %s edges: %w", l.ID, err)
		}
	}

	for _, c := range snap.Codes {
		_, err := tx.Exec(
			"INSERT INTO languoid_codes (languoid_id, standard, code) VALUES (?, ?, ?)",
			c.LanguoidID, c.Standard, c.Code,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: code %s/%s: %w", c.Standard, c.Code, err)
		}
	}

	for _, sc := range snap.Scripts {
		_, err := tx.Exec(
			"INSERT INTO scripts (id, iso_15924, name, full_name, historical) VALUES (?, ?, ?, ?, ?)",
			sc.ID, sc.Code, sc.Name, sc.FullName, sc.Historical,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: script %s: %w", sc.ID, err)
		}
	}

	for _, r := range snap.Regions {
		_, err := tx.Exec(
			`INSERT INTO regions (id, iso_3166, name, official_name, subdivision_code, subdivision_type, historical)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Code, r.Name, r.OfficialName, r.SubdivisionCode, r.SubdivisionType, r.Historical,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: region %s: %w", r.ID, err)
		}
	}
	for _, r := range snap.Regions {
		if r.ParentID == "" {
			continue
		}
		if _, err := tx.Exec("UPDATE regions SET parent_id = ? WHERE id = ?", r.ParentID, r.ID); err != nil {
			return fmt.Errorf("save snapshot: region %s edges: %w", r.ID, err)
		}
	}

	for _, u := range snap.ScriptUses {
		_, err := tx.Exec(
			`INSERT INTO script_uses (languoid_id, script_id, canonical, historical, religious,
				transliteration, accessibility, widespread, official, symbolic, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.LanguoidID, u.ScriptID, u.Canonical, u.Historical, u.Religious,
			u.Transliteration, u.Accessibility, u.Widespread, u.Official, u.Symbolic, u.Source,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: script use %s/%s: %w", u.LanguoidID, u.ScriptID, err)
		}
	}

	for _, u := range snap.RegionUses {
		_, err := tx.Exec(
			`INSERT INTO region_uses (languoid_id, region_id, official, speaker_count, source)
			 VALUES (?, ?, ?, ?, ?)`,
			u.LanguoidID, u.RegionID, u.Official, u.SpeakerCount, u.Source,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: region use %s/%s: %w", u.LanguoidID, u.RegionID, err)
		}
	}

	for _, n := range snap.Names {
		_, err := tx.Exec(
			"INSERT INTO names (languoid_id, in_language, name, canonical, source) VALUES (?, ?, ?, ?, ?)",
			n.LanguoidID, n.InLanguage, n.Name, n.Canonical, n.Source,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: name %q: %w", n.Name, err)
		}
	}

	for _, d := range snap.Deprecated {
		_, err := tx.Exec(
			`INSERT INTO deprecated_codes (standard, code, languoid_id, reason, name, effective, remedy)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.Standard, d.Code, nullable(d.LanguoidID), d.Reason, d.Name, d.Effective, d.Remedy,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: deprecated %s/%s: %w", d.Standard, d.Code, err)
		}
	}

	for _, c := range snap.Conflicts {
		_, err := tx.Exec(
			`INSERT INTO conflicts (entity_id, field, candidates, selected, selected_source)
			 VALUES (?, ?, ?, ?, ?)`,
			c.EntityID, c.Field, c.Candidates, c.Selected, c.SelectedSource,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: conflict %s.%s: %w", c.EntityID, c.Field, err)
		}
	}

	for _, d := range snap.Dangling {
		_, err := tx.Exec(
			"INSERT INTO dangling_refs (entity_id, field, ref) VALUES (?, ?, ?)",
			d.EntityID, d.Field, d.Ref,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: dangling ref %s.%s: %w", d.EntityID, d.Field, err)
		}
	}

	for key, value := range map[string]string{
		"format_version":    strconv.Itoa(FormatVersion),
		"malformed_records": strconv.FormatInt(snap.Malformed, 10),
	} {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("save snapshot: meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
