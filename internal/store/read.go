package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// LoadSnapshot reads the complete artifact back in insertion order. Callers
// check Version before loading; this assumes a compatible schema.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	err := queryRows(ctx, s.db,
		`SELECT id, name, endonym, speaker_count, latitude, longitude,
			level, scope, status, endangerment, description,
			wikipedia_url, wikipedia_code, wikipedia_articles, wikipedia_users,
			parent_id, macro_id
		 FROM languoids ORDER BY rowid`,
		func(rows *sql.Rows) error {
			var l Languoid
			var parent, macro sql.NullString
			if err := rows.Scan(&l.ID, &l.Name, &l.Endonym, &l.SpeakerCount, &l.Latitude, &l.Longitude,
				&l.Level, &l.Scope, &l.Status, &l.Endangerment, &l.Description,
				&l.WikipediaURL, &l.WikipediaCode, &l.WikipediaArticles, &l.WikipediaUsers,
				&parent, &macro); err != nil {
				return err
			}
			l.ParentID, l.MacroID = parent.String, macro.String
			snap.Languoids = append(snap.Languoids, l)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load languoids: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT languoid_id, standard, code FROM languoid_codes ORDER BY rowid",
		func(rows *sql.Rows) error {
			var c LanguoidCode
			if err := rows.Scan(&c.LanguoidID, &c.Standard, &c.Code); err != nil {
				return err
			}
			snap.Codes = append(snap.Codes, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load codes: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT id, iso_15924, name, full_name, historical FROM scripts ORDER BY rowid",
		func(rows *sql.Rows) error {
			var sc Script
			if err := rows.Scan(&sc.ID, &sc.Code, &sc.Name, &sc.FullName, &sc.Historical); err != nil {
				return err
			}
			snap.Scripts = append(snap.Scripts, sc)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load scripts: %w", err)
	}

	err = queryRows(ctx, s.db,
		`SELECT id, iso_3166, name, official_name, subdivision_code, subdivision_type, historical, parent_id
		 FROM regions ORDER BY rowid`,
		func(rows *sql.Rows) error {
			var r Region
			var parent sql.NullString
			if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.OfficialName,
				&r.SubdivisionCode, &r.SubdivisionType, &r.Historical, &parent); err != nil {
				return err
			}
			r.ParentID = parent.String
			snap.Regions = append(snap.Regions, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}

	err = queryRows(ctx, s.db,
		`SELECT languoid_id, script_id, canonical, historical, religious,
			transliteration, accessibility, widespread, official, symbolic, source
		 FROM script_uses ORDER BY rowid`,
		func(rows *sql.Rows) error {
			var u ScriptUse
			if err := rows.Scan(&u.LanguoidID, &u.ScriptID, &u.Canonical, &u.Historical, &u.Religious,
				&u.Transliteration, &u.Accessibility, &u.Widespread, &u.Official, &u.Symbolic, &u.Source); err != nil {
				return err
			}
			snap.ScriptUses = append(snap.ScriptUses, u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load script uses: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT languoid_id, region_id, official, speaker_count, source FROM region_uses ORDER BY rowid",
		func(rows *sql.Rows) error {
			var u RegionUse
			if err := rows.Scan(&u.LanguoidID, &u.RegionID, &u.Official, &u.SpeakerCount, &u.Source); err != nil {
				return err
			}
			snap.RegionUses = append(snap.RegionUses, u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load region uses: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT languoid_id, in_language, name, canonical, source FROM names ORDER BY rowid",
		func(rows *sql.Rows) error {
			var n Name
			if err := rows.Scan(&n.LanguoidID, &n.InLanguage, &n.Name, &n.Canonical, &n.Source); err != nil {
				return err
			}
			snap.Names = append(snap.Names, n)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT standard, code, languoid_id, reason, name, effective, remedy FROM deprecated_codes ORDER BY rowid",
		func(rows *sql.Rows) error {
			var d DeprecatedCode
			var target sql.NullString
			if err := rows.Scan(&d.Standard, &d.Code, &target, &d.Reason, &d.Name, &d.Effective, &d.Remedy); err != nil {
				return err
			}
			d.LanguoidID = target.String
			snap.Deprecated = append(snap.Deprecated, d)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load deprecated codes: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT entity_id, field, candidates, selected, selected_source FROM conflicts ORDER BY rowid",
		func(rows *sql.Rows) error {
			var c Conflict
			if err := rows.Scan(&c.EntityID, &c.Field, &c.Candidates, &c.Selected, &c.SelectedSource); err != nil {
				return err
			}
			snap.Conflicts = append(snap.Conflicts, c)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load conflicts: %w", err)
	}

	err = queryRows(ctx, s.db,
		"SELECT entity_id, field, ref FROM dangling_refs ORDER BY rowid",
		func(rows *sql.Rows) error {
			var d DanglingRef
			if err := rows.Scan(&d.EntityID, &d.Field, &d.Ref); err != nil {
				return err
			}
			snap.Dangling = append(snap.Dangling, d)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load dangling refs: %w", err)
	}

	var malformed sql.NullString
	err = s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'malformed_records'").Scan(&malformed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	if malformed.Valid {
		n, err := strconv.ParseInt(malformed.String, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse malformed_records %q: %w", malformed.String, err)
		}
		snap.Malformed = n
	}

	return snap, nil
}

func queryRows(ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
