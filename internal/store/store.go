package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// FormatVersion is the artifact schema version. Bumped on any change to the
// tables below; artifacts written under a different version are refused at
// load time rather than partially interpreted.
const FormatVersion = 1

// Store is the SQLite data access layer for a graph artifact.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the artifact at dbPath with WAL mode enabled.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Version reads the artifact's format version from the meta table. A missing
// meta table or key means the file is not a graph artifact at all.
func (s *Store) Version(ctx context.Context) (int, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'format_version'").Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("read format version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse format version %q: %w", raw, err)
	}
	return v, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS languoids (
  id              TEXT PRIMARY KEY,
  name            TEXT NOT NULL DEFAULT '',
  endonym         TEXT NOT NULL DEFAULT '',
  speaker_count   INTEGER,
  latitude        REAL,
  longitude       REAL,
  level           TEXT NOT NULL DEFAULT '',
  scope           TEXT NOT NULL DEFAULT '',
  status          TEXT NOT NULL DEFAULT '',
  endangerment    TEXT NOT NULL DEFAULT '',
  description     TEXT NOT NULL DEFAULT '',
  wikipedia_url   TEXT NOT NULL DEFAULT '',
  wikipedia_code  TEXT NOT NULL DEFAULT '',
  wikipedia_articles INTEGER,
  wikipedia_users INTEGER,
  parent_id       TEXT REFERENCES languoids(id),
  macro_id        TEXT REFERENCES languoids(id)
);

CREATE TABLE IF NOT EXISTS languoid_codes (
  languoid_id     TEXT NOT NULL REFERENCES languoids(id),
  standard        TEXT NOT NULL,
  code            TEXT NOT NULL,
  UNIQUE(standard, code)
);

CREATE TABLE IF NOT EXISTS scripts (
  id              TEXT PRIMARY KEY,
  iso_15924       TEXT NOT NULL UNIQUE,
  name            TEXT NOT NULL DEFAULT '',
  full_name       TEXT NOT NULL DEFAULT '',
  historical      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS regions (
  id              TEXT PRIMARY KEY,
  iso_3166        TEXT NOT NULL UNIQUE,
  name            TEXT NOT NULL DEFAULT '',
  official_name   TEXT NOT NULL DEFAULT '',
  subdivision_code TEXT NOT NULL DEFAULT '',
  subdivision_type TEXT NOT NULL DEFAULT '',
  historical      INTEGER NOT NULL DEFAULT 0,
  parent_id       TEXT REFERENCES regions(id)
);

CREATE TABLE IF NOT EXISTS script_uses (
  languoid_id     TEXT NOT NULL REFERENCES languoids(id),
  script_id       TEXT NOT NULL REFERENCES scripts(id),
  canonical       INTEGER NOT NULL DEFAULT 0,
  historical      INTEGER NOT NULL DEFAULT 0,
  religious       INTEGER NOT NULL DEFAULT 0,
  transliteration INTEGER NOT NULL DEFAULT 0,
  accessibility   INTEGER NOT NULL DEFAULT 0,
  widespread      INTEGER NOT NULL DEFAULT 0,
  official        INTEGER NOT NULL DEFAULT 0,
  symbolic        INTEGER NOT NULL DEFAULT 0,
  source          TEXT NOT NULL DEFAULT '',
  UNIQUE(languoid_id, script_id)
);

CREATE TABLE IF NOT EXISTS region_uses (
  languoid_id     TEXT NOT NULL REFERENCES languoids(id),
  region_id       TEXT NOT NULL REFERENCES regions(id),
  official        INTEGER NOT NULL DEFAULT 0,
  speaker_count   INTEGER,
  source          TEXT NOT NULL DEFAULT '',
  UNIQUE(languoid_id, region_id)
);

CREATE TABLE IF NOT EXISTS names (
  languoid_id     TEXT NOT NULL REFERENCES languoids(id),
  in_language     TEXT NOT NULL,
  name            TEXT NOT NULL,
  canonical       INTEGER NOT NULL DEFAULT 0,
  source          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS deprecated_codes (
  standard        TEXT NOT NULL,
  code            TEXT NOT NULL,
  languoid_id     TEXT REFERENCES languoids(id),
  reason          TEXT NOT NULL DEFAULT '',
  name            TEXT NOT NULL DEFAULT '',
  effective       TEXT NOT NULL DEFAULT '',
  remedy          TEXT NOT NULL DEFAULT '',
  UNIQUE(standard, code)
);

CREATE TABLE IF NOT EXISTS conflicts (
  entity_id       TEXT NOT NULL,
  field           TEXT NOT NULL,
  candidates      TEXT NOT NULL,
  selected        TEXT NOT NULL,
  selected_source TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dangling_refs (
  entity_id       TEXT NOT NULL,
  field           TEXT NOT NULL,
  ref             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_languoid_codes_languoid ON languoid_codes(languoid_id);
CREATE INDEX IF NOT EXISTS idx_languoids_parent ON languoids(parent_id);
CREATE INDEX IF NOT EXISTS idx_languoids_macro ON languoids(macro_id);
CREATE INDEX IF NOT EXISTS idx_regions_parent ON regions(parent_id);
CREATE INDEX IF NOT EXISTS idx_script_uses_languoid ON script_uses(languoid_id);
CREATE INDEX IF NOT EXISTS idx_script_uses_script ON script_uses(script_id);
CREATE INDEX IF NOT EXISTS idx_region_uses_languoid ON region_uses(languoid_id);
CREATE INDEX IF NOT EXISTS idx_region_uses_region ON region_uses(region_id);
CREATE INDEX IF NOT EXISTS idx_names_languoid ON names(languoid_id);
CREATE INDEX IF NOT EXISTS idx_deprecated_target ON deprecated_codes(languoid_id);
CREATE INDEX IF NOT EXISTS idx_conflicts_entity ON conflicts(entity_id);
`
