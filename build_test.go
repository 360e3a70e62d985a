package glossa

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/jward/glossa/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memAdapter feeds records straight from memory, for tests.
type memAdapter struct {
	source string
	recs   []RawRecord
}

func (a memAdapter) Source() string { return a.source }

func (a memAdapter) Records(ctx context.Context) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		for _, r := range a.recs {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func glottologRecords() []RawRecord {
	return []RawRecord{
		{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{Glottocode: "semi1276"},
			Fields: map[string]any{"name": "Semitic", "level": "family"},
		},
		{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{Glottocode: "amha1245", ISO6393: "amh"},
			Fields: map[string]any{
				"name": "Amharic", "level": "language",
				"parent": "glottocode:semi1276",
			},
		},
	}
}

func linguametaRecords() []RawRecord {
	return []RawRecord{
		{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "am", ISO6393: "amh"},
			Fields: map[string]any{
				"name":    "Amharic language",
				"endonym": "አማርኛ",
				"scripts": []any{
					map[string]any{"code": "Ethi", "canonical": true},
				},
				"regions": []any{
					map[string]any{"code": "ET", "official": true},
				},
				"names": []any{
					map[string]any{"in": "en", "name": "Amharic", "canonical": true},
				},
			},
		},
		{
			Kind:   KindScript,
			IDs:    map[Standard]string{ISO15924: "Ethi"},
			Fields: map[string]any{"name": "Ethiopic"},
		},
		{
			Kind:   KindRegion,
			IDs:    map[Standard]string{ISO3166: "ET"},
			Fields: map[string]any{"name": "Ethiopia"},
		},
	}
}

func ianaRecords() []RawRecord {
	return []RawRecord{
		{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "he", ISO6393: "heb"},
			Fields: map[string]any{
				"name": "Hebrew",
				"deprecated": []any{
					map[string]any{"code": "iw", "standard": "bcp_47", "reason": "C"},
				},
			},
		},
		{
			// Moldavian was split with no single successor: a pure tombstone.
			Kind: KindLanguoid,
			Fields: map[string]any{
				"deprecated": []any{
					map[string]any{"code": "mo", "standard": "bcp_47", "reason": "S"},
				},
			},
		},
	}
}

func buildTestDB(t *testing.T, adapters ...SourceAdapter) *Database {
	t.Helper()
	b := NewBuilder()
	for _, a := range adapters {
		b.AddSource(a)
	}
	db, err := b.Build(context.Background())
	require.NoError(t, err)
	return db
}

func TestBuild_EndToEnd(t *testing.T) {
	db := buildTestDB(t,
		memAdapter{source: "glottolog", recs: glottologRecords()},
		memAdapter{source: "linguameta", recs: linguametaRecords()},
		memAdapter{source: "iana", recs: ianaRecords()},
	)

	// The three Amharic views merged into one entity with the union of codes.
	amharic, _, err := db.Get("am", BCP47)
	require.NoError(t, err)
	assert.Equal(t, "amh", amharic.Code(ISO6393))
	assert.Equal(t, "amha1245", amharic.Code(Glottocode))
	// glottolog outranks linguameta on the contested name.
	assert.Equal(t, "Amharic", amharic.Name)
	// The endonym only linguameta provides still comes through.
	assert.Equal(t, "አማርኛ", amharic.Endonym)

	require.NotNil(t, amharic.Parent())
	assert.Equal(t, "Semitic", amharic.Parent().Name)

	require.Len(t, amharic.CanonicalScripts(), 1)
	assert.Equal(t, "Ethiopic", amharic.CanonicalScripts()[0].Name)
	require.Len(t, amharic.OfficialRegions(), 1)
	assert.Equal(t, "Ethiopia", amharic.OfficialRegions()[0].Name)

	// The name disagreement is on the audit trail.
	report := db.Report()
	var found bool
	for _, c := range report.Conflicts {
		if c.Field == FieldName && c.Selected == "Amharic" {
			found = true
			assert.Equal(t, "glottolog", c.SelectedSource)
		}
	}
	assert.True(t, found, "expected a name conflict record")
}

func TestBuild_DeprecatedRedirectAndTombstone(t *testing.T) {
	db := buildTestDB(t, memAdapter{source: "iana", recs: ianaRecords()})

	// Retired code with a successor: redirect to the live entity.
	hebrew, redirect, err := db.Get("iw", BCP47)
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, "iw", redirect.Code)
	assert.Equal(t, "C", redirect.Reason)
	assert.Equal(t, "Hebrew", hebrew.Name)

	// Retired code with no successor: redirect info but no entity.
	l, redirect, err := db.Get("mo", BCP47)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, l)
	require.NotNil(t, redirect)
	assert.Equal(t, "S", redirect.Reason)
}

func TestBuild_DeterministicAcrossSourceOrder(t *testing.T) {
	forward := buildTestDB(t,
		memAdapter{source: "glottolog", recs: glottologRecords()},
		memAdapter{source: "linguameta", recs: linguametaRecords()},
		memAdapter{source: "iana", recs: ianaRecords()},
	)
	backward := buildTestDB(t,
		memAdapter{source: "iana", recs: ianaRecords()},
		memAdapter{source: "linguameta", recs: linguametaRecords()},
		memAdapter{source: "glottolog", recs: glottologRecords()},
	)

	require.Equal(t, len(forward.languoids), len(backward.languoids))
	for i := range forward.languoids {
		f, b := &forward.languoids[i], &backward.languoids[i]
		assert.Equal(t, f.ID, b.ID)
		assert.Equal(t, f.Name, b.Name)
		assert.Equal(t, f.Codes, b.Codes)
	}
}

func TestBuild_SerialMatchesParallel(t *testing.T) {
	adapters := func() []SourceAdapter {
		return []SourceAdapter{
			memAdapter{source: "glottolog", recs: glottologRecords()},
			memAdapter{source: "linguameta", recs: linguametaRecords()},
		}
	}

	serial := NewBuilder().WithParallel(1)
	parallel := NewBuilder().WithParallel(8)
	for _, a := range adapters() {
		serial.AddSource(a)
	}
	for _, a := range adapters() {
		parallel.AddSource(a)
	}

	sdb, err := serial.Build(context.Background())
	require.NoError(t, err)
	pdb, err := parallel.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(sdb.languoids), len(pdb.languoids))
	for i := range sdb.languoids {
		assert.Equal(t, sdb.languoids[i].ID, pdb.languoids[i].ID)
		assert.Equal(t, sdb.languoids[i].Name, pdb.languoids[i].Name)
	}
	assert.Equal(t, sdb.Report().Conflicts, pdb.Report().Conflicts)
}

func TestBuild_UnknownSourceRejected(t *testing.T) {
	b := NewBuilder().AddSource(memAdapter{source: "mystery"})
	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestBuild_DuplicateSourceRejected(t *testing.T) {
	b := NewBuilder().
		AddSource(memAdapter{source: "iana"}).
		AddSource(memAdapter{source: "iana"})
	_, err := b.Build(context.Background())
	require.Error(t, err)
}

func TestBuild_CollisionAborts(t *testing.T) {
	b := NewBuilder().AddSource(memAdapter{source: "glottolog", recs: []RawRecord{
		{Kind: KindLanguoid, IDs: map[Standard]string{Glottocode: "aaaa1111", ISO6391: "av"}},
		{Kind: KindLanguoid, IDs: map[Standard]string{Glottocode: "bbbb1111", ISO6391: "av"}},
	}})
	_, err := b.Build(context.Background())
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
}

func TestBuild_JSONLAdapterCountsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glottolog.jsonl")
	content := `{"kind":"languoid","ids":{"iso_639_3":"amh"},"fields":{"name":"Amharic"}}
not json at all
{"kind":"languoid","ids":{"iso_639_3":"tir"},"fields":{"name":"Tigrinya"}}
{"kind":"starship","ids":{}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	db := buildTestDB(t, NewJSONLAdapter("glottolog", path))
	assert.Equal(t, 2, db.Stats().Languoids)
	assert.Equal(t, 2, db.Report().Malformed)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	built := buildTestDB(t,
		memAdapter{source: "glottolog", recs: glottologRecords()},
		memAdapter{source: "linguameta", recs: linguametaRecords()},
		memAdapter{source: "iana", recs: ianaRecords()},
	)

	path := filepath.Join(t.TempDir(), "glossa.db")
	require.NoError(t, built.Save(path))

	loaded, err := Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, len(built.languoids), len(loaded.languoids))
	for i := range built.languoids {
		b, l := &built.languoids[i], &loaded.languoids[i]
		assert.Equal(t, b.ID, l.ID)
		assert.Equal(t, b.Name, l.Name)
		assert.Equal(t, b.Codes, l.Codes)
		assert.Equal(t, b.Names, l.Names)
		assert.Equal(t, b.Deprecated, l.Deprecated)
	}

	// Lookups, redirects, tombstones, and traversal survive the round trip.
	amharic, _, err := loaded.Get("am", BCP47)
	require.NoError(t, err)
	assert.Equal(t, "Semitic", amharic.Parent().Name)
	assert.Len(t, amharic.CanonicalScripts(), 1)

	_, redirect, err := loaded.Get("iw", BCP47)
	require.NoError(t, err)
	require.NotNil(t, redirect)

	_, redirect, err = loaded.Get("mo", BCP47)
	require.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, redirect)

	assert.Equal(t, built.Report(), loaded.Report())
}

func TestLoad_IncompatibleFormat(t *testing.T) {
	built := buildTestDB(t, memAdapter{source: "iana", recs: ianaRecords()})
	path := filepath.Join(t.TempDir(), "glossa.db")
	require.NoError(t, built.Save(path))

	st, err := store.Open(path)
	require.NoError(t, err)
	_, err = st.DB().Exec("UPDATE meta SET value = '9999' WHERE key = 'format_version'")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Load(context.Background(), path)
	require.ErrorIs(t, err, ErrIncompatibleFormat)
}

func TestLoad_NotAnArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Load(context.Background(), path)
	require.ErrorIs(t, err, ErrIncompatibleFormat)
}
