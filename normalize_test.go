package glossa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_BasicLanguoid(t *testing.T) {
	rec, err := normalize("glottolog", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{ISO6393: "deu", Glottocode: "stan1295"},
		Fields: map[string]any{
			FieldName:         "German",
			FieldSpeakerCount: float64(75000000), // JSON numbers arrive as float64
			FieldLatitude:     48.649,
			FieldLevel:        "language",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "glottolog", rec.source)
	assert.Equal(t, "deu", rec.ids[ISO6393])
	assert.Equal(t, "German", rec.fields[FieldName])
	assert.Equal(t, int64(75000000), rec.fields[FieldSpeakerCount])
	assert.Equal(t, 48.649, rec.fields[FieldLatitude])
}

func TestNormalize_UnknownKind(t *testing.T) {
	_, err := normalize("glottolog", 1, RawRecord{Kind: "galaxy"})
	require.Error(t, err)
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalize_Folds2TInto6393(t *testing.T) {
	rec, err := normalize("pycountry", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{ISO6392T: "deu"},
	})
	require.NoError(t, err)
	assert.Equal(t, "deu", rec.ids[ISO6393])
	_, has2T := rec.ids[ISO6392T]
	assert.False(t, has2T)
}

func TestNormalize_ConflictingCodesInOneRecord(t *testing.T) {
	// 2T and plain 639-3 share a code space; two different values in one
	// record cannot both be right.
	_, err := normalize("pycountry", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{ISO6392T: "deu", ISO6393: "eng"},
	})
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalize_StandardInvalidForKind(t *testing.T) {
	_, err := normalize("glotscript", 1, RawRecord{
		Kind: KindScript,
		IDs:  map[Standard]string{ISO6393: "deu"},
	})
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalize_NoIdentifiers(t *testing.T) {
	_, err := normalize("wikipedia", 3, RawRecord{
		Kind:   KindLanguoid,
		Fields: map[string]any{FieldName: "Mystery"},
	})
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalize_TombstoneException(t *testing.T) {
	// A pure retirement record carries no identity of its own.
	rec, err := normalize("iana", 1, RawRecord{
		Kind: KindLanguoid,
		Fields: map[string]any{
			FieldDeprecated: []any{
				map[string]any{"code": "mo", "standard": "bcp_47", "reason": "S"},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, rec.tombstone)
	require.Len(t, rec.deprecated, 1)
	assert.Equal(t, "mo", rec.deprecated[0].Code)
	assert.Equal(t, BCP47, rec.deprecated[0].Standard)
}

func TestNormalize_ScriptAttachments(t *testing.T) {
	rec, err := normalize("linguameta", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{BCP47: "sr"},
		Fields: map[string]any{
			FieldScripts: []any{
				map[string]any{"code": "Cyrl", "canonical": true, "official": true},
				map[string]any{"code": "Latn", "widespread": true},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, rec.scripts, 2)
	assert.Equal(t, TriTrue, rec.scripts[0].Canonical)
	assert.Equal(t, TriTrue, rec.scripts[0].Official)
	assert.Equal(t, TriUnknown, rec.scripts[0].Widespread)
	assert.Equal(t, TriUnknown, rec.scripts[1].Canonical)
	assert.Equal(t, TriTrue, rec.scripts[1].Widespread)
}

func TestNormalize_RegionAttachments(t *testing.T) {
	rec, err := normalize("linguameta", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{BCP47: "nl"},
		Fields: map[string]any{
			FieldRegions: []any{
				map[string]any{"code": "NL", "official": true, "speaker_count": float64(17000000)},
				map[string]any{"code": "SR"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, rec.regions, 2)
	assert.Equal(t, TriTrue, rec.regions[0].Official)
	require.NotNil(t, rec.regions[0].SpeakerCount)
	assert.Equal(t, int64(17000000), *rec.regions[0].SpeakerCount)
	assert.Nil(t, rec.regions[1].SpeakerCount)
}

func TestNormalize_BadFieldType(t *testing.T) {
	_, err := normalize("wikidata", 1, RawRecord{
		Kind:   KindLanguoid,
		IDs:    map[Standard]string{WikidataID: "Q188"},
		Fields: map[string]any{FieldSpeakerCount: "many"},
	})
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}

func TestNormalize_UnknownFieldsIgnored(t *testing.T) {
	rec, err := normalize("wikidata", 1, RawRecord{
		Kind:   KindLanguoid,
		IDs:    map[Standard]string{WikidataID: "Q188"},
		Fields: map[string]any{"flavor": "umami"},
	})
	require.NoError(t, err)
	assert.Empty(t, rec.fields)
}

func TestNormalize_NamesRequireBothKeys(t *testing.T) {
	_, err := normalize("linguameta", 1, RawRecord{
		Kind: KindLanguoid,
		IDs:  map[Standard]string{BCP47: "de"},
		Fields: map[string]any{
			FieldNames: []any{map[string]any{"name": "German"}},
		},
	})
	var malformed *malformedError
	require.ErrorAs(t, err, &malformed)
}
