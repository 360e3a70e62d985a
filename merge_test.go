package glossa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeOne(t *testing.T, recs []*record) (*mergedEntity, []ConflictRecord) {
	t.Helper()
	groups := groupRecords(recs)
	require.Len(t, groups, 1)
	m, conflicts, err := mergeGroup("lang:000001", groups[0], DefaultPriorities())
	require.NoError(t, err)
	return m, conflicts
}

func TestMergeGroup_PriorityWins(t *testing.T) {
	m, conflicts := mergeOne(t, []*record{
		mustNormalize(t, "wikidata", 1, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "Amharic language"},
		}),
		mustNormalize(t, "glottolog", 2, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "Amharic"},
		}),
	})
	// glottolog outranks wikidata regardless of arrival order.
	assert.Equal(t, "Amharic", m.Fields[FieldName])

	require.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, FieldName, c.Field)
	assert.Equal(t, "Amharic", c.Selected)
	assert.Equal(t, "glottolog", c.SelectedSource)
	assert.Len(t, c.Values, 2)
}

func TestMergeGroup_NoConflictWhenSourcesAgree(t *testing.T) {
	_, conflicts := mergeOne(t, []*record{
		mustNormalize(t, "wikidata", 1, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "Amharic"},
		}),
		mustNormalize(t, "glottolog", 2, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "Amharic"},
		}),
	})
	assert.Empty(t, conflicts)
}

func TestMergeGroup_ArrivalBreaksRankTies(t *testing.T) {
	m, _ := mergeOne(t, []*record{
		mustNormalize(t, "glottolog", 1, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "First"},
		}),
		mustNormalize(t, "glottolog", 2, RawRecord{
			Kind:   KindLanguoid,
			IDs:    map[Standard]string{ISO6393: "amh"},
			Fields: map[string]any{FieldName: "Second"},
		}),
	})
	assert.Equal(t, "First", m.Fields[FieldName])
}

func TestMergeGroup_IdentifierUnion(t *testing.T) {
	m, _ := mergeOne(t, []*record{
		mustNormalize(t, "glottolog", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{Glottocode: "amha1245", ISO6393: "amh"},
		}),
		mustNormalize(t, "linguameta", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{ISO6393: "amh", BCP47: "am", ISO6391: "am"},
		}),
	})
	assert.Equal(t, "amha1245", m.IDs[Glottocode])
	assert.Equal(t, "amh", m.IDs[ISO6393])
	assert.Equal(t, "am", m.IDs[BCP47])
	assert.Equal(t, "am", m.IDs[ISO6391])
}

func TestMergeGroup_CollisionOnMatchingStandard(t *testing.T) {
	// Unioned via glottocode, but the two records claim different 639-3
	// codes: an unresolvable identity ambiguity.
	recs := []*record{
		mustNormalize(t, "glottolog", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{Glottocode: "amha1245", ISO6393: "amh"},
		}),
		mustNormalize(t, "wikidata", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{Glottocode: "amha1245", ISO6393: "arg"},
		}),
	}
	groups := groupRecords(recs)
	require.Len(t, groups, 1)
	_, _, err := mergeGroup("lang:000001", groups[0], DefaultPriorities())
	require.Error(t, err)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, ISO6393, collision.Standard)
	assert.ElementsMatch(t, []string{"amh", "arg"}, collision.Codes)
}

func TestMergeGroup_NonMatchingStandardResolvedByPriority(t *testing.T) {
	// ISO 639-1 disagreements resolve by priority and land in the conflict
	// log rather than aborting.
	m, conflicts := mergeOne(t, []*record{
		mustNormalize(t, "pycountry", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{ISO6393: "heb", ISO6391: "he"},
		}),
		mustNormalize(t, "wikipedia", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{ISO6393: "heb", ISO6391: "iw"},
		}),
	})
	assert.Equal(t, "he", m.IDs[ISO6391])
	require.Len(t, conflicts, 1)
	assert.Equal(t, "id.iso_639_1", conflicts[0].Field)
}

func TestMergeGroup_ScriptFlagsMergePerFlag(t *testing.T) {
	m, conflicts := mergeOne(t, []*record{
		mustNormalize(t, "linguameta", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "sr"},
			Fields: map[string]any{
				FieldScripts: []any{
					map[string]any{"code": "Cyrl", "canonical": true},
				},
			},
		}),
		mustNormalize(t, "glotscript", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "sr"},
			Fields: map[string]any{
				FieldScripts: []any{
					map[string]any{"code": "Cyrl", "canonical": false, "widespread": true},
					map[string]any{"code": "Latn", "widespread": true},
				},
			},
		}),
	})
	require.Len(t, m.Scripts, 2)
	cyrl := m.Scripts[0]
	assert.Equal(t, "Cyrl", cyrl.Code)
	// linguameta outranks glotscript on the contested flag; the flag only
	// glotscript knows still comes through.
	assert.Equal(t, TriTrue, cyrl.Canonical)
	assert.Equal(t, TriTrue, cyrl.Widespread)
	assert.Equal(t, "linguameta", cyrl.Source)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "scripts[Cyrl].canonical", conflicts[0].Field)
}

func TestMergeGroup_RegionSpeakerCountConflict(t *testing.T) {
	m, conflicts := mergeOne(t, []*record{
		mustNormalize(t, "linguameta", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "nl"},
			Fields: map[string]any{
				FieldRegions: []any{
					map[string]any{"code": "NL", "speaker_count": float64(17000000)},
				},
			},
		}),
		mustNormalize(t, "wikidata", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "nl"},
			Fields: map[string]any{
				FieldRegions: []any{
					map[string]any{"code": "NL", "speaker_count": float64(16500000)},
				},
			},
		}),
	})
	require.Len(t, m.Regions, 1)
	require.NotNil(t, m.Regions[0].SpeakerCount)
	assert.Equal(t, int64(17000000), *m.Regions[0].SpeakerCount)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "regions[NL].speaker_count", conflicts[0].Field)
}

func TestMergeGroup_NamesUnionDeduped(t *testing.T) {
	m, _ := mergeOne(t, []*record{
		mustNormalize(t, "linguameta", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "am"},
			Fields: map[string]any{
				FieldNames: []any{
					map[string]any{"in": "en", "name": "Amharic", "canonical": true},
					map[string]any{"in": "am", "name": "አማርኛ"},
				},
			},
		}),
		mustNormalize(t, "wikidata", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "am"},
			Fields: map[string]any{
				FieldNames: []any{
					map[string]any{"in": "en", "name": "Amharic"},
					map[string]any{"in": "fr", "name": "amharique"},
				},
			},
		}),
	})
	require.Len(t, m.Names, 3)
	// Sorted by (in, name); the duplicate keeps its canonical marking.
	assert.Equal(t, "አማርኛ", m.Names[0].Name)
	assert.Equal(t, "Amharic", m.Names[1].Name)
	assert.True(t, m.Names[1].Canonical)
	assert.Equal(t, "amharique", m.Names[2].Name)
}

func TestMergeGroup_DeprecatedConcatDeduped(t *testing.T) {
	m, _ := mergeOne(t, []*record{
		mustNormalize(t, "iana", 1, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "he"},
			Fields: map[string]any{
				FieldDeprecated: []any{
					map[string]any{"code": "iw", "standard": "bcp_47", "reason": "C"},
				},
			},
		}),
		mustNormalize(t, "pycountry", 2, RawRecord{
			Kind: KindLanguoid,
			IDs:  map[Standard]string{BCP47: "he"},
			Fields: map[string]any{
				FieldDeprecated: []any{
					map[string]any{"code": "iw", "standard": "bcp_47"},
					map[string]any{"code": "heb", "standard": "iso_639_2t"},
				},
			},
		}),
	})
	require.Len(t, m.Deprecated, 2)
	assert.Equal(t, "iw", m.Deprecated[0].Code)
	assert.Equal(t, "C", m.Deprecated[0].Reason) // first seen wins
	assert.Equal(t, ISO6393, m.Deprecated[1].Standard)
}

func TestNewPriorities_RejectsDuplicateRanks(t *testing.T) {
	_, err := NewPriorities(map[string]int{"a": 10, "b": 10})
	require.Error(t, err)
}

func TestPriorityTable_SourcesOrderedByRank(t *testing.T) {
	pri, err := NewPriorities(map[string]int{"low": 90, "high": 5, "mid": 40})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid", "low"}, pri.Sources())
}
