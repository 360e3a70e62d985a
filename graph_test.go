package glossa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func langEntity(id string, ids map[Standard]string, fields map[string]any) *mergedEntity {
	if fields == nil {
		fields = map[string]any{}
	}
	return &mergedEntity{ID: id, Kind: KindLanguoid, IDs: ids, Fields: fields}
}

func TestAssemble_ParentChildWiring(t *testing.T) {
	family := langEntity("lang:000001", map[Standard]string{Glottocode: "afro1255"}, map[string]any{
		FieldName: "Afro-Asiatic", FieldLevel: "family",
	})
	child := langEntity("lang:000002", map[Standard]string{Glottocode: "amha1245"}, map[string]any{
		FieldName: "Amharic", FieldLevel: "language",
	})
	child.ParentRef = "glottocode:afro1255"

	db := &Database{}
	dangling, err := assemble(db, []*mergedEntity{family, child})
	require.NoError(t, err)
	assert.Empty(t, dangling)

	require.Len(t, db.languoids, 2)
	amharic := &db.languoids[1]
	require.NotNil(t, amharic.Parent())
	assert.Equal(t, "lang:000001", amharic.Parent().ID)
	require.Len(t, db.languoids[0].Children(), 1)
	assert.Equal(t, "lang:000002", db.languoids[0].Children()[0].ID)
}

func TestAssemble_DanglingParentDroppedAndReported(t *testing.T) {
	orphan := langEntity("lang:000001", map[Standard]string{ISO6393: "xyz"}, nil)
	orphan.ParentRef = "glottocode:ghost999"

	db := &Database{}
	dangling, err := assemble(db, []*mergedEntity{orphan})
	require.NoError(t, err)
	require.Len(t, dangling, 1)
	assert.Equal(t, "lang:000001", dangling[0].EntityID)
	assert.Equal(t, "parent", dangling[0].Field)
	assert.Equal(t, "glottocode:ghost999", dangling[0].Ref)
	assert.Nil(t, db.languoids[0].Parent())
}

func TestAssemble_CycleIsFatal(t *testing.T) {
	a := langEntity("lang:000001", map[Standard]string{ISO6393: "aaa"}, nil)
	b := langEntity("lang:000002", map[Standard]string{ISO6393: "bbb"}, nil)
	a.ParentRef = "iso_639_3:bbb"
	b.ParentRef = "iso_639_3:aaa"

	db := &Database{}
	_, err := assemble(db, []*mergedEntity{a, b})
	require.Error(t, err)
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, KindLanguoid, cycle.Kind)
	assert.GreaterOrEqual(t, len(cycle.Path), 3)
	assert.Equal(t, cycle.Path[0], cycle.Path[len(cycle.Path)-1])
}

func TestAssemble_SelfParentIsFatal(t *testing.T) {
	a := langEntity("lang:000001", map[Standard]string{ISO6393: "aaa"}, nil)
	a.ParentRef = "iso_639_3:aaa"

	db := &Database{}
	_, err := assemble(db, []*mergedEntity{a})
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
}

func TestAssemble_ScriptAttachmentsWireBothSides(t *testing.T) {
	lang := langEntity("lang:000001", map[Standard]string{BCP47: "am"}, nil)
	lang.Scripts = []mergedScriptUse{
		{scriptAttach: scriptAttach{Code: "Ethi", Canonical: TriTrue}, Source: "linguameta"},
		{scriptAttach: scriptAttach{Code: "Ghost"}, Source: "linguameta"},
	}
	script := &mergedEntity{
		ID: "script:0001", Kind: KindScript,
		IDs:    map[Standard]string{ISO15924: "Ethi"},
		Fields: map[string]any{FieldName: "Ethiopic"},
	}

	db := &Database{}
	dangling, err := assemble(db, []*mergedEntity{lang, script})
	require.NoError(t, err)

	// The unknown script code is dropped and reported, the known one wired.
	require.Len(t, dangling, 1)
	assert.Equal(t, "script", dangling[0].Field)
	assert.Equal(t, "Ghost", dangling[0].Ref)

	require.Len(t, db.languoids[0].scripts, 1)
	assert.Equal(t, "Ethi", db.languoids[0].scripts[0].Code)
	require.Len(t, db.scripts[0].users, 1)
	assert.Equal(t, "lang:000001", db.scripts[0].Languoids()[0].ID)
	assert.Len(t, db.scripts[0].CanonicalLanguoids(), 1)
}

func TestAssemble_RegionHierarchy(t *testing.T) {
	country := &mergedEntity{
		ID: "region:0001", Kind: KindRegion,
		IDs:    map[Standard]string{ISO3166: "ET"},
		Fields: map[string]any{FieldName: "Ethiopia"},
	}
	subdivision := &mergedEntity{
		ID: "region:0002", Kind: KindRegion,
		IDs:    map[Standard]string{ISO3166: "ET-AA"},
		Fields: map[string]any{FieldName: "Addis Ababa"},
	}
	subdivision.ParentRef = "iso_3166:ET"

	db := &Database{}
	dangling, err := assemble(db, []*mergedEntity{country, subdivision})
	require.NoError(t, err)
	assert.Empty(t, dangling)

	addis := &db.regions[1]
	require.NotNil(t, addis.ParentRegion())
	assert.Equal(t, "ET", addis.ParentRegion().Code)
	require.Len(t, db.regions[0].Subdivisions(), 1)
	assert.Equal(t, "ET-AA", db.regions[0].Subdivisions()[0].Code)
}

func TestAssemble_MacrolanguageEdges(t *testing.T) {
	macro := langEntity("lang:000001", map[Standard]string{ISO6393: "ara"}, map[string]any{
		FieldScope: "M",
	})
	individual := langEntity("lang:000002", map[Standard]string{ISO6393: "arz"}, nil)
	individual.MacroRef = "iso_639_3:ara"

	db := &Database{}
	_, err := assemble(db, []*mergedEntity{macro, individual})
	require.NoError(t, err)

	arz := &db.languoids[1]
	require.NotNil(t, arz.Macrolanguage())
	assert.Equal(t, "lang:000001", arz.Macrolanguage().ID)
	require.Len(t, db.languoids[0].IndividualLanguages(), 1)
	assert.Equal(t, "lang:000002", db.languoids[0].IndividualLanguages()[0].ID)
}
