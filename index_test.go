package glossa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexedDB(t *testing.T, merged []*mergedEntity, tombstones []DeprecatedCode) *Database {
	t.Helper()
	db := &Database{}
	_, err := assemble(db, merged)
	require.NoError(t, err)
	idx, err := buildIndex(db, tombstones)
	require.NoError(t, err)
	db.idx = idx
	db.tombstones = tombstones
	return db
}

func TestIndex_LiveLookup(t *testing.T) {
	db := indexedDB(t, []*mergedEntity{
		langEntity("lang:000001", map[Standard]string{ISO6393: "amh", BCP47: "am"}, nil),
	}, nil)

	i, redirect, err := db.idx.lookup(ISO6393, "amh")
	require.NoError(t, err)
	assert.Nil(t, redirect)
	assert.Equal(t, "lang:000001", db.languoids[i].ID)

	// 2T lookups answer from the 639-3 table.
	i, _, err = db.idx.lookup(ISO6392T, "amh")
	require.NoError(t, err)
	assert.Equal(t, "lang:000001", db.languoids[i].ID)
}

func TestIndex_NotFound(t *testing.T) {
	db := indexedDB(t, []*mergedEntity{
		langEntity("lang:000001", map[Standard]string{ISO6393: "amh"}, nil),
	}, nil)

	_, redirect, err := db.idx.lookup(ISO6393, "zzz")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, redirect)
}

func TestIndex_DeprecatedRedirect(t *testing.T) {
	hebrew := langEntity("lang:000001", map[Standard]string{BCP47: "he"}, nil)
	hebrew.Deprecated = []DeprecatedCode{
		{Code: "iw", Standard: BCP47, Reason: "C"},
	}
	db := indexedDB(t, []*mergedEntity{hebrew}, nil)

	i, redirect, err := db.idx.lookup(BCP47, "iw")
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, "iw", redirect.Code)
	assert.Equal(t, "C", redirect.Reason)
	assert.Equal(t, "lang:000001", db.languoids[i].ID)
}

func TestIndex_TombstoneHasNoSuccessor(t *testing.T) {
	db := indexedDB(t, []*mergedEntity{
		langEntity("lang:000001", map[Standard]string{BCP47: "ro"}, nil),
	}, []DeprecatedCode{
		{Code: "mo", Standard: BCP47, Reason: "S"},
	})

	_, redirect, err := db.idx.lookup(BCP47, "mo")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, redirect)
	assert.Equal(t, "mo", redirect.Code)
	assert.Equal(t, "S", redirect.Reason)
}

func TestIndex_LiveWinsOverDeprecated(t *testing.T) {
	// A code retired by one catalog but still live in the graph resolves to
	// the live entity.
	stale := langEntity("lang:000001", map[Standard]string{ISO6393: "aaa"}, nil)
	stale.Deprecated = []DeprecatedCode{{Code: "bbb", Standard: ISO6393}}
	live := langEntity("lang:000002", map[Standard]string{ISO6393: "bbb"}, nil)
	db := indexedDB(t, []*mergedEntity{stale, live}, nil)

	i, redirect, err := db.idx.lookup(ISO6393, "bbb")
	require.NoError(t, err)
	assert.Nil(t, redirect)
	assert.Equal(t, "lang:000002", db.languoids[i].ID)
}

func TestBuildIndex_DuplicateLiveCodeIsFatal(t *testing.T) {
	db := &Database{}
	_, err := assemble(db, []*mergedEntity{
		langEntity("lang:000001", map[Standard]string{ISO6391: "av", ISO6393: "ava"}, nil),
		langEntity("lang:000002", map[Standard]string{ISO6391: "av", WikipediaID: "Avar_language"}, nil),
	})
	require.NoError(t, err)

	_, err = buildIndex(db, nil)
	require.Error(t, err)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, ISO6391, collision.Standard)
	assert.Equal(t, []string{"av"}, collision.Codes)
	assert.ElementsMatch(t, []string{"lang:000001", "lang:000002"}, collision.Entities)
}
