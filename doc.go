// Package glossa unifies heterogeneous catalogs of language metadata into one
// canonical, queryable graph of languoids (languages, dialects, macrolanguages,
// and families), their writing systems, and geographic regions.
//
// # Pipeline
//
// Glossa operates in two phases:
//
//  1. Build: source adapters stream normalized records; the entity resolver
//     groups records that denote the same real-world entity via shared
//     identifiers, the merger resolves field conflicts by source priority,
//     and the graph builder assembles the family forest, script attachments,
//     and region attachments, validating acyclicity along the way. The result
//     is persisted as a versioned SQLite artifact.
//
//  2. Query: the artifact is loaded wholesale into an immutable in-memory
//     arena. Lookups, identifier conversion, tree traversal, and name search
//     run lock-free over the loaded graph.
//
// # Usage
//
// Build a database from sources, save it, and query it:
//
//	b := glossa.NewBuilder()
//	b.AddSource(glossa.NewJSONLAdapter("glottolog", "records/glottolog.jsonl"))
//	db, err := b.Build(ctx)
//	if err != nil { ... }
//	err = db.Save("glossa.db")
//
//	db, err = glossa.Load(ctx, "glossa.db")
//	dutch, _, err := db.Get("nl", glossa.BCP47)
//	iso, _, err := db.Convert("nl", glossa.BCP47, glossa.ISO6393) // "nld"
//
// # Determinism
//
// Given the same records and the same priority table, a build is
// bit-identical across runs: canonical IDs are assigned from sorted
// identifier keys, field conflicts resolve by source priority with a
// first-seen tie-break, and no output depends on map iteration order.
//
// # Conflict auditing
//
// Every field offered with two or more distinct values across sources is
// recorded in the build report, regardless of how it was resolved. See
// [Report] and [ConflictRecord].
package glossa
