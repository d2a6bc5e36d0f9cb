// Package harness runs record select scenarios against every store backend.
//
// A scenario declares record types in CUE, seeds records and runs a list of
// select steps. Each step is checked against its expectations, and every
// backend must return exactly the same results as the first one.
//
// # Scenario Format
//
//	name: published_posts
//	description: "Published posts, newest first"
//	schemas:
//	  - ../schemas/blog.cue
//	seed:
//	  - type: Post
//	    records:
//	      - { id: 1, title: "a", status: "published", created_at: 100 }
//	steps:
//	  - name: newest
//	    select: Post
//	    where:
//	      - { field: status, op: "=", value: published }
//	    order: { created_at: DESC }
//	    limit: 2
//	    expect:
//	      ids: ["1"]
//	  - name: missing
//	    select: Post
//	    where:
//	      - { field: status, op: "=", value: archived }
//	    op: first
//	    expect:
//	      error: EMPTY_RESULT
//
// # Expectations
//
//   - ids: record identities in result order
//   - count: number of returned records
//   - error: QueryError code such as INVALID_CONDITION or EMPTY_RESULT
//   - records: positional subset match on record fields
//
// # Deterministic Testing
//
// Every backend starts from an empty in-memory store (SQLite ":memory:" or
// pebble on vfs.NewMem). Seed records without a key get one from a
// per-type SequenceGenerator, so snapshots are reproducible and can be
// compared against golden files with RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/published.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
