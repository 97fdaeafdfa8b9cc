// Package harness runs ranking scenarios and checks their traces.
//
// # Scenario Format
//
// Scenarios are YAML files validated against an embedded CUE schema
// (schema.cue) before they are decoded:
//
//	name: apple_banana_carrot
//	description: "Two questions rank three items"
//	items: [Apple, Banana, Carrot]
//	oracle:
//	  mode: table
//	  answers:
//	    - {better: Apple, worse: Banana}
//	    - {better: Banana, worse: Carrot}
//	assertions:
//	  - {type: order, expect: [Apple, Banana, Carrot]}
//	  - {type: queries, count: 2}
//	  - {type: never_asked, pair: [Apple, Carrot]}
//
// Oracle modes are table (answers keyed by pair), sequence (answers in
// order) and order (a hidden best-first ranking).
//
// Scenarios of kind "judgments" skip the engine and record a list of
// direct judgments into a preference store. The engine never asks about a
// pair the store can already answer, so this is how contradiction recovery
// is exercised.
//
// # Assertion Types
//
//   - order: the final order
//   - queries, queries_at_most: oracle question count
//   - inferred, contradictions: counts from the trace
//   - asked, never_asked: whether an unordered pair was put to the oracle
//   - relation: the final store's relation for an ordered pair
//   - error: the run failed with the given RankError code
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory journal, a fixed session id
// ("scenario-" + name) and the engine's logical clock, so the trace read
// back from the journal is byte-stable and can be compared against golden
// files in {scenarios-dir}/golden.
package harness
