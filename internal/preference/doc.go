// Package preference implements the in-memory PreferenceStore for one
// ranking session.
//
// The store holds every known pairwise outcome between registered item
// identities and answers Query with Greater, Lesser or Unknown. It is kept
// transitively closed at all times: after Record returns, every fact
// derivable by transitivity from the recorded judgments is already present,
// so a caller never has to ask the oracle for an answer the store could
// have derived.
//
// # Representation
//
// Each fact is stored once as a directed edge winner > loser. The inverse
// (loser < winner) is implied by Query looking the pair up in both
// directions, which makes symmetry structural rather than something two
// writes have to keep in step.
//
// # Closure Extension
//
// When a new edge w > l arrives in a closed store, the only new facts are
// paths through that edge, so the update is the product
//
//	({w} ∪ above(w)) × ({l} ∪ below(l))
//
// where above(w) are the items known to beat w and below(l) the items l is
// known to beat. No re-scan of older edges is needed.
//
// # Contradictions
//
// Human answers are not guaranteed to be globally consistent. When a direct
// judgment contradicts a known fact, the store trusts the newer judgment:
// it rebuilds the closure from all direct judgments, newest first, skipping
// any older judgment the newer ones contradict. A skipped judgment is
// reconsidered by every later rebuild. The rebuild is reported as
// a Contradiction value and is never an error. A pair that was asked
// directly is known in some direction after every rebuild, so the oracle is
// never asked the same pair twice.
//
// A Store is owned by a single session and is not safe for concurrent use.
package preference
