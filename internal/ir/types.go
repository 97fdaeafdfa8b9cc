package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identity is the unique key of one item being ranked (its name).
//
// Construct identities with NewIdentity so that equal names compare equal
// regardless of Unicode composition.
type Identity string

// NewIdentity trims surrounding whitespace and NFC-normalizes name.
func NewIdentity(name string) Identity {
	return Identity(norm.NFC.String(strings.TrimSpace(name)))
}

// Identities converts names into identities, preserving order.
func Identities(names ...string) []Identity {
	ids := make([]Identity, len(names))
	for i, n := range names {
		ids[i] = NewIdentity(n)
	}
	return ids
}

// String returns the identity as a plain string.
func (id Identity) String() string {
	return string(id)
}

// Names converts identities back into strings, preserving order.
func Names(ids []Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Relation is the known relation of one identity to another.
type Relation int8

const (
	// Unknown means no direct or derived judgment covers the pair.
	Unknown Relation = 0
	// Greater means the first identity is preferred over the second.
	Greater Relation = 1
	// Lesser means the second identity is preferred over the first.
	Lesser Relation = -1
)

// Known reports whether r is Greater or Lesser.
func (r Relation) Known() bool {
	return r != Unknown
}

func (r Relation) String() string {
	switch r {
	case Greater:
		return "greater"
	case Lesser:
		return "lesser"
	default:
		return "unknown"
	}
}

// Source records where a judgment came from.
type Source string

const (
	// SourceOracle marks a judgment answered directly by the oracle.
	SourceOracle Source = "oracle"
	// SourceInferred marks a judgment derived by transitivity.
	SourceInferred Source = "inferred"
)

// Judgment is a strict preference fact: Winner > Loser.
// Recording a Judgment implies Loser < Winner; there is no tie state.
type Judgment struct {
	Winner Identity `json:"winner"`
	Loser  Identity `json:"loser"`
	Source Source   `json:"source"`

	// Seq is the logical time the judgment was recorded. Inferred judgments
	// carry the seq of the direct judgment that produced them.
	Seq int64 `json:"seq"`
}

// NewJudgment orders a and b according to aIsGreater.
func NewJudgment(a, b Identity, aIsGreater bool, source Source, seq int64) Judgment {
	if aIsGreater {
		return Judgment{Winner: a, Loser: b, Source: source, Seq: seq}
	}
	return Judgment{Winner: b, Loser: a, Source: source, Seq: seq}
}

// String renders the judgment as "A > B".
func (j Judgment) String() string {
	return fmt.Sprintf("%s > %s", j.Winner, j.Loser)
}

// Pair is an unordered pair of identities with Low <= High.
// Use MakePair so that (a, b) and (b, a) produce the same key.
type Pair struct {
	Low  Identity
	High Identity
}

// MakePair builds the canonical unordered pair for a and b.
func MakePair(a, b Identity) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

func (p Pair) String() string {
	return fmt.Sprintf("{%s, %s}", p.Low, p.High)
}
