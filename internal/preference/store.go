package preference

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/asksort/internal/ir"
)

// Errors returned by Record for calls that can never be valid.
var (
	ErrUnknownIdentity = errors.New("identity not registered")
	ErrSelfComparison  = errors.New("identity compared with itself")
)

// edge is a directed fact winner > loser.
type edge struct {
	winner ir.Identity
	loser  ir.Identity
}

type set map[ir.Identity]struct{}

// Store is the PreferenceStore of one ranking session.
type Store struct {
	items []ir.Identity
	index map[ir.Identity]int

	facts map[edge]ir.Judgment
	above map[ir.Identity]set // above[x]: items known to beat x
	below map[ir.Identity]set // below[x]: items x is known to beat

	history    []ir.Judgment // every direct judgment, oldest first
	superseded []ir.Judgment // direct judgments overridden by newer ones, oldest first

	comparisons    int
	seq            int64
	contradictions []Contradiction
}

// RecordResult describes what a single Record call changed.
type RecordResult struct {
	// Judgment is the direct judgment that was recorded.
	Judgment ir.Judgment

	// Inferred lists the facts that became known as a consequence,
	// excluding Judgment itself.
	Inferred []ir.Judgment

	// Contradiction is non-nil when Judgment conflicted with a known fact.
	Contradiction *Contradiction
}

// New creates an empty store.
func New() *Store {
	return &Store{
		index: make(map[ir.Identity]int),
		facts: make(map[edge]ir.Judgment),
		above: make(map[ir.Identity]set),
		below: make(map[ir.Identity]set),
	}
}

// Register adds an identity to the known set.
// Registering an identity twice is a no-op; it never resets known facts
// or the comparison count.
func (s *Store) Register(id ir.Identity) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, id)
	s.above[id] = make(set)
	s.below[id] = make(set)
}

// Registered reports whether id has been registered.
func (s *Store) Registered(id ir.Identity) bool {
	_, ok := s.index[id]
	return ok
}

// Items returns the registered identities in registration order.
func (s *Store) Items() []ir.Identity {
	return slices.Clone(s.items)
}

// Len returns the number of registered identities.
func (s *Store) Len() int {
	return len(s.items)
}

// Query returns the known relation of a to b.
// It never performs I/O. Unregistered identities and a == b yield Unknown.
func (s *Store) Query(a, b ir.Identity) ir.Relation {
	if a == b {
		return ir.Unknown
	}
	if _, ok := s.facts[edge{a, b}]; ok {
		return ir.Greater
	}
	if _, ok := s.facts[edge{b, a}]; ok {
		return ir.Lesser
	}
	return ir.Unknown
}

// Record stores a direct oracle judgment about a and b and extends the
// closure before returning.
//
// Every call counts towards ComparisonCount. If the judgment contradicts a
// known fact the store recovers locally and reports it through
// RecordResult.Contradiction; that is not an error.
func (s *Store) Record(a, b ir.Identity, aIsGreater bool) (RecordResult, error) {
	if !s.Registered(a) {
		return RecordResult{}, fmt.Errorf("record %q: %w", a, ErrUnknownIdentity)
	}
	if !s.Registered(b) {
		return RecordResult{}, fmt.Errorf("record %q: %w", b, ErrUnknownIdentity)
	}
	if a == b {
		return RecordResult{}, fmt.Errorf("record %q: %w", a, ErrSelfComparison)
	}

	s.comparisons++
	s.seq++
	j := ir.NewJudgment(a, b, aIsGreater, ir.SourceOracle, s.seq)
	s.history = append(s.history, j)

	switch s.Query(j.Winner, j.Loser) {
	case ir.Greater:
		// Already known in the same direction: promote to direct.
		s.facts[edge{j.Winner, j.Loser}] = j
		return RecordResult{Judgment: j}, nil

	case ir.Unknown:
		s.addFact(j)
		return RecordResult{Judgment: j, Inferred: s.extend(j)}, nil
	}

	conflicting := s.facts[edge{j.Loser, j.Winner}]
	before := make(map[edge]ir.Judgment, len(s.facts))
	for e, f := range s.facts {
		before[e] = f
	}

	superseded := s.rebuild()

	var added, retracted []ir.Judgment
	for e, f := range s.facts {
		if _, ok := before[e]; !ok && e != (edge{j.Winner, j.Loser}) {
			added = append(added, f)
		}
	}
	for e, f := range before {
		if _, ok := s.facts[e]; !ok {
			retracted = append(retracted, f)
		}
	}
	s.sortJudgments(added)
	s.sortJudgments(retracted)

	c := Contradiction{
		Judgment:    j,
		Conflicting: conflicting,
		Superseded:  superseded,
		Retracted:   retracted,
	}
	s.contradictions = append(s.contradictions, c)

	return RecordResult{Judgment: j, Inferred: added, Contradiction: &c}, nil
}

// ComparisonCount returns the number of oracle judgments recorded.
// Inferred facts are not counted.
func (s *Store) ComparisonCount() int {
	return s.comparisons
}

// Contradictions returns every contradiction flagged so far, in order.
func (s *Store) Contradictions() []Contradiction {
	return slices.Clone(s.contradictions)
}

// Facts returns all known facts, ordered by seq and then registration order.
func (s *Store) Facts() []ir.Judgment {
	out := make([]ir.Judgment, 0, len(s.facts))
	for _, f := range s.facts {
		out = append(out, f)
	}
	s.sortJudgments(out)
	return out
}

// Complete reports whether every pair of registered identities is known,
// i.e. the store describes a total order.
func (s *Store) Complete() bool {
	n := len(s.items)
	return len(s.facts) == n*(n-1)/2
}

// InferredCount returns the number of known facts that were derived
// rather than recorded directly.
func (s *Store) InferredCount() int {
	n := 0
	for _, f := range s.facts {
		if f.Source == ir.SourceInferred {
			n++
		}
	}
	return n
}

// TotalOrder returns the registered identities from most to least
// preferred. ok is false unless the store is Complete; a complete closed
// store is a transitive tournament, so ranking by the number of items each
// identity beats is exact.
func (s *Store) TotalOrder() (order []ir.Identity, ok bool) {
	if !s.Complete() {
		return nil, false
	}
	order = slices.Clone(s.items)
	slices.SortStableFunc(order, func(a, b ir.Identity) int {
		return len(s.below[b]) - len(s.below[a])
	})
	return order, true
}

// addFact inserts j without any closure work.
func (s *Store) addFact(j ir.Judgment) {
	s.facts[edge{j.Winner, j.Loser}] = j
	s.below[j.Winner][j.Loser] = struct{}{}
	s.above[j.Loser][j.Winner] = struct{}{}
}

// extend adds every fact x > y for x in {w} ∪ above(w) and y in
// {l} ∪ below(l), where j is the new edge w > l. The store must have been
// closed before j was added. Returns the newly inferred facts.
func (s *Store) extend(j ir.Judgment) []ir.Judgment {
	winners := append([]ir.Identity{j.Winner}, s.ordered(s.above[j.Winner])...)
	losers := append([]ir.Identity{j.Loser}, s.ordered(s.below[j.Loser])...)

	var inferred []ir.Judgment
	for _, x := range winners {
		for _, y := range losers {
			if x == y || s.Query(x, y).Known() {
				continue
			}
			f := ir.Judgment{Winner: x, Loser: y, Source: ir.SourceInferred, Seq: j.Seq}
			s.addFact(f)
			inferred = append(inferred, f)
		}
	}
	return inferred
}

// rebuild recomputes the closure from every direct judgment recorded so
// far, newest first. A judgment contradicted by the closure of newer ones is
// superseded; one superseded by an earlier rebuild is reinstated once
// nothing newer contradicts it, so an asked pair never becomes unknown.
// Returns the judgments newly superseded by this rebuild, oldest first.
func (s *Store) rebuild() []ir.Judgment {
	wasSuperseded := make(map[int64]bool, len(s.superseded))
	for _, d := range s.superseded {
		wasSuperseded[d.Seq] = true
	}

	s.facts = make(map[edge]ir.Judgment, len(s.facts))
	for _, id := range s.items {
		s.above[id] = make(set)
		s.below[id] = make(set)
	}

	var dropped, newly []ir.Judgment
	for i := len(s.history) - 1; i >= 0; i-- {
		d := s.history[i]
		e := edge{d.Winner, d.Loser}
		switch s.Query(d.Winner, d.Loser) {
		case ir.Lesser:
			dropped = append(dropped, d)
			if !wasSuperseded[d.Seq] {
				newly = append(newly, d)
			}
		case ir.Greater:
			if s.facts[e].Source == ir.SourceInferred {
				s.facts[e] = d
			}
		default:
			s.addFact(d)
			s.extend(d)
		}
	}

	slices.Reverse(dropped)
	slices.Reverse(newly)
	s.superseded = dropped
	return newly
}

// ordered returns the members of m in registration order.
func (s *Store) ordered(m set) []ir.Identity {
	out := make([]ir.Identity, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b ir.Identity) int {
		return s.index[a] - s.index[b]
	})
	return out
}

func (s *Store) sortJudgments(js []ir.Judgment) {
	slices.SortFunc(js, func(a, b ir.Judgment) int {
		if a.Seq != b.Seq {
			if a.Seq < b.Seq {
				return -1
			}
			return 1
		}
		if d := s.index[a.Winner] - s.index[b.Winner]; d != 0 {
			return d
		}
		return s.index[a.Loser] - s.index[b.Loser]
	})
}
