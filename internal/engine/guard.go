package engine

import "github.com/roach88/asksort/internal/ir"

// askGuard tracks which unordered pairs the oracle has been asked in one
// session.
//
// The store guarantees that an asked pair stays known, so the comparator
// never reaches the oracle for it again. The guard turns a violation of
// that guarantee into an error instead of a duplicate question to a human.
type askGuard struct {
	asked map[ir.Pair]struct{}
}

func newAskGuard() *askGuard {
	return &askGuard{asked: make(map[ir.Pair]struct{})}
}

// WouldRepeat reports whether {a, b} has already been asked.
func (g *askGuard) WouldRepeat(a, b ir.Identity) bool {
	_, ok := g.asked[ir.MakePair(a, b)]
	return ok
}

// Record marks {a, b} as asked.
func (g *askGuard) Record(a, b ir.Identity) {
	g.asked[ir.MakePair(a, b)] = struct{}{}
}

// Len returns the number of distinct pairs asked.
func (g *askGuard) Len() int {
	return len(g.asked)
}
