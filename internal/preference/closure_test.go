package preference

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/ir"
)

// assertClosedAndConsistent checks the store invariants over every pair
// and triple: symmetry, antisymmetry and transitive closure.
func assertClosedAndConsistent(t *testing.T, s *Store) {
	t.Helper()
	items := s.Items()

	for _, a := range items {
		for _, b := range items {
			if a == b {
				continue
			}
			ab, ba := s.Query(a, b), s.Query(b, a)
			require.Equal(t, -ab, ba, "symmetry %s/%s", a, b)

			for _, c := range items {
				if c == a || c == b {
					continue
				}
				if ab == ir.Greater && s.Query(b, c) == ir.Greater {
					require.Equal(t, ir.Greater, s.Query(a, c), "closure %s > %s > %s", a, b, c)
				}
			}
		}
	}
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%02d", i)
	}
	return out
}

func TestClosure_ConsistentAnswersMatchHiddenOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		t.Run(fmt.Sprintf("round-%d", round), func(t *testing.T) {
			items := names(8)
			s := newTestStore(t, items...)

			// rank[x] is x's position in a hidden total order.
			perm := rng.Perm(len(items))
			rank := make(map[ir.Identity]int)
			for i, p := range perm {
				rank[ir.Identity(items[i])] = p
			}

			for k := 0; k < 12; k++ {
				a := ir.Identity(items[rng.Intn(len(items))])
				b := ir.Identity(items[rng.Intn(len(items))])
				if a == b || s.Query(a, b).Known() {
					continue
				}
				res := mustRecord(t, s, string(a), string(b), rank[a] < rank[b])
				require.Nil(t, res.Contradiction, "consistent answers never contradict")
			}

			for _, f := range s.Facts() {
				assert.Less(t, rank[f.Winner], rank[f.Loser], "fact %s disagrees with hidden order", f)
			}
			assertClosedAndConsistent(t, s)
		})
	}
}

func TestClosure_ArbitraryAnswersKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		t.Run(fmt.Sprintf("round-%d", round), func(t *testing.T) {
			items := names(6)
			s := newTestStore(t, items...)
			asked := make(map[ir.Pair]bool)

			for k := 0; k < 15; k++ {
				a := ir.Identity(items[rng.Intn(len(items))])
				b := ir.Identity(items[rng.Intn(len(items))])
				if a == b {
					continue
				}
				mustRecord(t, s, string(a), string(b), rng.Intn(2) == 0)
				asked[ir.MakePair(a, b)] = true

				assertClosedAndConsistent(t, s)
				for p := range asked {
					require.True(t, s.Query(p.Low, p.High).Known(), "asked pair %s became unknown", p)
				}
			}
		})
	}
}

func TestClosure_FullChainIsComplete(t *testing.T) {
	items := names(10)
	s := newTestStore(t, items...)

	for i := 0; i+1 < len(items); i++ {
		mustRecord(t, s, items[i], items[i+1], true)
	}

	assert.True(t, s.Complete())
	assert.Equal(t, len(items)-1, s.ComparisonCount())
	assert.Len(t, s.Facts(), len(items)*(len(items)-1)/2)
	assertClosedAndConsistent(t, s)
}
