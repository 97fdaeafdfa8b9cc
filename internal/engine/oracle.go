package engine

import (
	"context"

	"github.com/roach88/asksort/internal/ir"
)

// Oracle answers pairwise preference questions.
//
// Ask reports whether a is preferred over b. It may block (a human at a
// prompt). An Oracle that cannot answer returns an error wrapping
// ErrNoAnswer; the engine propagates it and never guesses.
type Oracle interface {
	Ask(ctx context.Context, a, b ir.Identity) (bool, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, a, b ir.Identity) (bool, error)

// Ask calls f(ctx, a, b).
func (f OracleFunc) Ask(ctx context.Context, a, b ir.Identity) (bool, error) {
	return f(ctx, a, b)
}
