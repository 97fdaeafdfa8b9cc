package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/oracle"
)

// createTestJournal creates a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

// rankInto runs one Apple/Banana/Carrot session recorded in j.
func rankInto(t *testing.T, j *Journal, sessionID string) *engine.Result {
	t.Helper()
	e := engine.New(
		engine.WithRecorder(j),
		engine.WithSessionIDGenerator(engine.NewFixedGenerator(sessionID)),
	)
	res, err := e.Rank(context.Background(),
		ir.Identities("Apple", "Banana", "Carrot"),
		oracle.NewOrder(ir.Identities("Apple", "Banana", "Carrot")...))
	require.NoError(t, err)
	return res
}
