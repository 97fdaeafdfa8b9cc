package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/oracle"
)

const fruitAnswers = `answers:
  - {better: Apple, worse: Banana}
  - {better: Banana, worse: Carrot}
  - {better: Apple, worse: Carrot}
`

// writeFile writes content to name in dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and stdin, returning stdout and stderr.
func execute(cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// fruitJournal ranks Apple, Banana, Carrot into a new journal under the
// given session id and returns the journal path.
func fruitJournal(t *testing.T, sessionID string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asksort.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	e := engine.New(
		engine.WithRecorder(j),
		engine.WithSessionIDGenerator(engine.NewFixedGenerator(sessionID)),
	)
	_, err = e.Rank(context.Background(), ir.Identities("Apple", "Banana", "Carrot"),
		oracle.NewOrder(ir.Identities("Apple", "Banana", "Carrot")...))
	require.NoError(t, err)
	return path
}

// beginFruitSession opens an Apple/Banana session in j without recording
// any events.
func beginFruitSession(t *testing.T, j *journal.Journal, sessionID string) []ir.Identity {
	t.Helper()
	items := ir.Identities("Apple", "Banana")
	require.NoError(t, j.BeginSession(context.Background(), engine.Session{
		ID:            sessionID,
		Items:         items,
		Fingerprint:   ir.MustSessionFingerprint(items),
		EngineVersion: ir.EngineVersion,
	}))
	return items
}
