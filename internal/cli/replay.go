package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/oracle"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal   string
	SessionID string // optional - latest session if empty
}

// ReplayResult holds the replay result for one session.
type ReplayResult struct {
	SessionID     string   `json:"session_id"`
	Order         []string `json:"order"`
	Queries       int      `json:"queries"`
	Deterministic bool     `json:"deterministic"`

	// Mismatch describes the first difference when not deterministic.
	Mismatch string `json:"mismatch,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-rank a journaled session and verify determinism",
		Long: `Re-rank the items of a journaled session, feeding the recorded answers
back in the order they were given, and verify that the same questions are
asked and the same order comes out.

The replay runs against an in-memory journal; the journal on disk is only
read.

Exit codes:
  0 - Replay is identical to the recorded session
  1 - Replay diverged
  2 - Command error (journal or session not found, session incomplete)

Examples:
  asksort replay --journal asksort.db
  asksort replay --journal asksort.db --session 0190a3c4-...
  asksort replay --journal asksort.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id to replay")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := openJournal(opts.Journal, opts.config().Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	recorded, err := loadTrace(ctx, j, opts.SessionID)
	if errors.Is(err, journal.ErrNoSessions) {
		return NewExitError(ExitCommandError, "no sessions found in journal")
	}
	if err != nil {
		return err
	}
	if !recorded.Completed() {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("session %s did not complete and cannot be replayed", recorded.Session.ID))
	}

	result, err := replaySession(ctx, recorded, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd.OutOrStdout(), result)
	}
	return outputReplayText(cmd.OutOrStdout(), result, opts.Verbose)
}

// replaySession re-ranks recorded.Items with its recorded answers into an
// in-memory journal under the same session id, then compares the two
// traces in canonical form.
func replaySession(ctx context.Context, recorded *journal.Trace, logger *slog.Logger) (ReplayResult, error) {
	mem, err := journal.Open(":memory:")
	if err != nil {
		return ReplayResult{}, fmt.Errorf("open replay journal: %w", err)
	}
	defer mem.Close()

	e := engine.New(
		engine.WithLogger(logger),
		engine.WithRecorder(mem),
		engine.WithSessionIDGenerator(engine.NewFixedGenerator(recorded.Session.ID)),
	)

	result := ReplayResult{SessionID: recorded.Session.ID}

	res, rankErr := e.Rank(ctx, recorded.Items, oracle.NewSequence(recorded.Answers()...))
	if rankErr != nil && !engine.IsNoAnswerError(rankErr) {
		return ReplayResult{}, rankErr
	}
	if res != nil {
		result.Order = ir.Names(res.Order)
		result.Queries = res.Queries
	}

	replayed, err := mem.ReadTrace(ctx, recorded.Session.ID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("read replayed trace: %w", err)
	}
	if rankErr != nil {
		// The replay asked more questions than were recorded.
		result.Queries = len(replayed.Questions)
	}

	mismatch, err := compareTraces(recorded, replayed)
	if err != nil {
		return ReplayResult{}, err
	}
	result.Deterministic = mismatch == ""
	result.Mismatch = mismatch
	return result, nil
}

// compareTraces returns "" when both traces are identical in canonical
// form, or a description of the first difference.
func compareTraces(recorded, replayed *journal.Trace) (string, error) {
	want, err := ir.MarshalCanonical(recorded.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal recorded trace: %w", err)
	}
	got, err := ir.MarshalCanonical(replayed.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal replayed trace: %w", err)
	}
	if bytes.Equal(want, got) {
		return "", nil
	}

	if recorded.Session.Fingerprint != replayed.Session.Fingerprint {
		return "input fingerprint differs", nil
	}
	for i := range min(len(recorded.Questions), len(replayed.Questions)) {
		a, b := recorded.Questions[i], replayed.Questions[i]
		if a.A != b.A || a.B != b.B {
			return fmt.Sprintf("question %d: recorded %s vs %s, replayed %s vs %s",
				i+1, a.A, a.B, b.A, b.B), nil
		}
	}
	if len(recorded.Questions) != len(replayed.Questions) {
		return fmt.Sprintf("recorded %d questions, replayed %d",
			len(recorded.Questions), len(replayed.Questions)), nil
	}
	return "trace differs", nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(w io.Writer, result ReplayResult) error {
	response := CLIResponse{
		Status:    "ok",
		SessionID: result.SessionID,
		Data:      result,
	}

	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := writeJSON(w, response); err != nil {
		return err
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) error {
	fmt.Fprintf(w, "Replay of Session: %s\n", result.SessionID)
	fmt.Fprintf(w, "  Questions: %d\n", result.Queries)
	if verbose {
		for i, name := range result.Order {
			fmt.Fprintf(w, "  %d. %s\n", i+1, name)
		}
	}
	fmt.Fprintln(w)

	if result.Deterministic {
		fmt.Fprintln(w, "✓ Replay matches the recorded session")
		return nil
	}

	fmt.Fprintf(w, "✗ Replay diverged: %s\n", result.Mismatch)
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
