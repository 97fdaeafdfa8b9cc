package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal   string
	SessionID string // optional - latest session if empty
	List      bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded questions of a ranking session",
		Long: `Show what a journaled ranking session asked and inferred.

The output includes:
- Events: questions with their answers, inferred facts and contradictions,
  in the order they happened
- Result: the final order and the number of questions asked

Without --session the most recent session is shown.

Examples:
  asksort trace --journal asksort.db
  asksort trace --journal asksort.db --list
  asksort trace --journal asksort.db --session 0190a3c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session id to show")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions instead of showing one")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := openJournal(opts.Journal, opts.config().Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	if opts.List {
		return listSessions(ctx, opts, j, cmd.OutOrStdout())
	}

	trace, err := loadTrace(ctx, j, opts.SessionID)
	if errors.Is(err, journal.ErrNoSessions) {
		if opts.Format == "json" {
			return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: map[string]any{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in journal.")
		return nil
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{
			Status:    "ok",
			SessionID: trace.Session.ID,
			Data:      trace.CanonicalMap(),
		})
	}
	return outputTraceText(cmd.OutOrStdout(), trace, opts.Verbose)
}

// openJournal opens an existing journal: flagPath, else the configured
// path. It never creates one.
func openJournal(flagPath, configPath string) (*journal.Journal, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no journal: pass --journal or set journal in the config")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

// loadTrace reads one session, or the latest when id is empty.
// journal.ErrNoSessions is returned unwrapped for the caller to report.
func loadTrace(ctx context.Context, j *journal.Journal, id string) (*journal.Trace, error) {
	if id == "" {
		latest, err := j.LatestSession(ctx)
		if err != nil {
			if errors.Is(err, journal.ErrNoSessions) {
				return nil, err
			}
			return nil, WrapExitError(ExitCommandError, "failed to read sessions", err)
		}
		id = latest.ID
	}

	trace, err := j.ReadTrace(ctx, id)
	if errors.Is(err, journal.ErrSessionNotFound) {
		return nil, WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read trace", err)
	}
	return trace, nil
}

func listSessions(ctx context.Context, opts *TraceOptions, j *journal.Journal, w io.Writer) error {
	sessions, err := j.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	if opts.Format == "json" {
		return writeJSON(w, CLIResponse{Status: "ok", Data: sessions})
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %-9s  %d questions, %d inferred\n", s.ID, s.Status, s.Queries, s.Inferred)
	}
	return nil
}

// outputTraceText outputs the trace as text.
func outputTraceText(w io.Writer, trace *journal.Trace, verbose bool) error {
	fmt.Fprintf(w, "Trace for Session: %s\n", trace.Session.ID)
	fmt.Fprintf(w, "Status: %s\n", trace.Session.Status)
	if verbose {
		fmt.Fprintf(w, "Fingerprint: %s\n", trace.Session.Fingerprint)
		fmt.Fprintf(w, "Engine: %s (trace v%s)\n", trace.Session.EngineVersion, trace.Session.TraceVersion)
	}
	fmt.Fprintf(w, "Items: %s\n", joinIdentities(trace.Items))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Events ===")
	events := trace.Events()
	if len(events) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range events {
		formatEvent(w, ev, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Result ===")
	if !trace.Completed() {
		fmt.Fprintln(w, "  (session did not complete)")
	}
	for i, id := range trace.Order {
		fmt.Fprintf(w, "  %d. %s\n", i+1, id)
	}
	fmt.Fprintf(w, "Total comparisons asked: %d\n", len(trace.Questions))
	fmt.Fprintf(w, "Inferred: %d\n", trace.Session.Inferred)

	return nil
}

// formatEvent formats a single trace event for text output.
func formatEvent(w io.Writer, ev journal.Event, verbose bool) {
	switch ev.Kind {
	case journal.EventQuestion:
		q := ev.Question
		fmt.Fprintf(w, "  [%d] Q   Is %s better than %s? %s => %s\n",
			ev.Seq, q.A, q.B, yesNo(q.Answer), q.Judgment)

	case journal.EventInference:
		for _, f := range ev.Inference.Facts {
			fmt.Fprintf(w, "  [%d] INF %s (from judgment %d)\n", ev.Seq, f, f.Seq)
		}

	case journal.EventContradiction:
		c := ev.Contradiction.Contradiction
		fmt.Fprintf(w, "  [%d] !!  %s\n", ev.Seq, c)
		if verbose {
			for _, s := range c.Superseded {
				fmt.Fprintf(w, "          superseded: %s\n", s)
			}
			for _, r := range c.Retracted {
				fmt.Fprintf(w, "          retracted:  %s\n", r)
			}
		}
	}
}

func yesNo(answer bool) string {
	if answer {
		return "yes"
	}
	return "no"
}

func joinIdentities(ids []ir.Identity) string {
	return strings.Join(ir.Names(ids), ", ")
}
