package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/oracle"
	"github.com/roach88/asksort/internal/preference"
)

// RankOptions holds flags for the rank command.
type RankOptions struct {
	*RootOptions
	File       string
	Answers    string
	Journal    string
	Strict     bool
	MaxQueries int

	// SessionGen allows overriding the session id generator (for testing).
	// If nil, the engine uses UUIDv7.
	SessionGen engine.SessionIDGenerator
}

// RankOutput is the JSON payload of a successful ranking.
type RankOutput struct {
	SessionID      string                     `json:"session_id"`
	Order          []string                   `json:"order"`
	Queries        int                        `json:"queries"`
	Inferred       int                        `json:"inferred"`
	Contradictions []preference.Contradiction `json:"contradictions"`
}

// NewRankCommand creates the rank command.
func NewRankCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RankOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank items by answering pairwise questions",
		Long: `Rank items by answering "Is A better than B?" questions.

Items are read from --file, one per line, or pasted on standard input and
ended by an empty line. Answers come from the terminal, or from a YAML
answers file with --answers.

Exit codes:
  0 - Ranking complete
  1 - Ranking failed (no answer, question budget exhausted, duplicate items)
  2 - Command error (input file not found, journal cannot be opened)

Examples:
  asksort rank --file snacks.txt
  asksort rank --file snacks.txt --journal asksort.db --strict
  asksort rank --file snacks.txt --answers answers.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(opts, cmd)
		},
	}

	addRankFlags(cmd, opts)

	return cmd
}

func addRankFlags(cmd *cobra.Command, opts *RankOptions) {
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read items from a file, one per line")
	cmd.Flags().StringVar(&opts.Answers, "answers", "", "answer questions from a YAML answers file")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the session in a SQLite journal")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "re-ask until the reply is y or n")
	cmd.Flags().IntVar(&opts.MaxQueries, "max-queries", 0, "give up after this many questions (0 = unlimited)")
}

// resolve applies config values for every option left unset: a flag given
// on the command line always wins.
func (o *RankOptions) resolve(cmd *cobra.Command) {
	cfg := o.config()
	if !cmd.Flags().Changed("journal") && o.Journal == "" {
		o.Journal = cfg.Journal
	}
	if !cmd.Flags().Changed("strict") && !o.Strict {
		o.Strict = cfg.Strict
	}
	if !cmd.Flags().Changed("max-queries") && o.MaxQueries == 0 {
		o.MaxQueries = cfg.MaxQueries
	}
}

func runRank(opts *RankOptions, cmd *cobra.Command) error {
	opts.resolve(cmd)
	cfg := opts.config()

	// Questions share the terminal with the ranked list in text mode; in
	// JSON mode they move to stderr so stdout stays parseable.
	promptOut := cmd.OutOrStdout()
	if opts.Format == "json" {
		promptOut = cmd.ErrOrStderr()
	}
	in := bufio.NewReader(cmd.InOrStdin())

	names, err := readItems(opts, in, promptOut)
	if err != nil {
		if errors.Is(err, ErrInputFileNotFound) {
			return WrapExitError(ExitCommandError, "input file not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to read items", err)
	}
	opts.verbosef(cmd.ErrOrStderr(), "read %d items", len(names))

	var o engine.Oracle
	if opts.Answers != "" {
		table, err := oracle.LoadAnswers(opts.Answers)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load answers", err)
		}
		opts.verbosef(cmd.ErrOrStderr(), "loaded %d answers from %s", table.Len(), opts.Answers)
		o = table
	} else {
		o = oracle.NewPrompt(in, promptOut,
			oracle.WithStrict(opts.Strict),
			oracle.WithMaxAttempts(cfg.MaxAttempts),
			oracle.WithColor(cfg.Color),
		)
	}

	engineOpts := []engine.EngineOption{
		engine.WithLogger(opts.logger(cmd.ErrOrStderr())),
		engine.WithMaxQueries(opts.MaxQueries),
	}
	if opts.SessionGen != nil {
		engineOpts = append(engineOpts, engine.WithSessionIDGenerator(opts.SessionGen))
	}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()
		engineOpts = append(engineOpts, engine.WithRecorder(j))
		opts.verbosef(cmd.ErrOrStderr(), "journaling to %s", opts.Journal)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt)
	defer stop()

	res, err := engine.New(engineOpts...).Rank(ctx, ir.Identities(names...), o)
	if err != nil {
		return rankFailure(cmd.OutOrStdout(), opts.Format, err)
	}

	if opts.Format == "json" {
		return outputRankJSON(cmd.OutOrStdout(), res)
	}
	return outputRankText(cmd.OutOrStdout(), res)
}

// readItems reads names from --file, or pasted on in.
func readItems(opts *RankOptions, in *bufio.Reader, promptOut io.Writer) ([]string, error) {
	if opts.File != "" {
		return ReadItemsFile(opts.File)
	}
	fmt.Fprintln(promptOut, "Enter the items, one per line. Enter an empty line when done:")
	return ReadPasted(in)
}

// rankFailure reports a ranking error and converts it to exit code 1.
func rankFailure(w io.Writer, format string, err error) error {
	if format == "json" {
		code, message, details := "E_RANK", err.Error(), interface{}(nil)
		var re *engine.RankError
		if errors.As(err, &re) {
			code, message, details = string(re.Code), re.Message, re.Details
		}
		if encErr := writeError(w, code, message, details); encErr != nil {
			return encErr
		}
	}

	switch {
	case engine.IsDuplicateError(err):
		return WrapExitError(ExitFailure, "duplicate items", err)
	case engine.IsNoAnswerError(err):
		return WrapExitError(ExitFailure, "no answer", err)
	case engine.IsBudgetError(err):
		return WrapExitError(ExitFailure, "question budget exhausted", err)
	default:
		return WrapExitError(ExitFailure, "ranking failed", err)
	}
}

func outputRankJSON(w io.Writer, res *engine.Result) error {
	contradictions := res.Contradictions
	if contradictions == nil {
		contradictions = []preference.Contradiction{}
	}
	return writeJSON(w, CLIResponse{
		Status:    "ok",
		SessionID: res.SessionID,
		Data: RankOutput{
			SessionID:      res.SessionID,
			Order:          ir.Names(res.Order),
			Queries:        res.Queries,
			Inferred:       res.Inferred,
			Contradictions: contradictions,
		},
	})
}

func outputRankText(w io.Writer, res *engine.Result) error {
	fmt.Fprintln(w, "Sorted items based on your preferences:")
	for i, id := range res.Order {
		fmt.Fprintf(w, "%d. %s\n", i+1, id)
	}
	fmt.Fprintf(w, "Total comparisons asked: %d\n", res.Queries)
	return nil
}
