package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/asksort/internal/engine"
	"github.com/roach88/asksort/internal/ir"
)

// DefaultMaxAttempts is the number of replies a strict Prompt accepts
// before giving up on a question.
const DefaultMaxAttempts = 3

var (
	colorItem  = lipgloss.Color("#7aa2f7") // Blue
	colorHint  = lipgloss.Color("#565f89") // Gray
	colorError = lipgloss.Color("#f7768e") // Red
)

// Prompt is an Oracle that asks a person:
//
//	Is Apple better than Banana? (y/n):
//
// It is not safe for concurrent use.
type Prompt struct {
	in          *bufio.Reader
	out         io.Writer
	strict      bool
	maxAttempts int

	itemStyle  lipgloss.Style
	hintStyle  lipgloss.Style
	errorStyle lipgloss.Style
}

// PromptOption configures a Prompt.
type PromptOption func(*Prompt)

// WithStrict makes the prompt re-ask on replies other than y/yes/n/no.
// The default is lenient: any reply other than y/yes means no.
func WithStrict(strict bool) PromptOption {
	return func(p *Prompt) {
		p.strict = strict
	}
}

// WithMaxAttempts sets how many invalid replies a strict prompt tolerates.
func WithMaxAttempts(n int) PromptOption {
	return func(p *Prompt) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithColor enables or disables styling. Styling is also dropped
// automatically when out is not a terminal.
func WithColor(color bool) PromptOption {
	return func(p *Prompt) {
		if !color {
			p.itemStyle = lipgloss.NewStyle()
			p.hintStyle = lipgloss.NewStyle()
			p.errorStyle = lipgloss.NewStyle()
		}
	}
}

// NewPrompt creates a Prompt reading replies from in and writing questions
// to out. A *bufio.Reader passed as in is used as is, so input already
// buffered by the caller is not lost.
func NewPrompt(in io.Reader, out io.Writer, opts ...PromptOption) *Prompt {
	r := lipgloss.NewRenderer(out)
	p := &Prompt{
		in:          bufio.NewReader(in),
		out:         out,
		maxAttempts: DefaultMaxAttempts,
		itemStyle:   r.NewStyle().Foreground(colorItem).Bold(true),
		hintStyle:   r.NewStyle().Foreground(colorHint),
		errorStyle:  r.NewStyle().Foreground(colorError),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ask implements engine.Oracle.
//
// The context is checked before every prompt; a read already blocked on
// the terminal is not interrupted.
func (p *Prompt) Ask(ctx context.Context, a, b ir.Identity) (bool, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		fmt.Fprintf(p.out, "Is %s better than %s? %s ",
			p.itemStyle.Render(a.String()),
			p.itemStyle.Render(b.String()),
			p.hintStyle.Render("(y/n):"),
		)

		reply, err := p.readLine()
		if err != nil {
			fmt.Fprintln(p.out)
			return false, err
		}

		answer, ok := ParseReply(reply)
		if ok || !p.strict {
			return answer, nil
		}
		if attempt >= p.maxAttempts {
			return false, fmt.Errorf("%d invalid replies to %s vs %s: %w",
				attempt, a, b, engine.ErrNoAnswer)
		}
		fmt.Fprintln(p.out, p.errorStyle.Render("Please answer y or n."))
	}
}

// readLine returns the next reply. A final line without a newline still
// counts; EOF with nothing read is ErrNoAnswer.
func (p *Prompt) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input closed: %w", engine.ErrNoAnswer)
		}
		return "", fmt.Errorf("read reply: %v: %w", err, engine.ErrNoAnswer)
	}
	return line, nil
}

// ParseReply interprets a prompt reply. ok is false when reply is not one
// of y, yes, n, no (case-insensitive, surrounding whitespace ignored); the
// returned answer is then false.
func ParseReply(reply string) (answer bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
