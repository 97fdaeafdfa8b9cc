package oracle

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/asksort/internal/ir"
)

// ErrConflictingAnswers is returned when an answers file states both
// directions of one pair.
var ErrConflictingAnswers = errors.New("conflicting answers")

// AnswerEntry is one line of an answers file.
type AnswerEntry struct {
	Better string `yaml:"better"`
	Worse  string `yaml:"worse"`
}

// AnswersFile is the YAML document read by LoadAnswers:
//
//	answers:
//	  - better: Apple
//	    worse: Banana
type AnswersFile struct {
	Answers []AnswerEntry `yaml:"answers"`
}

// LoadAnswers reads an answers file into a Table.
func LoadAnswers(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	t, err := ParseAnswers(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseAnswers decodes an answers document. Repeating an answer is allowed;
// stating both directions of a pair is ErrConflictingAnswers.
func ParseAnswers(data []byte) (*Table, error) {
	var f AnswersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return TableFromEntries(f.Answers)
}

// TableFromEntries builds a Table from answer entries, normalizing names
// the way input items are normalized.
func TableFromEntries(entries []AnswerEntry) (*Table, error) {
	t := NewTable()
	for i, e := range entries {
		better, worse := ir.NewIdentity(e.Better), ir.NewIdentity(e.Worse)
		if better == "" || worse == "" {
			return nil, fmt.Errorf("answer %d: better and worse are required", i+1)
		}
		if prev, ok := t.Lookup(better, worse); ok && prev != better {
			return nil, fmt.Errorf("answer %d: %s > %s after %s > %s: %w",
				i+1, better, worse, worse, better, ErrConflictingAnswers)
		}
		if err := t.Set(better, worse); err != nil {
			return nil, fmt.Errorf("answer %d: %w", i+1, err)
		}
	}
	return t, nil
}
