package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/asksort/internal/ir"
	"github.com/roach88/asksort/internal/oracle"
)

// Scenario kinds.
const (
	// KindRank runs the ranking engine over Items against Oracle.
	KindRank = "rank"

	// KindJudgments records Judgments directly into a preference store,
	// in order. It is the only way to drive contradictions, since the
	// engine never asks about a pair the store already knows.
	KindJudgments = "judgments"
)

// Scenario defines one harness run: the items to rank, where answers come
// from, and what the resulting trace must show.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kind is KindRank (default) or KindJudgments.
	Kind string `yaml:"kind,omitempty"`

	// Items are the input identities, in input order.
	Items []string `yaml:"items"`

	// Oracle configures the scripted oracle for KindRank.
	Oracle *OracleSpec `yaml:"oracle,omitempty"`

	// Judgments are the direct judgments recorded by KindJudgments.
	Judgments []oracle.AnswerEntry `yaml:"judgments,omitempty"`

	// MaxQueries caps oracle questions; zero means unlimited.
	MaxQueries int `yaml:"max_queries,omitempty"`

	// Assertions validate the run.
	Assertions []Assertion `yaml:"assertions"`
}

// OracleSpec selects and scripts one of the package oracle answer sources.
type OracleSpec struct {
	// Mode is "table", "sequence" or "order".
	Mode string `yaml:"mode"`

	// Answers backs mode table.
	Answers []oracle.AnswerEntry `yaml:"answers,omitempty"`

	// Sequence backs mode sequence.
	Sequence []bool `yaml:"sequence,omitempty"`

	// Order backs mode order, most preferred first.
	Order []string `yaml:"order,omitempty"`
}

// Oracle modes.
const (
	OracleTable    = "table"
	OracleSequence = "sequence"
	OracleOrder    = "order"
)

// Assertion validates one property of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "order": final order equals Expect
	// - "queries": oracle was asked exactly Count times
	// - "queries_at_most": oracle was asked at most Count times
	// - "inferred": Count facts were inferred
	// - "contradictions": Count contradictions were recovered
	// - "asked": the unordered Pair was put to the oracle
	// - "never_asked": the unordered Pair was never put to the oracle
	// - "relation": the store relates Pair[0] to Pair[1] as Relation
	// - "error": the run failed with RankError code Code
	Type string `yaml:"type"`

	Expect   []string `yaml:"expect,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Pair     []string `yaml:"pair,omitempty"`
	Relation string   `yaml:"relation,omitempty"`
	Code     string   `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertOrder          = "order"
	AssertQueries        = "queries"
	AssertQueriesAtMost  = "queries_at_most"
	AssertInferred       = "inferred"
	AssertContradictions = "contradictions"
	AssertAsked          = "asked"
	AssertNeverAsked     = "never_asked"
	AssertRelation       = "relation"
	AssertError          = "error"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario schema-checks and parses a scenario document. filename is
// used in error positions only.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := validateSchema(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Kind == "" {
		scenario.Kind = KindRank
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks what the schema cannot express: references to
// items that are not in the scenario.
func validateScenario(s *Scenario) error {
	known := make(map[ir.Identity]bool, len(s.Items))
	for _, item := range s.Items {
		known[ir.NewIdentity(item)] = true
	}
	check := func(where, name string) error {
		if !known[ir.NewIdentity(name)] {
			return fmt.Errorf("%s: %q is not an item", where, name)
		}
		return nil
	}

	for i, j := range s.Judgments {
		if err := check(fmt.Sprintf("judgments[%d].better", i), j.Better); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("judgments[%d].worse", i), j.Worse); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		for _, name := range a.Pair {
			if err := check(fmt.Sprintf("assertions[%d].pair", i), name); err != nil {
				return err
			}
		}
		if a.Type == AssertOrder {
			for _, name := range a.Expect {
				if err := check(fmt.Sprintf("assertions[%d].expect", i), name); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
