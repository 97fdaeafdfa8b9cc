package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/asksort/internal/ir"
)

// GoldenDir is the directory, next to the scenario files, holding golden
// traces named {scenario-file-base}.golden.
const GoldenDir = "golden"

// Snapshot renders a run's trace as canonical JSON for golden comparison.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenario.Name,
		"trace":         result.Trace.CanonicalMap(),
	})
}

// GoldenPath returns the golden file for a scenario file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	return filepath.Join(dir, GoldenDir, goldenName(scenarioFile)+".golden")
}

func goldenName(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UpdateGolden writes snapshot as the golden file of scenarioFile.
func UpdateGolden(scenarioFile string, snapshot []byte) error {
	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, snapshot, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden compares snapshot with the golden file of scenarioFile.
// exists is false when there is no golden file; match is then false too.
func CompareGolden(scenarioFile string, snapshot []byte) (match, exists bool, err error) {
	golden, err := os.ReadFile(GoldenPath(scenarioFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, snapshot), true, nil
}

// RunWithGolden loads and runs a scenario file, then compares its trace
// against the golden file with goldie.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioFile string) (*Result, error) {
	t.Helper()

	scenario, err := LoadScenario(scenarioFile)
	if err != nil {
		return nil, err
	}

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join(filepath.Dir(scenarioFile), GoldenDir)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, goldenName(scenarioFile), snapshot)

	return result, nil
}
