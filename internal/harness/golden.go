package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/recordselect/internal/ir"
)

// toCanonicalMap converts step results to a map[string]any for canonical
// JSON serialization. Error messages are left out: only the code is stable
// across backends.
func toCanonicalMap(scenarioName string, steps []StepResult) map[string]any {
	stepList := make([]any, len(steps))
	for i, sr := range steps {
		records := make([]any, len(sr.Records))
		for j, rec := range sr.Records {
			records[j] = rec
		}
		ids := sr.IDs
		if ids == nil {
			ids = []string{}
		}
		stepMap := map[string]any{
			"name":    sr.Name,
			"op":      sr.Op,
			"type":    sr.Type,
			"ids":     ids,
			"records": records,
		}
		if sr.Error != "" {
			stepMap["error"] = sr.Error
		}
		stepList[i] = stepMap
	}

	return map[string]any{
		"scenario_name": scenarioName,
		"steps":         stepList,
	}
}

// Snapshot renders step results as canonical JSON.
// Two backends agree on a scenario when their snapshots are byte-identical.
func Snapshot(scenarioName string, steps []StepResult) ([]byte, error) {
	return ir.MarshalCanonical(toCanonicalMap(scenarioName, steps))
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.Steps)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
