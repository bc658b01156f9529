package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result as a plain-text transcript: every
// presenter call of every step, then the final state and history.
// The format is stable, so it can be stored as a golden file.
func Snapshot(scenario *Scenario, result *Result) []byte {
	var b strings.Builder

	session := scenario.Session
	if session == "" {
		session = "test-session"
	}
	fmt.Fprintf(&b, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&b, "session: %s\n", session)

	for _, entry := range result.Transcript {
		fmt.Fprintf(&b, "\n[%d] %s\n", entry.Step, entry.Input)
		for _, call := range entry.Calls {
			fmt.Fprintf(&b, "  %s\n", call)
		}
		if entry.Error != "" {
			fmt.Fprintf(&b, "  ! %s\n", entry.Error)
		}
	}

	st := result.State
	fmt.Fprintf(&b, "\nstate: scene=%s index=%d phase=%s dialogue=%t\n",
		st.SceneID, st.EventIndex, st.Phase, st.DialogueVisible)

	b.WriteString("variables:")
	if len(result.Variables) == 0 {
		b.WriteString(" (none)")
	}
	for _, name := range result.Variables.Names() {
		fmt.Fprintf(&b, " %s=%s", name, result.Variables[name].String())
	}
	b.WriteString("\n")

	b.WriteString("characters:")
	if len(result.Characters) == 0 {
		b.WriteString(" (none)")
	}
	for _, name := range result.Characters {
		fmt.Fprintf(&b, " %s", name)
	}
	b.WriteString("\n")

	b.WriteString("history:\n")
	for _, h := range st.History {
		fmt.Fprintf(&b, "  %d %s: %s\n", h.Seq, h.Character, h.Text)
	}

	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares the transcript against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the transcript doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario, result))
}

// GoldenPath returns the golden file for a scenario file: a golden/
// directory next to it, named after the scenario file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// WriteGolden stores the result's snapshot as the scenario file's golden.
func WriteGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Snapshot(scenario, result), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result matches the scenario file's
// golden. ok is false with a nil error when no golden file exists.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (match, ok bool, err error) {
	want, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return string(want) == string(Snapshot(scenario, result)), true, nil
}
