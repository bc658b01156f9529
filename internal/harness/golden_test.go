package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Branch(t *testing.T) {
	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden_Branch -update
	result, err := RunWithGolden(t, loadTestScenario(t, "branch_golden"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_Format(t *testing.T) {
	scenario := &Scenario{Name: "fmt", Session: "s-1"}
	result := NewResult()
	result.AddStep(TranscriptEntry{Step: 0, Input: "start", Calls: []string{"show_dialogue"}})
	result.AddStep(TranscriptEntry{Step: 1, Input: "load", Calls: []string{}, Error: "NO_SAVE_DATA"})
	result.State.SceneID = "start"
	result.State.Phase = "idle"

	want := "scenario: fmt\n" +
		"session: s-1\n" +
		"\n[0] start\n" +
		"  show_dialogue\n" +
		"\n[1] load\n" +
		"  ! NO_SAVE_DATA\n" +
		"\nstate: scene=start index=0 phase=idle dialogue=false\n" +
		"variables: (none)\n" +
		"characters: (none)\n" +
		"history:\n"
	assert.Equal(t, want, string(Snapshot(scenario, result)))
}

func TestWriteAndCompareGolden(t *testing.T) {
	dir := t.TempDir()
	scenarioFile := filepath.Join(dir, "branch.yaml")
	scenario := loadTestScenario(t, "branch_golden")

	result, err := Run(scenario)
	require.NoError(t, err)

	_, ok, err := CompareGolden(scenarioFile, scenario, result)
	require.NoError(t, err)
	assert.False(t, ok, "no golden yet")

	require.NoError(t, WriteGolden(scenarioFile, scenario, result))
	assert.FileExists(t, filepath.Join(dir, "golden", "branch.golden"))

	match, ok, err := CompareGolden(scenarioFile, scenario, result)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, match)

	require.NoError(t, os.WriteFile(GoldenPath(scenarioFile), []byte("stale"), 0o644))
	match, _, err = CompareGolden(scenarioFile, scenario, result)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestGoldenMatchesCheckedInFile(t *testing.T) {
	scenario := loadTestScenario(t, "branch_golden")
	result, err := Run(scenario)
	require.NoError(t, err)

	want, err := os.ReadFile("testdata/golden/branch_golden.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(Snapshot(scenario, result)))
}
