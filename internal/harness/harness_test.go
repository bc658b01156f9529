package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return scenario
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"branch_golden", "save_load", "auto_play"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "auto_play")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, Snapshot(scenario, first), Snapshot(scenario, second))
}

func TestRun_UnexpectedError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yaml", minimalStory)
	scenario, err := ParseScenario([]byte(`
name: unexpected
story: s.yaml
flow:
  - input: start
  - input: choose
    choice: 0
`), dir)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flow[1] choose 0: unexpected error")
	assert.Equal(t, "NO_CHOICE", result.Transcript[1].Error)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yaml", minimalStory)
	scenario, err := ParseScenario([]byte(`
name: missing_error
story: s.yaml
flow:
  - input: start
    expect: {error: SCENE_NOT_FOUND}
`), dir)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error SCENE_NOT_FOUND, got success")
}

func TestRun_FailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yaml", minimalStory)
	scenario, err := ParseScenario([]byte(`
name: failing
story: s.yaml
flow:
  - input: start
assertions:
  - type: final_state
    expect: {phase: idle}
`), dir)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "phase = awaiting_advance")
}

func TestRun_TranscriptCapturesCallsPerStep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "s.yaml", `
textSpeed: 5
scenes:
  start:
    events:
      - {type: dialogue, character: A, text: ab, se: ping.ogg}
`)
	scenario, err := ParseScenario([]byte(`
name: calls
story: s.yaml
flow:
  - input: start
  - input: wait
    ms: 5
  - input: advance
`), dir)
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Transcript, 3)
	assert.Equal(t, []string{
		"se ping.ogg",
		"log A: ab",
		"hide_choices",
		"show_dialogue",
		"speaker A",
		"text a",
	}, result.Transcript[0].Calls)
	assert.Equal(t, []string{"text ab"}, result.Transcript[1].Calls)
	assert.Equal(t, []string{"hide_dialogue"}, result.Transcript[2].Calls)
	assert.Equal(t, "idle", result.State.Phase)
}

func TestRun_MissingStory(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Story: "testdata/stories/missing.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load story")
}
