package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/novella/internal/engine"
	"github.com/roach88/novella/internal/vars"
)

func sampleResult() *Result {
	r := NewResult()
	r.State = engine.PlaybackState{
		SceneID:         "shop",
		EventIndex:      2,
		Phase:           "choosing",
		DialogueVisible: true,
		History: []engine.HistoryEntry{
			{Seq: 1, Character: "Alice", Text: "Hello"},
			{Seq: 2, Character: "Bob", Text: "Hi"},
			{Seq: 3, Character: "Choice", Text: "Buy"},
			{Seq: 4, Character: "Alice", Text: "Thanks"},
		},
	}
	r.Variables = vars.Map{"gold": vars.Num(15), "name": vars.Str("alice")}
	r.Characters = []string{"Alice", "Bob"}
	return r
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestHistoryContains(t *testing.T) {
	h := sampleResult().State.History

	assert.NoError(t, assertHistoryContains(h, Assertion{Text: "Hi"}))
	assert.NoError(t, assertHistoryContains(h, Assertion{Text: "Hi", Character: "Bob"}))

	err := assertHistoryContains(h, Assertion{Text: "Hi", Character: "Alice"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertHistoryContains, ae.Type)
	assert.Contains(t, err.Error(), `entry "Hi" by Alice`)
	assert.Contains(t, err.Error(), "[2] Bob: Hi")
}

func TestHistoryOrder(t *testing.T) {
	h := sampleResult().State.History

	assert.NoError(t, assertHistoryOrder(h, Assertion{Texts: []string{"Hello", "Buy"}}))
	assert.NoError(t, assertHistoryOrder(h, Assertion{Texts: []string{"Hello", "Hi", "Buy", "Thanks"}}))

	err := assertHistoryOrder(h, Assertion{Texts: []string{"Buy", "Hello"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Hello" missing or out of order`)

	err = assertHistoryOrder(h, Assertion{Texts: []string{"Nope"}})
	assert.Error(t, err)
}

func TestHistoryCount(t *testing.T) {
	h := sampleResult().State.History

	assert.NoError(t, assertHistoryCount(h, Assertion{Count: 4}))
	err := assertHistoryCount(h, Assertion{Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 entries")
	assert.Contains(t, err.Error(), "Actual: 4 entries")
}

func TestFinalState(t *testing.T) {
	r := sampleResult()

	tests := []struct {
		name    string
		expect  StateExpect
		wantErr string
	}{
		{"all fields", StateExpect{
			Scene:      "shop",
			Index:      intPtr(2),
			Phase:      "choosing",
			Dialogue:   boolPtr(true),
			Variables:  vars.Map{"gold": vars.Str("15"), "name": vars.Str("alice")},
			Characters: []string{"Bob", "Alice"},
		}, ""},
		{"empty expect", StateExpect{}, ""},
		{"index zero is checked", StateExpect{Index: intPtr(0)}, "index = 0"},
		{"scene", StateExpect{Scene: "start"}, "scene = start"},
		{"phase", StateExpect{Phase: "idle"}, "phase = idle"},
		{"dialogue", StateExpect{Dialogue: boolPtr(false)}, "dialogue = false"},
		{"variable value", StateExpect{Variables: vars.Map{"gold": vars.Num(20)}}, "variables.gold = 20"},
		{"unset variable", StateExpect{Variables: vars.Map{"flag": vars.Num(1)}}, "<unset>"},
		{"characters", StateExpect{Characters: []string{}}, "characters = []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expect := tt.expect
			err := assertFinalState(r, Assertion{Type: AssertFinalState, Expect: &expect})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	r := sampleResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertHistoryCount, Count: 4},
		{Type: AssertHistoryContains, Text: "missing"},
		{Type: "bogus"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}
