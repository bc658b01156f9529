package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/novella/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string                // Assertion type for categorization
	Expected string                // Human-readable expected outcome
	Actual   string                // Human-readable actual outcome
	History  []engine.HistoryEntry // Full history for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.History) > 0 {
		fmt.Fprintf(&buf, "\nHistory:\n")
		for _, h := range e.History {
			fmt.Fprintf(&buf, "  [%d] %s: %s\n", h.Seq, h.Character, h.Text)
		}
	}

	return buf.String()
}

// assertHistoryContains checks for an entry with the given text, spoken by
// the given character if one is named.
func assertHistoryContains(history []engine.HistoryEntry, a Assertion) error {
	for _, h := range history {
		if h.Text == a.Text && (a.Character == "" || h.Character == a.Character) {
			return nil
		}
	}

	expected := fmt.Sprintf("entry %q", a.Text)
	if a.Character != "" {
		expected = fmt.Sprintf("entry %q by %s", a.Text, a.Character)
	}
	return &AssertionError{
		Type:     AssertHistoryContains,
		Expected: expected,
		Actual:   "not found in history",
		History:  history,
	}
}

// assertHistoryOrder checks that texts appear in the specified order.
// Entries don't need to be consecutive.
func assertHistoryOrder(history []engine.HistoryEntry, a Assertion) error {
	pos := 0
	for _, want := range a.Texts {
		found := false
		for pos < len(history) {
			pos++
			if history[pos-1].Text == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertHistoryOrder,
				Expected: fmt.Sprintf("texts in order: %q", a.Texts),
				Actual:   fmt.Sprintf("%q missing or out of order", want),
				History:  history,
			}
		}
	}
	return nil
}

func assertHistoryCount(history []engine.HistoryEntry, a Assertion) error {
	if len(history) != a.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d entries", a.Count),
			Actual:   fmt.Sprintf("%d entries", len(history)),
			History:  history,
		}
	}
	return nil
}

// assertFinalState compares only the fields the assertion names.
// Variables compare by their string form, so 15 matches "15".
func assertFinalState(result *Result, a Assertion) error {
	want := a.Expect
	st := result.State

	fail := func(field string, expected, actual any) error {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %v", field, expected),
			Actual:   fmt.Sprintf("%s = %v", field, actual),
		}
	}

	if want.Scene != "" && want.Scene != st.SceneID {
		return fail("scene", want.Scene, st.SceneID)
	}
	if want.Index != nil && *want.Index != st.EventIndex {
		return fail("index", *want.Index, st.EventIndex)
	}
	if want.Phase != "" && want.Phase != st.Phase {
		return fail("phase", want.Phase, st.Phase)
	}
	if want.Dialogue != nil && *want.Dialogue != st.DialogueVisible {
		return fail("dialogue", *want.Dialogue, st.DialogueVisible)
	}

	for _, name := range want.Variables.Names() {
		expected := want.Variables[name]
		actual, ok := result.Variables[name]
		if !ok {
			return fail("variables."+name, expected, "<unset>")
		}
		if expected.String() != actual.String() {
			return fail("variables."+name, expected, actual)
		}
	}

	if want.Characters != nil {
		expected := append([]string(nil), want.Characters...)
		sort.Strings(expected)
		actual := result.Characters
		if actual == nil {
			actual = []string{}
		}
		if !reflect.DeepEqual(expected, actual) {
			return fail("characters", expected, actual)
		}
	}

	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	history := result.State.History

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertHistoryContains:
			err = assertHistoryContains(history, a)
		case AssertHistoryOrder:
			err = assertHistoryOrder(history, a)
		case AssertHistoryCount:
			err = assertHistoryCount(history, a)
		case AssertFinalState:
			err = assertFinalState(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errs
}
