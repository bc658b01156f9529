package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/novella/internal/vars"
)

// Scenario defines a playback scenario: a story, a list of inputs, and
// what should be true afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Story is the path of the story document to play.
	// Relative paths are resolved against the scenario file's directory.
	Story string `yaml:"story"`

	// Presets is an optional style preset file, resolved like Story.
	Presets string `yaml:"presets,omitempty"`

	// Variables seeds the variable store before the flow starts.
	Variables vars.Map `yaml:"variables,omitempty"`

	// Flow is the list of inputs fed to the engine, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the history and final state.
	Assertions []Assertion `yaml:"assertions"`

	// Session is an optional fixed session token.
	// If empty, defaults to "test-session".
	Session string `yaml:"session,omitempty"`
}

// Input names accepted in a flow step.
const (
	InputStart    = "start"
	InputAdvance  = "advance"
	InputInteract = "interact"
	InputAuto     = "auto"
	InputSkip     = "skip"
	InputChoose   = "choose"
	InputSave     = "save"
	InputLoad     = "load"
	InputWait     = "wait"
	InputSettle   = "settle"
)

// FlowStep is one input to the engine.
type FlowStep struct {
	// Input is the operation to perform.
	Input string `yaml:"input"`

	// Choice is the option index (used by choose).
	Choice *int `yaml:"choice,omitempty"`

	// Ms is the virtual time to advance (used by wait).
	Ms int `yaml:"ms,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must not fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Label renders the step for transcripts and error messages.
func (s FlowStep) Label() string {
	switch s.Input {
	case InputChoose:
		if s.Choice != nil {
			return fmt.Sprintf("choose %d", *s.Choice)
		}
	case InputWait:
		return fmt.Sprintf("wait %dms", s.Ms)
	}
	return s.Input
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code (e.g. "INVALID_CHOICE",
	// "NO_SAVE_DATA"). Empty means the step must succeed.
	Error string `yaml:"error"`
}

// Assertion validates history or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "history_contains": a history entry with Text (and Character)
	// - "history_order": Texts appear in order
	// - "history_count": exactly Count entries
	// - "final_state": compare Expect against the final state
	Type string `yaml:"type"`

	// Character restricts history_contains to one speaker.
	Character string `yaml:"character,omitempty"`

	// Text is the expected history text (used by history_contains).
	Text string `yaml:"text,omitempty"`

	// Texts is the expected text order (used by history_order).
	Texts []string `yaml:"texts,omitempty"`

	// Count is the expected number of entries (used by history_count).
	Count int `yaml:"count,omitempty"`

	// Expect contains expected state fields (used by final_state).
	// Only the fields given are checked.
	Expect *StateExpect `yaml:"expect,omitempty"`
}

// StateExpect is a partial description of the final engine state.
type StateExpect struct {
	Scene      string   `yaml:"scene,omitempty"`
	Index      *int     `yaml:"index,omitempty"`
	Phase      string   `yaml:"phase,omitempty"`
	Variables  vars.Map `yaml:"variables,omitempty"`
	Characters []string `yaml:"characters,omitempty"`
	Dialogue   *bool    `yaml:"dialogue,omitempty"`
}

// Assertion type constants.
const (
	AssertHistoryContains = "history_contains"
	AssertHistoryOrder    = "history_order"
	AssertHistoryCount    = "history_count"
	AssertFinalState      = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving story and preset paths
// relative to baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Story = resolve(baseDir, scenario.Story)
	scenario.Presets = resolve(baseDir, scenario.Presets)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Story == "" {
		return fmt.Errorf("story is required")
	}
	if _, err := os.Stat(s.Story); os.IsNotExist(err) {
		return fmt.Errorf("story file not found: %s", s.Story)
	}
	if s.Presets != "" {
		if _, err := os.Stat(s.Presets); os.IsNotExist(err) {
			return fmt.Errorf("presets file not found: %s", s.Presets)
		}
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *FlowStep) error {
	switch s.Input {
	case InputStart, InputAdvance, InputInteract, InputAuto, InputSkip,
		InputSave, InputLoad, InputSettle:
	case InputChoose:
		if s.Choice == nil {
			return fmt.Errorf("flow[%d]: choice is required for choose", index)
		}
	case InputWait:
		if s.Ms <= 0 {
			return fmt.Errorf("flow[%d]: ms must be positive for wait", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: input is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown input %q", index, s.Input)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertHistoryContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for history_contains", index)
		}
	case AssertHistoryOrder:
		if len(a.Texts) == 0 {
			return fmt.Errorf("assertions[%d]: texts list is required for history_order", index)
		}
	case AssertHistoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	case AssertFinalState:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
