// Package harness runs playback scenarios against the engine.
//
// A scenario names a story, feeds the engine a fixed list of inputs and
// asserts on the resulting history and final state. Every call the engine
// makes on the presenter is captured per step, giving a transcript that
// can be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	story: stories/intro.yaml     # relative to the scenario file
//	presets: styles.yaml          # optional
//	variables: {gold: 10}         # optional starting variables
//	flow:
//	  - input: start
//	  - input: advance
//	  - input: choose
//	    choice: 1
//	    expect: {error: INVALID_CHOICE}
//	  - input: wait
//	    ms: 2000
//	assertions:
//	  - type: history_contains
//	    character: Alice
//	    text: "Hello"
//	  - type: final_state
//	    expect: {scene: s2, index: 0, phase: awaiting_advance}
//
// # Inputs
//
//   - start, advance, interact, auto, skip, save, load: the engine operation
//     of the same name
//   - choose: select the option with index `choice`
//   - wait: move virtual time forward by `ms` milliseconds
//   - settle: run pending timers until none are left (bounded)
//
// # Assertion Types
//
//   - history_contains: a history entry with this text (and character, if given)
//   - history_order: the given texts appear in this order
//   - history_count: the history has exactly `count` entries
//   - final_state: scene, index, phase, variables and on-stage characters
//
// # Deterministic Testing
//
// Scenarios run on a manual scheduler, so no wall-clock time passes and
// typing only progresses on `wait` and `settle`. The session token is fixed
// and the save slot lives in a fresh in-memory SQLite database, so two runs
// of the same scenario produce byte-identical transcripts.
package harness
