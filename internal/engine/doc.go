// Package engine plays a branching story.
//
// The engine is the orchestrator: it moves a cursor (scene id, event index)
// through the story, filters events by condition, dispatches them by kind,
// drives the auto and skip playback modes, and coordinates the typewriter,
// the variable store and the save slot.
//
// ARCHITECTURE:
//
// Dispatch:
// ProcessCurrentEvent reads the event under the cursor and keeps going
// until the player is needed:
//  1. Condition skip-loop: events whose condition is false are passed over
//  2. Exhaustion: no event left hides the dialogue and stops skip mode
//  3. Skip mode passes over Dialogue/End and stops at a Choice
//  4. Side effects in order: sound effect, setVar, character image
//  5. By kind: Dialogue/End are typed out, System continues, Choice offers
//     its options
//
// Single-Writer Input Loop:
// All state is mutated on one goroutine. Run drains a FIFO queue of inputs
// (player actions and timer callbacks); other goroutines only Enqueue. The
// default scheduler posts the typewriter and auto-mode timers into the same
// queue, so a timer never races a player action.
//
// Termination:
// Each ProcessCurrentEvent call is bounded by a step quota (WithMaxSteps).
// Skip mode through a looping story would otherwise never return.
//
// Logical time:
// History entries carry a sequence number from a logical clock, never a
// wall-clock timestamp.
package engine
