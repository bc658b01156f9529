// Package story defines the immutable story document played by the engine.
//
// A Story is an ordered map of Scenes; each Scene is an ordered sequence of
// Events. Event is a closed sum type over four kinds:
//
//   - Dialogue: a spoken line, optionally jumping to another scene
//   - System:   an invisible step carrying only side effects
//   - Choice:   a branching point with one or more options
//   - End:      a terminal message
//
// Every kind embeds Common, which carries the optional sound cue, variable
// assignment and guard condition.
//
// # Document formats
//
// Documents are accepted as JSON, YAML or CUE (see Load). All three share one
// shape:
//
//	title: "A Story"
//	textSpeed: 50
//	scenes:
//	  start:
//	    background: bg/room.png
//	    events:
//	      - type: dialogue
//	        character: Alice
//	        text: "Hello <speed:200>there</speed>."
//	      - type: choice
//	        options:
//	          - text: Leave
//	            nextSceneId: hall
//
// Optional fields may be omitted; absent fields are treated as not set.
package story
