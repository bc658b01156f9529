package engine

import (
	"github.com/roach88/novella/internal/vars"
)

// Phase is the engine's interaction state.
type Phase int

const (
	// PhaseIdle: no dialogue waiting; before Start or after content ran out.
	PhaseIdle Phase = iota
	// PhaseAwaitingAdvance: a line is shown (or typing) and waits for input.
	PhaseAwaitingAdvance
	// PhaseChoosing: options are shown and wait for a selection.
	PhaseChoosing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingAdvance:
		return "awaiting_advance"
	case PhaseChoosing:
		return "choosing"
	}
	return "unknown"
}

// HistoryEntry is one line in the dialogue backlog.
type HistoryEntry struct {
	// Seq orders entries within a session (logical clock, starts at 1).
	Seq       int64  `json:"seq"`
	Character string `json:"character"`
	Text      string `json:"text"`
}

// PlaybackState is a snapshot of the engine's state.
type PlaybackState struct {
	SceneID         string         `json:"sceneId"`
	EventIndex      int            `json:"eventIndex"`
	Phase           string         `json:"phase"`
	AutoPlaying     bool           `json:"autoPlaying"`
	Skipping        bool           `json:"skipping"`
	Typing          bool           `json:"typing"`
	DialogueVisible bool           `json:"dialogueVisible"`
	History         []HistoryEntry `json:"history"`
}

// Phase returns the current interaction state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// AutoMode reports whether auto mode is on.
func (e *Engine) AutoMode() bool {
	return e.auto
}

// SkipMode reports whether skip mode is on.
func (e *Engine) SkipMode() bool {
	return e.skip
}

// Typing reports whether the current line is still being revealed.
func (e *Engine) Typing() bool {
	return e.tw.Typing()
}

// DialogueVisible reports whether the dialogue box is shown.
func (e *Engine) DialogueVisible() bool {
	return e.dialogueVisible
}

// History returns a copy of the dialogue backlog.
func (e *Engine) History() []HistoryEntry {
	return append([]HistoryEntry(nil), e.history...)
}

// Variables returns a copy of the variable store.
func (e *Engine) Variables() vars.Map {
	return e.vars.Snapshot()
}

// State returns a snapshot of the playback state.
func (e *Engine) State() PlaybackState {
	return PlaybackState{
		SceneID:         e.sceneID,
		EventIndex:      e.index,
		Phase:           e.phase.String(),
		AutoPlaying:     e.auto,
		Skipping:        e.skip,
		Typing:          e.tw.Typing(),
		DialogueVisible: e.dialogueVisible,
		History:         e.History(),
	}
}
