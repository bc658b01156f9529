package story

import (
	"fmt"

	"github.com/roach88/novella/internal/vars"
)

// DefaultTextSpeed is the base reveal delay in milliseconds per character.
const DefaultTextSpeed = 50

// DefaultStartScene is the entry scene used when a story does not name one.
const DefaultStartScene = "start"

// Story is the immutable document walked during playback.
type Story struct {
	Title string

	// TextSpeed is the base reveal delay in milliseconds per character.
	// Zero means DefaultTextSpeed.
	TextSpeed int

	// StartScene is the entry scene id. Empty means DefaultStartScene.
	StartScene string

	Scenes SceneMap
}

// New builds a story from scenes in the given order. Intended for tests and
// programmatic construction; documents are normally read with Load.
func New(title string, scenes ...*Scene) (*Story, error) {
	s := &Story{Title: title}
	for _, sc := range scenes {
		if err := s.Scenes.Add(sc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Entry returns the id of the scene playback starts at.
func (s *Story) Entry() string {
	if s.StartScene != "" {
		return s.StartScene
	}
	return DefaultStartScene
}

// BaseSpeed returns the configured base reveal delay in milliseconds.
func (s *Story) BaseSpeed() int {
	if s.TextSpeed > 0 {
		return s.TextSpeed
	}
	return DefaultTextSpeed
}

// Scene is a named, ordered sequence of events sharing a background.
type Scene struct {
	ID         string
	Background string
	Events     []Event
}

// SceneMap is an insertion-ordered map of scenes keyed by id.
type SceneMap struct {
	order []string
	byID  map[string]*Scene
}

// Add appends a scene. Duplicate ids are rejected.
func (m *SceneMap) Add(sc *Scene) error {
	if sc == nil || sc.ID == "" {
		return fmt.Errorf("scene id is required")
	}
	if m.byID == nil {
		m.byID = make(map[string]*Scene)
	}
	if _, dup := m.byID[sc.ID]; dup {
		return fmt.Errorf("duplicate scene id %q", sc.ID)
	}
	m.byID[sc.ID] = sc
	m.order = append(m.order, sc.ID)
	return nil
}

// Get looks up a scene by id.
func (m *SceneMap) Get(id string) (*Scene, bool) {
	sc, ok := m.byID[id]
	return sc, ok
}

// IDs returns scene ids in authoring order.
func (m *SceneMap) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of scenes.
func (m *SceneMap) Len() int {
	return len(m.order)
}

// Kind discriminates event variants. The string values match the document
// "type" field.
type Kind string

const (
	KindDialogue Kind = "dialogue"
	KindSystem   Kind = "system"
	KindChoice   Kind = "choice"
	KindEnd      Kind = "end"
)

// Event is one step of narrative playback. It is a closed sum type:
// only *Dialogue, *System, *Choice and *End implement it.
type Event interface {
	Kind() Kind

	// Base returns the fields shared by every kind.
	Base() *Common

	isEvent()
}

// Common carries the optional fields shared by every event kind.
type Common struct {
	// SE is a sound cue reference played when the event is dispatched.
	SE string

	// SetVar is applied when the event is dispatched.
	SetVar *SetVar

	// Condition gates dispatch; a false condition skips the event.
	Condition *vars.Condition
}

// Base implements Event for every kind that embeds Common.
func (c *Common) Base() *Common { return c }

// SetVar assigns Value to the variable Name. A string value of the form
// "+=N" or "-=N" performs arithmetic; see vars.Store.Set.
type SetVar struct {
	Name  string
	Value vars.Value
}

// Position is where a character portrait is shown.
type Position string

const (
	PositionLeft   Position = "left"
	PositionCenter Position = "center"
	PositionRight  Position = "right"
)

// ParsePosition validates a position. Empty means center.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case "":
		return PositionCenter, nil
	case PositionLeft, PositionCenter, PositionRight:
		return Position(s), nil
	}
	return "", fmt.Errorf("unknown character position %q", s)
}

// Dialogue is a spoken line.
type Dialogue struct {
	Common

	Character string

	// Text is a markup string (see package markup).
	Text string

	// NextSceneID, when set, jumps to that scene instead of the next event.
	NextSceneID string

	// CharacterImage controls the portrait: nil leaves portraits untouched,
	// a non-empty value shows Character with that image, and an empty
	// value hides Character (or every portrait when Character is empty).
	// In a document, an explicit null decodes as empty.
	CharacterImage *string

	CharacterPosition Position
}

func (*Dialogue) Kind() Kind { return KindDialogue }
func (*Dialogue) isEvent()   {}

// System is never shown; it exists only for its side effects.
type System struct {
	Common
}

func (*System) Kind() Kind { return KindSystem }
func (*System) isEvent()   {}

// Choice presents options and waits for a selection.
type Choice struct {
	Common
	Options []Option
}

func (*Choice) Kind() Kind { return KindChoice }
func (*Choice) isEvent()   {}

// Option is one selectable branch of a Choice.
type Option struct {
	Text        string
	NextSceneID string
	Condition   *vars.Condition
	SetVar      *SetVar
}

// End is a terminal message.
type End struct {
	Common

	// Message is a markup string.
	Message string
}

func (*End) Kind() Kind { return KindEnd }
func (*End) isEvent()   {}

// Line returns the speaker and markup text of a Dialogue or End event.
// ok is false for every other kind.
func Line(ev Event) (speaker, text string, ok bool) {
	switch e := ev.(type) {
	case *Dialogue:
		return e.Character, e.Text, true
	case *End:
		return "", e.Message, true
	}
	return "", "", false
}

// IsLine reports whether ev is a Dialogue or End event.
func IsLine(ev Event) bool {
	_, _, ok := Line(ev)
	return ok
}
