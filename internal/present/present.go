// Package present defines the presentation surface the engine drives.
//
// Every method is a one-way notification: the engine never reads state back
// from a Presenter. Implementations are called from the engine's loop
// goroutine only and need no locking of their own.
package present

import (
	"github.com/roach88/novella/internal/story"
)

// ChoiceView is one selectable option as offered to the player.
type ChoiceView struct {
	// Index is the option's position in the authored option list. It is the
	// value to pass back to engine.Choose.
	Index int
	Text  string
}

// Presenter receives presentation requests from the engine.
type Presenter interface {
	ShowDialogueBox()
	HideDialogueBox()
	SetSpeaker(name string)
	// RenderText replaces the visible dialogue text. text may contain inline
	// tags and entities.
	RenderText(text string)

	ShowCharacter(name, image string, pos story.Position)
	HideCharacter(name string)
	ClearCharacters()

	ShowChoices(choices []ChoiceView)
	HideChoices()

	// AppendLog records a line in the visible backlog.
	AppendLog(speaker, text string)
	SetBackground(ref string)
}

// Audio plays sound effects. Errors are reported to the caller, which logs
// and drops them.
type Audio interface {
	PlaySE(ref string) error
}

// Nop is a Presenter and Audio that discards everything.
type Nop struct{}

var (
	_ Presenter = Nop{}
	_ Audio     = Nop{}
)

func (Nop) ShowDialogueBox()                             {}
func (Nop) HideDialogueBox()                             {}
func (Nop) SetSpeaker(string)                            {}
func (Nop) RenderText(string)                            {}
func (Nop) ShowCharacter(string, string, story.Position) {}
func (Nop) HideCharacter(string)                         {}
func (Nop) ClearCharacters()                             {}
func (Nop) ShowChoices([]ChoiceView)                     {}
func (Nop) HideChoices()                                 {}
func (Nop) AppendLog(string, string)                     {}
func (Nop) SetBackground(string)                         {}
func (Nop) PlaySE(string) error                          { return nil }
