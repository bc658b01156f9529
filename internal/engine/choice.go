package engine

import (
	"github.com/roach88/novella/internal/story"
)

// Choose selects the option at index in the current Choice event's
// authored option list.
//
// The selection is recorded in the history, the option's setVar applied,
// auto mode turned off, and playback continues at the option's scene. An
// option leading to a missing scene is still applied; the SceneNotFound
// error is returned after the engine has gone idle.
func (e *Engine) Choose(index int) error {
	ch, ok := e.CurrentEvent().(*story.Choice)
	if e.phase != PhaseChoosing || !ok {
		return &RuntimeError{
			Code:    ErrCodeNoChoice,
			Message: "no choice is pending",
			SceneID: e.sceneID,
		}
	}

	offered := false
	for _, v := range e.offered {
		if v.Index == index {
			offered = true
			break
		}
	}
	if !offered || index < 0 || index >= len(ch.Options) {
		return NewInvalidChoiceError(index, len(e.offered))
	}

	opt := ch.Options[index]
	e.logger.Info("option chosen", "scene", e.sceneID, "index", e.index, "option", index, "next", opt.NextSceneID)

	e.appendHistory(e.choiceSpeaker, opt.Text)
	if opt.SetVar != nil {
		e.setVar(opt.SetVar)
	}
	if e.auto {
		e.stopAuto()
	}

	e.presenter.HideChoices()
	e.offered = nil
	e.phase = PhaseIdle

	err := e.GotoScene(opt.NextSceneID)
	e.ProcessCurrentEvent()
	return err
}

// Offered returns the options currently selectable.
func (e *Engine) Offered() []ChoiceOption {
	out := make([]ChoiceOption, len(e.offered))
	for i, v := range e.offered {
		out[i] = ChoiceOption{Index: v.Index, Text: v.Text}
	}
	return out
}

// ChoiceOption is a selectable option: its authored index and label.
type ChoiceOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}
