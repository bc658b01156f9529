package engine

import (
	"github.com/roach88/novella/internal/markup"
	"github.com/roach88/novella/internal/present"
	"github.com/roach88/novella/internal/story"
)

// Start moves to the entry scene and dispatches its first event.
func (e *Engine) Start() {
	e.logger.Info("playback starting", "scene", e.story.Entry())
	_ = e.GotoScene(e.story.Entry())
	e.ProcessCurrentEvent()
}

// ProcessCurrentEvent dispatches the event under the cursor.
//
// Events whose condition is false are skipped. System events and, in skip
// mode, Dialogue and End events are passed over in the same call, so one
// call runs until something needs the player (a line or a choice) or the
// scene runs out. The chain is bounded by the step quota.
func (e *Engine) ProcessCurrentEvent() {
	e.quota.Reset()

	for {
		if err := e.quota.Check(e.session); err != nil {
			e.logger.Error("dispatch halted", "scene", e.sceneID, "index", e.index, "error", err)
			e.halt()
			return
		}

		ev, err := e.selectEvent()
		if err != nil {
			e.logger.Warn("nothing to display", "error", err)
			e.halt()
			return
		}
		if ev == nil {
			e.logger.Debug("scene exhausted", "scene", e.sceneID, "index", e.index)
			e.halt()
			return
		}

		if e.skip {
			switch ev.(type) {
			case *story.Dialogue, *story.End:
				e.logger.Debug("skipped line", "scene", e.sceneID, "index", e.index)
				e.moveOn(ev)
				continue
			case *story.Choice:
				e.setSkip(false)
			}
		}

		e.logger.Debug("dispatching event", "scene", e.sceneID, "index", e.index, "kind", ev.Kind())
		e.applySideEffects(ev)

		switch ev := ev.(type) {
		case *story.Dialogue:
			e.showLine(ev)
			return
		case *story.End:
			e.showLine(ev)
			return
		case *story.System:
			e.Advance()
		case *story.Choice:
			e.offerChoices(ev)
			return
		}
	}
}

// selectEvent runs the condition skip-loop and returns the first event whose
// condition holds, or nil if the scene runs out first.
func (e *Engine) selectEvent() (story.Event, error) {
	sc, err := e.CurrentScene()
	if err != nil {
		return nil, err
	}
	for e.index < len(sc.Events) {
		ev := sc.Events[e.index]
		if e.conditionHolds(ev.Base()) {
			return ev, nil
		}
		e.Advance()
	}
	return nil, nil
}

func (e *Engine) conditionHolds(c *story.Common) bool {
	ok, err := e.vars.Check(c.Condition)
	if err != nil {
		e.logger.Debug("malformed condition", "condition", c.Condition.String(), "error", err)
	}
	return ok
}

// halt hides the dialogue and leaves the engine idle.
func (e *Engine) halt() {
	e.presenter.HideDialogueBox()
	e.dialogueVisible = false
	e.phase = PhaseIdle
	if e.skip {
		e.setSkip(false)
	}
}

// moveOn steps past a line: to its nextSceneId if it has one, otherwise
// to the next event.
func (e *Engine) moveOn(ev story.Event) {
	if d, ok := ev.(*story.Dialogue); ok && d.NextSceneID != "" {
		e.presenter.ClearCharacters()
		_ = e.GotoScene(d.NextSceneID)
		return
	}
	e.Advance()
}

func (e *Engine) applySideEffects(ev story.Event) {
	b := ev.Base()

	if b.SE != "" {
		if err := e.audio.PlaySE(b.SE); err != nil {
			e.logger.Warn("sound effect failed", "se", b.SE, "error", err)
		}
	}

	if b.SetVar != nil {
		e.setVar(b.SetVar)
	}

	if d, ok := ev.(*story.Dialogue); ok && d.CharacterImage != nil {
		switch {
		case *d.CharacterImage != "":
			pos := d.CharacterPosition
			if pos == "" {
				pos = story.PositionCenter
			}
			e.presenter.ShowCharacter(d.Character, *d.CharacterImage, pos)
		case d.Character != "":
			e.presenter.HideCharacter(d.Character)
		default:
			e.presenter.ClearCharacters()
		}
	}
}

func (e *Engine) setVar(sv *story.SetVar) {
	if err := e.vars.Set(sv.Name, sv.Value); err != nil {
		e.logger.Warn("setVar failed", "name", sv.Name, "value", valueString(sv), "error", err)
		return
	}
	v, _ := e.vars.Get(sv.Name)
	e.logger.Debug("variable set", "name", sv.Name, "value", v.String())
}

func valueString(sv *story.SetVar) string {
	if sv.Value == nil {
		return ""
	}
	return sv.Value.String()
}

// showLine presents a Dialogue or End event and records it in the history.
func (e *Engine) showLine(ev story.Event) {
	speaker, text, _ := story.Line(ev)
	rendered := markup.ExpandStyles(text, e.styles)

	e.appendHistory(speaker, rendered)

	e.presenter.HideChoices()
	e.offered = nil
	e.presenter.ShowDialogueBox()
	e.dialogueVisible = true
	e.phase = PhaseAwaitingAdvance
	e.tw.Show(speaker, rendered)
}

// offerChoices shows the last line before the choice as static context and
// offers every option whose condition holds.
func (e *Engine) offerChoices(ch *story.Choice) {
	if speaker, text, ok := e.previousLine(); ok {
		e.presenter.ShowDialogueBox()
		e.dialogueVisible = true
		e.tw.Display(speaker, markup.ExpandStyles(text, e.styles))
	} else {
		e.tw.Clear()
		e.presenter.HideDialogueBox()
		e.dialogueVisible = false
	}

	e.offered = e.offered[:0]
	for i, opt := range ch.Options {
		if e.vars.Evaluate(opt.Condition) {
			e.offered = append(e.offered, present.ChoiceView{Index: i, Text: opt.Text})
		}
	}
	if len(e.offered) == 0 {
		e.logger.Warn("choice has no selectable options", "scene", e.sceneID, "index", e.index)
	}

	e.phase = PhaseChoosing
	e.presenter.ShowChoices(append([]present.ChoiceView(nil), e.offered...))
}

// previousLine finds the nearest Dialogue or End before the cursor in the
// current scene.
func (e *Engine) previousLine() (speaker, text string, ok bool) {
	sc, err := e.CurrentScene()
	if err != nil {
		return "", "", false
	}
	for i := min(e.index, len(sc.Events)) - 1; i >= 0; i-- {
		if speaker, text, ok := story.Line(sc.Events[i]); ok {
			return speaker, text, true
		}
	}
	return "", "", false
}

// AdvanceDialogue responds to an advance request on a shown line.
//
// While the line is still typing, the request only completes it. Otherwise
// the cursor moves past the line and the next event is dispatched.
func (e *Engine) AdvanceDialogue() {
	if e.tw.Typing() {
		e.tw.Complete()
		return
	}
	if e.phase != PhaseAwaitingAdvance {
		return
	}
	ev := e.CurrentEvent()
	if !story.IsLine(ev) {
		return
	}
	e.moveOn(ev)
	e.ProcessCurrentEvent()
}

// Interact is a click anywhere on the stage: it turns auto mode off if it
// is on, and otherwise advances when the dialogue box is visible.
func (e *Engine) Interact() {
	if e.auto {
		e.ToggleAutoMode()
		return
	}
	if e.dialogueVisible {
		e.AdvanceDialogue()
	}
}

func (e *Engine) appendHistory(speaker, text string) {
	e.history = append(e.history, HistoryEntry{
		Seq:       e.clock.Next(),
		Character: speaker,
		Text:      text,
	})
	e.presenter.AppendLog(speaker, text)
}
