package engine

import (
	"github.com/roach88/novella/internal/story"
)

// ToggleAutoMode switches auto mode. Turning it on turns skip mode off and
// ticks immediately; turning it off cancels the pending tick.
func (e *Engine) ToggleAutoMode() {
	if e.auto {
		e.stopAuto()
		return
	}

	e.auto = true
	e.logger.Info("auto mode on", "interval", e.autoInterval)
	if e.skip {
		e.setSkip(false)
	}
	e.autoGen++
	e.autoTick(e.autoGen)
}

// autoTick advances a shown line and re-arms the timer. gen ties the tick
// to one activation so a tick from before a toggle never runs.
func (e *Engine) autoTick(gen uint64) {
	if !e.auto || gen != e.autoGen {
		return
	}
	e.autoTimer = nil

	if e.dialogueVisible && story.IsLine(e.CurrentEvent()) {
		e.AdvanceDialogue()
	}

	if e.auto && gen == e.autoGen {
		e.autoTimer = e.sched.AfterFunc(e.autoInterval, func() { e.autoTick(gen) })
	}
}

func (e *Engine) stopAuto() {
	if e.autoTimer != nil {
		e.autoTimer.Stop()
		e.autoTimer = nil
	}
	e.autoGen++
	if e.auto {
		e.auto = false
		e.logger.Info("auto mode off")
	}
}

// ToggleSkipMode switches skip mode. Turning it on turns auto mode off and
// immediately runs through shown lines until a choice or the end of
// content. A line still typing is completed first.
func (e *Engine) ToggleSkipMode() {
	if e.skip {
		e.setSkip(false)
		return
	}

	e.setSkip(true)
	if e.auto {
		e.stopAuto()
	}

	switch ev := e.CurrentEvent(); {
	case e.phase == PhaseAwaitingAdvance && story.IsLine(ev):
		if e.tw.Typing() {
			e.tw.Complete()
		}
		e.AdvanceDialogue()
	case ev != nil && ev.Kind() == story.KindChoice:
		e.setSkip(false)
	}
}

func (e *Engine) setSkip(on bool) {
	if e.skip == on {
		return
	}
	e.skip = on
	if on {
		e.logger.Info("skip mode on")
	} else {
		e.logger.Info("skip mode off", "scene", e.sceneID, "index", e.index)
	}
}
