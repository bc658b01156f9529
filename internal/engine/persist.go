package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/novella/internal/save"
)

// ErrNoSaveData is reported through Input.Done when an InputLoad finds no
// usable save record.
var ErrNoSaveData = errors.New("no save data")

// Save writes the cursor and variables to the save slot, replacing any
// previous record.
func (e *Engine) Save(ctx context.Context) error {
	rec := save.Record{
		SceneID:    e.sceneID,
		EventIndex: e.index,
		Variables:  e.vars.Snapshot(),
	}
	if err := e.slot.Save(ctx, rec); err != nil {
		return err
	}
	e.logger.Info("game saved", "scene", rec.SceneID, "index", rec.EventIndex, "variables", len(rec.Variables))
	return nil
}

// Load restores the save record and resumes playback from it.
//
// Returns false with a nil error when no usable record exists. A record
// that does not fit the loaded story is rejected with SAVE_SCENE_MISSING or
// SAVE_INDEX_OUT_OF_RANGE and the current playback is left untouched.
func (e *Engine) Load(ctx context.Context) (bool, error) {
	rec, ok, err := e.slot.Load(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		e.logger.Info("no save data")
		return false, nil
	}

	sc, found := e.story.Scenes.Get(rec.SceneID)
	if !found {
		return false, &RuntimeError{
			Code:    ErrCodeSaveSceneMissing,
			Message: "save record names a scene the story does not have",
			SceneID: rec.SceneID,
		}
	}
	if rec.EventIndex > len(sc.Events) {
		return false, &RuntimeError{
			Code:    ErrCodeSaveIndexOutOfRange,
			Message: fmt.Sprintf("event index %d beyond scene length %d", rec.EventIndex, len(sc.Events)),
			SceneID: rec.SceneID,
			Details: map[string]string{
				"index":  fmt.Sprintf("%d", rec.EventIndex),
				"events": fmt.Sprintf("%d", len(sc.Events)),
			},
		}
	}

	e.clearStage()
	_ = e.GotoScene(rec.SceneID)
	e.index = rec.EventIndex
	e.vars.Replace(rec.Variables)
	e.logger.Info("game loaded", "scene", rec.SceneID, "index", rec.EventIndex, "variables", len(rec.Variables))

	e.ProcessCurrentEvent()
	return true, nil
}

// HasSaveData reports whether a save record exists.
func (e *Engine) HasSaveData(ctx context.Context) (bool, error) {
	return e.slot.Has(ctx)
}

// ClearSave removes the save record.
func (e *Engine) ClearSave(ctx context.Context) error {
	if err := e.slot.Clear(ctx); err != nil {
		return err
	}
	e.logger.Info("save data cleared")
	return nil
}

// clearStage removes everything on screen before a load.
func (e *Engine) clearStage() {
	e.presenter.HideDialogueBox()
	e.dialogueVisible = false
	e.presenter.HideChoices()
	e.offered = nil
	e.tw.Clear()
	e.presenter.ClearCharacters()
	e.phase = PhaseIdle
}
